package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-gallery/internal/config"
	"photo-gallery/internal/db"
	"photo-gallery/internal/handlers"
	"photo-gallery/internal/hosting"
	"photo-gallery/internal/loader"
	"photo-gallery/internal/manage"
	"photo-gallery/internal/models"
	"photo-gallery/internal/services"
	"photo-gallery/internal/watch"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Server is the wired gallery service.
type Server struct {
	App     *fiber.App
	Manage  *services.ManageService
	Hub     *handlers.Hub
	cfg     *config.Config
	logger  *zap.Logger
	closers []func()
}

// New wires storage, services and routes for cfg without listening.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	s := &Server{cfg: cfg, logger: log}

	var journal *db.Journal
	if cfg.Journal.Path != "" {
		conn, err := db.InitDB(cfg.Journal.Path, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open upload journal: %w", err)
		}
		s.closers = append(s.closers, func() { db.CloseDB(conn) })
		journal = db.NewJournal(conn)
	} else {
		log.Info("Upload journal disabled")
	}

	src := loader.New(cfg.DataURL(), log)
	host := hosting.NewClient(cfg.Hosting)
	if !host.Configured() {
		log.Warn("Image hosting is not configured; uploads will be rejected")
	}

	draft := manage.NewController(nil)
	s.Hub = handlers.NewHub(log)
	draft.OnChange(func(st manage.State) {
		s.Hub.Broadcast(handlers.SnapshotMessage(st))
	})

	s.Manage = services.NewManageService(draft, src, host, journal, log)
	gallerySvc := services.NewGalleryService(src, cfg.Gallery.Locale, log)

	s.App = fiber.New(fiber.Config{
		AppName:               "photo-gallery",
		DisableStartupMessage: true,
		BodyLimit:             32 << 20, // image uploads
	})

	// Middleware
	s.App.Use(logger.New())
	s.App.Use(recover.New())
	s.App.Use(cors.New())

	if cfg.Server.StaticDir != "" {
		if err := os.MkdirAll(cfg.Server.StaticDir, 0755); err != nil {
			log.Warn("Failed to create static dir", zap.String("dir", cfg.Server.StaticDir), zap.Error(err))
		}
		s.App.Static("/static", cfg.Server.StaticDir)
	}

	handlers.SetupRoutes(s.App, handlers.Deps{
		Gallery:  gallerySvc,
		Manage:   s.Manage,
		Hub:      s.Hub,
		DataFile: cfg.Data.File,
		Logger:   log,
	})

	return s, nil
}

// Close releases storage.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// watchData broadcasts data_published when the local data file changes.
func (s *Server) watchData(ctx context.Context) {
	if s.cfg.Data.File == "" {
		return
	}
	w, err := watch.New(s.cfg.Data.File, func(path string) {
		s.Hub.Broadcast(models.WSMessage{
			Event:     handlers.EventDataPublished,
			Timestamp: time.Now().UnixMilli(),
			Message:   "Published gallery data changed: " + path,
		})
	}, s.logger)
	if err != nil {
		s.logger.Warn("Data file watcher unavailable", zap.Error(err))
		return
	}
	if err := w.Start(ctx); err != nil {
		s.logger.Warn("Data file watcher unavailable", zap.Error(err))
		w.Stop()
		return
	}
	s.closers = append(s.closers, w.Stop)
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := New(cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	s.watchData(ctx)

	// The draft starts from the published list, which this server may itself be serving.
	s.App.Hooks().OnListen(func(fiber.ListenData) error {
		go s.Manage.Reload(ctx)
		return nil
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("Gallery listening", zap.String("addr", addr), zap.String("data_url", cfg.DataURL()))
		errCh <- s.App.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Gracefully shutting down...")
	if err := s.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server shutdown complete")
	return nil
}
