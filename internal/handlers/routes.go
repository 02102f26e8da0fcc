package handlers

import (
	"photo-gallery/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Gallery  *services.GalleryService
	Manage   *services.ManageService
	Hub      *Hub
	DataFile string
	Logger   *zap.Logger
}

// SetupRoutes registers the gallery, manage and websocket routes on app.
func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/", HomeHandler(d.Gallery))
	app.Get("/admin", AdminHandler(d.Manage))
	app.Get("/gallery-data.json", DataFileHandler(d.DataFile, d.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Get("/gallery", GalleryAPIHandler(d.Gallery))

	api.Get("/photos", ListPhotosHandler(d.Manage))
	api.Put("/photos/order", ReorderHandler(d.Manage))
	api.Post("/photos/reload", ReloadHandler(d.Manage))
	api.Delete("/photos/:id", DeletePhotoHandler(d.Manage))
	api.Post("/photos/:id/move", MovePhotoHandler(d.Manage))
	api.Post("/upload", UploadPhotoHandler(d.Manage, d.Logger))
	api.Get("/export", ExportHandler(d.Manage))
	api.Get("/uploads", UploadsHandler(d.Manage))

	app.Use("/ws", WSUpgradeMiddleware)
	app.Get("/ws/manage", ManageSocketHandler(d.Hub, d.Manage, d.Logger))
}
