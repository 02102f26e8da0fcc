package handlers

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"photo-gallery/internal/gallery"
	"photo-gallery/internal/render"
	"photo-gallery/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func galleryQuery(c *fiber.Ctx) services.GalleryQuery {
	q := services.GalleryQuery{
		Search: c.Query("q"),
		Sort:   gallery.ParseSortKey(c.Query("sort")),
	}
	if raw := c.Query("photo"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			q.PhotoID = &id
		}
	}
	return q
}

// HomeHandler renders the gallery with the search, sort and open photo from the query.
func HomeHandler(svc *services.GalleryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := svc.View(c.UserContext(), galleryQuery(c))

		var buf bytes.Buffer
		if err := render.Home(&buf, st); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

// GalleryAPIHandler returns the filtered and sorted view as JSON.
func GalleryAPIHandler(svc *services.GalleryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := svc.View(c.UserContext(), galleryQuery(c))
		resp := fiber.Map{
			"search": st.Search,
			"sort":   st.Sort,
			"total":  len(st.All),
			"photos": st.View,
		}
		if cur, ok := st.Current(); ok {
			resp["open"] = cur
		}
		return c.JSON(resp)
	}
}

// DataFileHandler serves the published list from disk, uncached.
func DataFileHandler(path string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "gallery data not published"})
			}
			logger.Error("Reading data file", zap.String("path", path), zap.Error(err))
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read gallery data"})
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Type("json", "utf-8")
		return c.Send(data)
	}
}

// photoIDParam reads the :id route parameter.
func photoIDParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

