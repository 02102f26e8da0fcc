package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"

	"photo-gallery/internal/manage"
	"photo-gallery/internal/models"
	"photo-gallery/internal/render"
	"photo-gallery/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler renders the manage page for the current draft.
func AdminHandler(svc *services.ManageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := render.Admin(&buf, svc.Snapshot(), svc.HostingConfigured()); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

func ListPhotosHandler(svc *services.ManageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Snapshot())
	}
}

// UploadPhotoHandler sends the form's "file" to the image host and prepends
// the result to the draft.
func UploadPhotoHandler(svc *services.ManageService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := services.UploadInput{
			Title:       c.FormValue("title"),
			Date:        c.FormValue("date"),
			Description: c.FormValue("description"),
		}

		// A missing file is the service's call to reject, after the configuration check.
		if fileHeader, err := c.FormFile("file"); err == nil && fileHeader.Size > 0 {
			f, err := fileHeader.Open()
			if err != nil {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "failed to read file", "upload": svc.Snapshot().Upload})
			}
			defer func(f multipart.File) { _ = f.Close() }(f)
			in.Filename = fileHeader.Filename
			in.File = f
		}

		out, err := svc.Upload(c.UserContext(), in)
		if err == nil {
			return c.Status(http.StatusCreated).JSON(fiber.Map{
				"photo":  out.Photo,
				"status": out.State.Upload.Message,
				"upload": out.State.Upload,
			})
		}

		// Every reply carries the trigger state so the page can re-enable it.
		status, msg := http.StatusInternalServerError, err.Error()
		switch {
		case errors.Is(err, manage.ErrNotConfigured):
			status, msg = http.StatusServiceUnavailable, manage.UserMessage(err)
		case errors.Is(err, manage.ErrNoFile):
			status, msg = http.StatusBadRequest, manage.UserMessage(err)
		case errors.Is(err, manage.ErrUploadInFlight):
			status, msg = http.StatusConflict, manage.UserMessage(err)
		case errors.Is(err, services.ErrUploadFailed):
			status, msg = http.StatusBadGateway, out.State.Upload.Message
		default:
			logger.Error("Upload", zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"error":  msg,
			"upload": svc.Snapshot().Upload,
		})
	}
}

// DeletePhotoHandler removes a photo from the draft. Unknown ids succeed.
func DeletePhotoHandler(svc *services.ManageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := photoIDParam(c)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid photo id"})
		}
		svc.Delete(id)
		return c.SendStatus(http.StatusNoContent)
	}
}

func MovePhotoHandler(svc *services.ManageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := photoIDParam(c)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid photo id"})
		}
		var req models.MoveRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		st, err := svc.Move(id, req)
		switch {
		case errors.Is(err, services.ErrInvalidMove):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, manage.ErrUnknownPhoto):
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case err != nil:
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(st)
	}
}

func ReorderHandler(svc *services.ManageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.OrderRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		st, err := svc.Reorder(req.IDs)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(st)
	}
}

// ReloadHandler replaces the draft with the published list.
func ReloadHandler(svc *services.ManageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Reload(c.UserContext()))
	}
}

// ExportHandler downloads the draft as gallery-data.json.
func ExportHandler(svc *services.ManageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := svc.Export()
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Attachment(manage.ExportFilename)
		c.Type("json", "utf-8")
		return c.Send(data)
	}
}

// UploadsHandler lists the upload journal, newest first.
func UploadsHandler(svc *services.ManageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		recs, err := svc.Uploads(c.UserContext(), limit)
		if errors.Is(err, services.ErrNoJournal) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(recs)
	}
}
