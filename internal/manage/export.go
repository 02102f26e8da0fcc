package manage

import (
	"bytes"
	"fmt"

	"photo-gallery/internal/models"
	"photo-gallery/internal/utils"
)

// ExportFilename is the canonical name of the published data resource.
const ExportFilename = "gallery-data.json"

// Export serializes photos as the pretty-printed array the loader reads.
func Export(photos []models.Photo) ([]byte, error) {
	if photos == nil {
		photos = []models.Photo{}
	}
	var buf bytes.Buffer
	if err := utils.WritePrettyJSON(&buf, photos); err != nil {
		return nil, fmt.Errorf("export photos: %w", err)
	}
	return buf.Bytes(), nil
}
