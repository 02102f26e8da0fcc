// Package hosting uploads images to Cloudinary with an unsigned upload preset.
package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"photo-gallery/internal/config"
)

const defaultFailureMessage = "Cloudinary upload failed."

// Result is the part of Cloudinary's upload response the gallery keeps.
type Result struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// UploadError is a non-success response from the host.
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string { return e.Message }

type Client struct {
	cfg        config.HostingConfig
	httpClient *http.Client
}

// NewClient returns a client for cfg. No client timeout is set; ctx governs hangs.
func NewClient(cfg config.HostingConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

func (c *Client) Configured() bool { return c.cfg.Configured() }

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(c.cfg.APIBase, "/"), c.cfg.CloudName)
}

// Upload sends one file with the configured upload preset.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (*Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.WriteField("upload_preset", c.cfg.UploadPreset); err != nil {
		return nil, fmt.Errorf("write upload preset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upErr := &UploadError{StatusCode: resp.StatusCode, Message: defaultFailureMessage}
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error.Message != "" {
			upErr.Message = er.Error.Message
		}
		return nil, upErr
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if result.SecureURL == "" {
		return nil, fmt.Errorf("upload response has no secure_url")
	}
	return &result, nil
}
