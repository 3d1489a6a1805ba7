// Package images uploads binary images to the external content host and
// returns the public URLs it assigns.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uploader is an HTTP client for the content host's upload endpoint.
type Uploader struct {
	uploadURL string
	apiKey    string
	client    *http.Client
	logger    *zap.Logger
}

type uploadResponse struct {
	URL string `json:"url"`
}

func NewUploader(uploadURL, apiKey string, logger *zap.Logger) *Uploader {
	return &Uploader{
		uploadURL: uploadURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    logger.Named("image_uploader"),
	}
}

// Upload stores the image bytes under a unique object name and returns the
// public URL. The original filename only contributes its extension.
func (u *Uploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	objectName := uuid.NewString() + path.Ext(filename)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", objectName)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		u.logger.Error("Content host rejected upload",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload),
		)
		return "", fmt.Errorf("content host returned status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("content host returned no url")
	}
	return parsed.URL, nil
}
