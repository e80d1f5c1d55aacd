package imagekit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"shop-api/internal/config"
)

// UploadedImage identifies a file stored on the image host. FileID is kept so
// a failed create can delete what it already uploaded.
type UploadedImage struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
}

type Client interface {
	Upload(ctx context.Context, content []byte, fileName string) (*UploadedImage, error)
	Delete(ctx context.Context, fileID string) error
}

type client struct {
	httpClient *http.Client
	uploadURL  string
	apiURL     string
	privateKey string
	folder     string
}

func NewClient(conf *config.Config) Client {
	cfg := conf.ImageKit
	return &client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		uploadURL:  cfg.UploadURL,
		apiURL:     cfg.APIURL,
		privateKey: cfg.PrivateKey,
		folder:     cfg.Folder,
	}
}

func (c *client) Upload(ctx context.Context, content []byte, fileName string) (*UploadedImage, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write file content: %w", err)
	}
	if err := writer.WriteField("fileName", fileName); err != nil {
		return nil, fmt.Errorf("write fileName field: %w", err)
	}
	if c.folder != "" {
		if err := writer.WriteField("folder", c.folder); err != nil {
			return nil, fmt.Errorf("write folder field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	url := c.uploadURL + "/api/v1/files/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("image host returned status %d: %s", resp.StatusCode, msg)
	}

	var image UploadedImage
	if err := json.NewDecoder(resp.Body).Decode(&image); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &image, nil
}

func (c *client) Delete(ctx context.Context, fileID string) error {
	url := fmt.Sprintf("%s/v1/files/%s", c.apiURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("image host returned status %d", resp.StatusCode)
	}
	return nil
}
