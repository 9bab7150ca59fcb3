package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// maxUploadSize matches the server's 500MB cap so oversized files are
// rejected before any bytes leave the machine.
const maxUploadSize = 500 * 1024 * 1024

// videoExtensions mirrors the server's allowlist.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// Upload submits one video as a single multipart POST and returns the
// new processing job. Non-video payloads and oversized files fail
// client-side without a network call. There is no chunking or resume; a
// failed upload is simply reported.
func (c *Client) Upload(ctx context.Context, filename string, size int64, r io.Reader) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !videoExtensions[ext] {
		return nil, ErrUnsupportedFileType
	}
	if size > maxUploadSize {
		return nil, ErrFileTooLarge
	}

	// The body is buffered so the transport can replay it after a token
	// refresh.
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("video", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read video file: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("finalize upload form: %w", err)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: "/api/v1/videos/upload"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	var result UploadResult
	if err := c.send(req, &result); err != nil {
		return nil, mapUploadErr(err)
	}
	return &result, nil
}

// UploadFile submits a video from disk.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	// Check the name before touching the filesystem so a wrong pick
	// never costs any work.
	if !videoExtensions[strings.ToLower(filepath.Ext(path))] {
		return nil, ErrUnsupportedFileType
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat video file: %w", err)
	}
	return c.Upload(ctx, info.Name(), info.Size(), file)
}

func mapUploadErr(err error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		return ErrSessionExpired
	case apiErr.Status == http.StatusRequestEntityTooLarge:
		return ErrFileTooLarge
	case apiErr.Status >= 400 && apiErr.Status < 500:
		return &ValidationError{Message: apiErr.Message}
	}
	return err
}
