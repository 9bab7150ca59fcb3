package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestClient_UploadRejectsNonVideoWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeData(w, UploadResult{VideoID: "v1"})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, &memCreds{access: "a1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Upload(context.Background(), "notes.txt", 10, strings.NewReader("hello"))
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("Upload error = %v, want ErrUnsupportedFileType", err)
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("server saw %d requests, want 0", n)
	}
}

func TestClient_UploadRejectsOversizeWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, &memCreds{access: "a1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Upload(context.Background(), "big.mp4", maxUploadSize+1, strings.NewReader(""))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Upload error = %v, want ErrFileTooLarge", err)
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("server saw %d requests, want 0", n)
	}
}

func TestClient_UploadSubmitsMultipartVideoField(t *testing.T) {
	t.Parallel()

	var gotField, gotFilename, gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/videos/upload" {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("video")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "missing video field")
			return
		}
		defer file.Close()
		buf := make([]byte, 64)
		n, _ := file.Read(buf)
		gotField = "video"
		gotFilename = header.Filename
		gotContent = string(buf[:n])
		writeData(w, UploadResult{VideoID: "v9", Filename: header.Filename, Status: StatusPending})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, &memCreds{access: "a1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	result, err := c.Upload(context.Background(), "clip.mp4", 9, strings.NewReader("fakevideo"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if result.VideoID != "v9" || result.Status != StatusPending {
		t.Fatalf("result = %#v, want v9 PENDING", result)
	}
	if gotField != "video" || gotFilename != "clip.mp4" || gotContent != "fakevideo" {
		t.Fatalf("multipart form = %q/%q/%q, want video/clip.mp4/fakevideo", gotField, gotFilename, gotContent)
	}
}

func TestClient_UploadReplaysAfterRefresh(t *testing.T) {
	t.Parallel()

	var refreshCalls, uploadCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			refreshCalls.Add(1)
			writeData(w, TokenPair{AccessToken: "a2", RefreshToken: "r2"})
		case "/api/v1/videos/upload":
			uploadCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer a2" {
				writeMessage(w, http.StatusUnauthorized, "token expired")
				return
			}
			file, _, err := r.FormFile("video")
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "missing video field")
				return
			}
			defer file.Close()
			writeData(w, UploadResult{VideoID: "v2", Status: StatusPending})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, &memCreds{access: "a1", refresh: "r1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	// The multipart body must survive the replay intact.
	result, err := c.Upload(context.Background(), "clip.webm", 9, strings.NewReader("fakevideo"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if result.VideoID != "v2" {
		t.Fatalf("result = %#v, want v2", result)
	}
	if refreshCalls.Load() != 1 || uploadCalls.Load() != 2 {
		t.Fatalf("refresh/upload calls = %d/%d, want 1/2", refreshCalls.Load(), uploadCalls.Load())
	}
}

func TestClient_UploadMapsServerRejections(t *testing.T) {
	t.Parallel()

	status := http.StatusRequestEntityTooLarge
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, status, "file size exceeds maximum allowed (500MB)")
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, &memCreds{access: "a1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Upload(context.Background(), "clip.mkv", 9, strings.NewReader("fakevideo"))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Upload error = %v, want ErrFileTooLarge", err)
	}

	status = http.StatusBadRequest
	_, err = c.Upload(context.Background(), "clip.mkv", 9, strings.NewReader("fakevideo"))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Upload error = %v, want *ValidationError", err)
	}
}
