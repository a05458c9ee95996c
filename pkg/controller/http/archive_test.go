package http_test

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/towebp/pkg/domain/model"
)

func archiveRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/downloadAll", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func imagesJSON(t *testing.T, images ...model.ConvertedImage) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"images": images})
	gt.NoError(t, err).Required()
	return string(raw)
}

func TestArchiveHandler_Success(t *testing.T) {
	server := newServer(t, &MockEncoder{})

	images := []model.ConvertedImage{
		{Name: "cat", Data: base64.StdEncoding.EncodeToString([]byte("cat-webp"))},
		{Name: "dog", Data: base64.StdEncoding.EncodeToString([]byte("dog-webp"))},
		{Name: "cat", Data: base64.StdEncoding.EncodeToString([]byte("second-cat"))},
	}

	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, archiveRequest(t, imagesJSON(t, images...)))

	gt.V(t, w.Code).Equal(http.StatusOK)
	gt.V(t, w.Header().Get("Content-Type")).Equal("application/zip")
	gt.V(t, w.Header().Get("Content-Disposition")).Equal("attachment; filename=converted_images.zip")
	gt.V(t, w.Header().Get("Content-Length")).Equal(strconv.Itoa(w.Body.Len()))

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	gt.NoError(t, err).Required()
	gt.A(t, zr.File).Length(3)

	entries := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		gt.NoError(t, err).Required()
		data, err := io.ReadAll(rc)
		gt.NoError(t, err).Required()
		gt.NoError(t, rc.Close()).Required()
		entries[f.Name] = string(data)
	}

	gt.V(t, entries).Equal(map[string]string{
		"cat.webp":     "cat-webp",
		"dog.webp":     "dog-webp",
		"cat (1).webp": "second-cat",
	})
}

func TestArchiveHandler_EmptyList(t *testing.T) {
	server := newServer(t, &MockEncoder{})

	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, archiveRequest(t, `{"images":[]}`))

	gt.V(t, w.Code).Equal(http.StatusOK)

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	gt.NoError(t, err).Required()
	gt.A(t, zr.File).Length(0)
}

func TestArchiveHandler_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"images": [`},
		{name: "images missing", body: `{}`},
		{name: "images null", body: `{"images": null}`},
		{name: "images not a list", body: `{"images": "cat"}`},
		{name: "image without name", body: `{"images": [{"data": "AAAA"}]}`},
		{name: "image without data", body: `{"images": [{"name": "cat"}]}`},
		{name: "data is not base64", body: `{"images": [{"name": "cat", "data": "%%% not base64"}]}`},
	}

	server := newServer(t, &MockEncoder{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.Handler.ServeHTTP(w, archiveRequest(t, tt.body))

			gt.V(t, w.Code).Equal(http.StatusBadRequest)
			gt.V(t, decodeError(t, w.Body)).Equal("Invalid request")
		})
	}
}
