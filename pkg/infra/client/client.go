package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/domain/interfaces"
	"github.com/m-mizutani/towebp/pkg/domain/model"
)

const (
	convertPath     = "/api/convert"
	downloadAllPath = "/api/downloadAll"
	imageField      = "image"
)

type client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for the client
type Option func(*client)

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a ConverterClient talking to a towebp server at baseURL
func New(baseURL string, opts ...Option) interfaces.ConverterClient {
	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type convertResponse struct {
	ConvertedImage *model.ConvertedImage `json:"convertedImage"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Convert uploads one file as multipart form field "image"
func (c *client) Convert(ctx context.Context, file *model.UploadedFile) (*model.ConvertedImage, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile(imageField, file.Name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create form file", goerr.V("name", file.Name))
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, goerr.Wrap(err, "failed to write form file", goerr.V("name", file.Name))
	}
	if err := mw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, &body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create convert request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send convert request", goerr.V("name", file.Name))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp, "conversion failed", goerr.V("name", file.Name))
	}

	var result convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode convert response", goerr.V("name", file.Name))
	}
	if result.ConvertedImage == nil {
		return nil, goerr.New("convert response has no image", goerr.V("name", file.Name))
	}

	return result.ConvertedImage, nil
}

type downloadAllRequest struct {
	Images []model.ConvertedImage `json:"images"`
}

// DownloadAll posts images as JSON and streams the zip response into w
func (c *client) DownloadAll(ctx context.Context, images []model.ConvertedImage, w io.Writer) error {
	payload, err := json.Marshal(downloadAllRequest{Images: images})
	if err != nil {
		return goerr.Wrap(err, "failed to encode download request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+downloadAllPath, bytes.NewReader(payload))
	if err != nil {
		return goerr.Wrap(err, "failed to create download request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send download request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp, "archive download failed", goerr.V("images", len(images)))
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		return goerr.New("unexpected content type", goerr.V("content_type", ct))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return goerr.Wrap(err, "failed to write archive")
	}

	return nil
}

// responseError builds an error from a non-200 response. The server's error
// message is kept when the body is the usual {"error": "..."} document.
func responseError(resp *http.Response, msg string, opts ...goerr.Option) error {
	opts = append(opts, goerr.V("status", resp.StatusCode))

	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Error != "" {
		opts = append(opts, goerr.V("message", body.Error))
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		opts = append(opts, goerr.T(model.ErrTagInvalidInput))
	}

	return goerr.New(msg, opts...)
}
