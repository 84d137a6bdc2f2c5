package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"haven/internal/config"
	"haven/internal/middleware"
	"haven/internal/models"
)

const (
	optimizeThreshold = 500_000
	maxImageWidth     = 1200
	jpegQuality       = 80
	uploadTimeout     = 30 * time.Second
)

// MediaService uploads images to the external image host. The host speaks
// the ImgBB API shape: base64 payload in an "image" form field, API key as a
// query parameter, JSON envelope with a success flag. Uploads are attempted
// once; a failure is reported to the caller, never retried.
type MediaService struct {
	client   *http.Client
	hostURL  string
	apiKey   string
	maxBytes int
}

// NewMediaService creates a MediaService from configuration.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{
		client:   &http.Client{Timeout: uploadTimeout},
		hostURL:  cfg.ImageHostURL,
		apiKey:   cfg.ImageHostAPIKey,
		maxBytes: cfg.ImageMaxUploadSizeMB * 1024 * 1024,
	}
}

// NewMediaServiceWithClient creates a MediaService with an explicit HTTP
// client and host, for tests.
func NewMediaServiceWithClient(client *http.Client, hostURL, apiKey string, maxBytes int) *MediaService {
	return &MediaService{client: client, hostURL: hostURL, apiKey: apiKey, maxBytes: maxBytes}
}

// UploadResult is the subset of the host's response the application keeps.
type UploadResult struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url,omitempty"`
}

type hostResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL   string `json:"url"`
		Thumb struct {
			URL string `json:"url"`
		} `json:"thumb"`
	} `json:"data"`
}

// Upload validates, optionally downscales, and ships an image to the host.
// Files over 500KB are re-encoded as JPEG no wider than 1200px before upload.
func (s *MediaService) Upload(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	if !strings.HasPrefix(contentType, "image/") {
		middleware.MediaUploads.WithLabelValues("rejected").Inc()
		return nil, models.NewValidationError("only image files can be uploaded")
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		middleware.MediaUploads.WithLabelValues("rejected").Inc()
		return nil, models.NewValidationError(
			fmt.Sprintf("image exceeds the %dMB upload limit", s.maxBytes/(1024*1024)))
	}
	if len(data) > optimizeThreshold {
		data = s.optimize(ctx, data)
	}

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(data))
	if filename != "" {
		form.Set("name", strings.TrimSuffix(filename, filepathExt(filename)))
	}

	endpoint := s.hostURL
	if s.apiKey != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "key=" + url.QueryEscape(s.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		middleware.MediaUploads.WithLabelValues("failed").Inc()
		return nil, models.NewUploadError("failed to build upload request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		middleware.MediaUploads.WithLabelValues("failed").Inc()
		return nil, models.NewUploadError("image host unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		middleware.MediaUploads.WithLabelValues("failed").Inc()
		return nil, models.NewUploadError(
			fmt.Sprintf("image host returned status %d", resp.StatusCode), nil)
	}

	var hr hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		middleware.MediaUploads.WithLabelValues("failed").Inc()
		return nil, models.NewUploadError("image host returned malformed response", err)
	}
	if !hr.Success || hr.Data.URL == "" {
		middleware.MediaUploads.WithLabelValues("failed").Inc()
		return nil, models.NewUploadError("image host rejected the upload", nil)
	}

	middleware.MediaUploads.WithLabelValues("success").Inc()
	middleware.Logger.InfoContext(ctx, "image uploaded",
		"bytes", len(data), "url", hr.Data.URL)
	return &UploadResult{URL: hr.Data.URL, ThumbURL: hr.Data.Thumb.URL}, nil
}

// optimize re-encodes a large image as JPEG, downscaling to the maximum
// width when needed. An image that cannot be decoded is uploaded as-is.
func (s *MediaService) optimize(ctx context.Context, data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		middleware.Logger.WarnContext(ctx, "could not decode image for optimization, uploading original",
			"error", err)
		return data
	}
	img = resizeToFit(img, maxImageWidth)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		middleware.Logger.WarnContext(ctx, "could not re-encode image, uploading original",
			"error", err)
		return data
	}
	return buf.Bytes()
}

// resizeToFit scales img down to at most maxWidth pixels wide, preserving
// aspect ratio. Images already narrow enough are returned unchanged.
func resizeToFit(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func filepathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
