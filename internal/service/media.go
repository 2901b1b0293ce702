package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"talenta/internal/config"
	"talenta/internal/middleware"
	"talenta/internal/models"
	"talenta/internal/storage"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	AvatarMaxSize = 512
	WebPQuality   = 80
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// MediaLimits caps upload sizes in bytes.
type MediaLimits struct {
	PostMedia int64
	Avatar    int64
	Document  int64
}

// DefaultMediaLimits are 50MB post media, 5MB avatars and 10MB documents.
func DefaultMediaLimits() MediaLimits {
	return MediaLimits{PostMedia: 50 << 20, Avatar: 5 << 20, Document: 10 << 20}
}

// MediaLimitsFromConfig reads the *_MAX_MB settings.
func MediaLimitsFromConfig(cfg *config.Config) MediaLimits {
	if cfg == nil {
		return DefaultMediaLimits()
	}
	return MediaLimits{
		PostMedia: config.MaxBytes(cfg.PostMediaMaxMB, 50),
		Avatar:    config.MaxBytes(cfg.AvatarMaxMB, 5),
		Document:  config.MaxBytes(cfg.DocumentMaxMB, 10),
	}
}

var postMediaTypes = map[string]struct {
	ext  string
	kind string
}{
	"image/jpeg": {".jpg", models.MediaTypeImage},
	"image/png":  {".png", models.MediaTypeImage},
	"image/gif":  {".gif", models.MediaTypeImage},
	"video/mp4":  {".mp4", models.MediaTypeVideo},
	"video/webm": {".webm", models.MediaTypeVideo},
}

// Reference documents are matched by extension; office formats do not sniff reliably.
var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".txt":  "text/plain",
}

func tooLarge(limit int64) error {
	return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", limit>>20))
}

// sniff prefers the detected type and falls back to the declared one when
// detection is inconclusive.
func sniff(u *Upload) string {
	detected := normalizeContentType(http.DetectContentType(u.Content))
	if detected == "application/octet-stream" {
		return normalizeContentType(u.ContentType)
	}
	return detected
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// classifyPostMedia returns the content type, file extension and media kind.
func classifyPostMedia(u *Upload, limit int64) (contentType, ext, kind string, err error) {
	if len(u.Content) == 0 {
		return "", "", "", models.NewValidationError("Uploaded file is empty")
	}
	if int64(len(u.Content)) > limit {
		return "", "", "", tooLarge(limit)
	}
	contentType = sniff(u)
	t, ok := postMediaTypes[contentType]
	if !ok {
		return "", "", "", models.NewValidationError("Unsupported media type: use JPEG, PNG, GIF, MP4 or WebM")
	}
	return contentType, t.ext, t.kind, nil
}

func classifyDocument(u *Upload, limit int64) (contentType, ext string, err error) {
	if len(u.Content) == 0 {
		return "", "", models.NewValidationError("Uploaded file is empty")
	}
	if int64(len(u.Content)) > limit {
		return "", "", tooLarge(limit)
	}
	ext = storage.Ext(u.Filename)
	contentType, ok := documentTypes[ext]
	if !ok {
		return "", "", models.NewValidationError("Unsupported document type: use PDF, DOC, DOCX, PNG, JPEG or TXT")
	}
	return contentType, ext, nil
}

// prepareAvatar validates an avatar and, when reencode is set, converts it to
// a WebP no larger than AvatarMaxSize on either side.
func prepareAvatar(u *Upload, limit int64, reencode bool) (data []byte, contentType, ext string, err error) {
	if len(u.Content) == 0 {
		return nil, "", "", models.NewValidationError("Uploaded file is empty")
	}
	if int64(len(u.Content)) > limit {
		return nil, "", "", tooLarge(limit)
	}
	contentType = sniff(u)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", "", models.NewValidationError("Avatar must be an image")
	}
	if !reencode {
		ext = storage.Ext(u.Filename)
		if ext == "" {
			ext = ".img"
		}
		return u.Content, contentType, ext, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(u.Content))
	if err != nil {
		return nil, "", "", models.NewValidationError("Invalid image file")
	}
	data, err = encodeWebP(resizeToFit(decoded, AvatarMaxSize, AvatarMaxSize), WebPQuality)
	if err != nil {
		return nil, "", "", models.NewInternalError(err)
	}
	return data, "image/webp", ".webp", nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// putBlob uploads data under key and returns its public URL.
func putBlob(ctx context.Context, blobs storage.BlobStore, key string, data []byte, contentType string) (string, error) {
	if blobs == nil {
		return "", models.NewInternalError(fmt.Errorf("object storage not configured"))
	}
	url, err := blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}

// removeBlob deletes key best effort. Failures are only logged.
func removeBlob(ctx context.Context, blobs storage.BlobStore, key string) {
	if blobs == nil || key == "" {
		return
	}
	if err := blobs.Remove(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove stored object",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}
