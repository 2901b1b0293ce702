// Package storage stores uploaded media and documents in an S3 compatible
// object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Remove implementations that can tell.
var ErrObjectNotFound = errors.New("object not found")

// BlobStore is upload-by-path, public-URL lookup and delete-by-path.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// PostMediaKey is posts/<uid>/<unix>-<rand>.<ext>.
func PostMediaKey(userID uint, ext string, now time.Time) string {
	return fmt.Sprintf("posts/%d/%d-%s%s", userID, now.Unix(), randomSuffix(), normalizeExt(ext))
}

// AvatarKey is avatars/<uid>/<unix>.<ext>.
func AvatarKey(userID uint, ext string, now time.Time) string {
	return fmt.Sprintf("avatars/%d/%d%s", userID, now.UnixNano(), normalizeExt(ext))
}

// ReferenceKey is references/<uid>/<unix>.<ext>.
func ReferenceKey(userID uint, ext string, now time.Time) string {
	return fmt.Sprintf("references/%d/%d%s", userID, now.UnixNano(), normalizeExt(ext))
}

// Ext returns the lowercased extension of filename including the dot.
func Ext(filename string) string {
	return strings.ToLower(path.Ext(filename))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix() string {
	b := make([]byte, 7)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}
