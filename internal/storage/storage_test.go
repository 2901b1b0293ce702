package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeys(t *testing.T) {
	now := time.Unix(1700000000, 0)

	assert.Regexp(t, regexp.MustCompile(`^posts/7/1700000000-[a-z0-9]{7}\.mp4$`), PostMediaKey(7, ".MP4", now))
	assert.Equal(t, "avatars/7/1700000000000000000.webp", AvatarKey(7, "webp", now))
	assert.Equal(t, "references/7/1700000000000000000.pdf", ReferenceKey(7, ".pdf", now))
	assert.Equal(t, "references/7/1700000000000000000", ReferenceKey(7, "", now))
}

func TestPostMediaKey_Unique(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, PostMediaKey(1, ".png", now), PostMediaKey(1, ".png", now))
}

func TestExt(t *testing.T) {
	assert.Equal(t, ".pdf", Ext("CV.PDF"))
	assert.Equal(t, "", Ext("README"))
}

func TestMinioStore_PublicURL(t *testing.T) {
	s := &MinioStore{bucket: "media", publicURL: "http://cdn.local"}
	assert.Equal(t, "http://cdn.local/media/posts/1/a.png", s.PublicURL("/posts/1/a.png"))
}
