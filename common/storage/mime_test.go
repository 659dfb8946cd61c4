package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileExt(t *testing.T) {
	cases := map[string]string{
		"movie.MP4":      "mp4",
		"archive.tar.gz": "gz",
		"index.html":     "html",
		"noextension":    "bin",
		"trailing.":      "bin",
		"dir/page.htm":   "htm",
		"photo.JPEG":     "jpeg",
	}

	for name, want := range cases {
		assert.Equal(t, want, FileExt(name), "file %q", name)
	}
}

func TestMIMEForExt(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", MIMEForExt("html"))
	assert.Equal(t, "video/mp4", MIMEForExt("mp4"))
	assert.Equal(t, "application/pdf", MIMEForExt("pdf"))
	assert.Equal(t, "application/octet-stream", MIMEForExt("exotic"))
}
