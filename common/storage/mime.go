package storage

import (
	"path"
	"strings"
)

// mimeByExt is the fixed extension→MIME table used by asset resolution.
// Unknown extensions fall back to application/octet-stream.
var mimeByExt = map[string]string{
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"zip":  "application/zip",
	"gz":   "application/gzip",
	"tar":  "application/x-tar",
	"txt":  "text/plain; charset=utf-8",
	"json": "application/json",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
}

// FileExt returns the lowercase extension of a file name without the dot,
// defaulting to "bin" when the name has none
func FileExt(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
	if ext == "" {
		return "bin"
	}
	return ext
}

// MIMEForExt infers a Content-Type from a file extension (without dot)
func MIMEForExt(ext string) string {
	if m, ok := mimeByExt[strings.ToLower(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}
