package models

import "regexp"

// Category is the coarse upload classification driving MIME allow-listing
// and per-category size ceilings
type Category string

const (
	CategoryVideo   Category = "video"
	CategoryHTMLApp Category = "html_app"
	CategoryProject Category = "project"
	CategoryGame    Category = "game"
	CategoryImage   Category = "image"
	// CategoryUploads is the generic default for anything unclassified
	CategoryUploads Category = "uploads"
)

const mib = 1024 * 1024

// maxSizeByCategory holds the declared-size ceiling per category in bytes
var maxSizeByCategory = map[Category]int64{
	CategoryVideo:   2000 * mib,
	CategoryHTMLApp: 500 * mib,
	CategoryProject: 1000 * mib,
	CategoryGame:    1500 * mib,
	CategoryImage:   100 * mib,
	CategoryUploads: 500 * mib,
}

// Known reports whether the category has its own ceiling entry
func (c Category) Known() bool {
	_, ok := maxSizeByCategory[c]
	return ok
}

// MaxSize returns the size ceiling for a category. Unknown categories get
// the generic ceiling, matching how unclassified uploads are treated.
func (c Category) MaxSize() int64 {
	if max, ok := maxSizeByCategory[c]; ok {
		return max
	}
	return maxSizeByCategory[CategoryUploads]
}

// allowedMIMEs groups the accepted MIME types by coarse kind. Registration
// validates against the union of all groups regardless of declared category.
var allowedMIMEs = map[string][]string{
	"image": {
		"image/jpeg",
		"image/png",
		"image/webp",
		"image/gif",
		"image/svg+xml",
	},
	"video": {
		"video/mp4",
		"video/webm",
		"video/quicktime",
		"video/x-msvideo",
	},
	"archive": {
		"application/zip",
		"application/x-zip-compressed",
		"application/x-rar-compressed",
		"application/gzip",
		"application/x-tar",
	},
	"html": {
		"text/html",
		"text/plain",
	},
	"executable": {
		"application/x-msdownload",
		"application/x-msdos-program",
		"application/octet-stream",
	},
	"document": {
		"application/pdf",
	},
}

// allowedMIMEUnion is the flattened allow-list used for the registration check
var allowedMIMEUnion = func() map[string]bool {
	union := make(map[string]bool)
	for _, mimes := range allowedMIMEs {
		for _, m := range mimes {
			union[m] = true
		}
	}
	return union
}()

// MIMEAllowed reports whether a declared MIME type is accepted by any category
func MIMEAllowed(mimeType string) bool {
	return allowedMIMEUnion[mimeType]
}

// Content kinds recorded on the asset registry row, derived from the file
// extension the same way the admin uploader classifies finished uploads
const (
	KindVideo   = "VIDEO"
	KindHTMLApp = "HTML_APP"
	KindProject = "PROJECT"
	KindImage   = "IMAGE"
	KindGame    = "GAME"
	KindPost    = "POST"
)

var (
	videoExtRe   = regexp.MustCompile(`^(mp4|webm|mov|avi)$`)
	htmlExtRe    = regexp.MustCompile(`^(html|htm)$`)
	archiveExtRe = regexp.MustCompile(`^(zip|tar|gz)$`)
	imageExtRe   = regexp.MustCompile(`^(jpg|jpeg|png|gif|webp|svg)$`)
	gameExtRe    = regexp.MustCompile(`^(exe|app|dmg|apk)$`)
)

// KindForExt maps a file extension (without dot) to a content kind
func KindForExt(ext string) string {
	switch {
	case videoExtRe.MatchString(ext):
		return KindVideo
	case htmlExtRe.MatchString(ext):
		return KindHTMLApp
	case archiveExtRe.MatchString(ext):
		return KindProject
	case imageExtRe.MatchString(ext):
		return KindImage
	case gameExtRe.MatchString(ext):
		return KindGame
	default:
		return KindPost
	}
}
