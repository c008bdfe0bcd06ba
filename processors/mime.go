package processors

import (
	"path/filepath"
	"strings"
)

// mimeByExt maps segment file extensions to upload MIME types. Content is
// never sniffed; unrecognized extensions fall back to the generic type.
var mimeByExt = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
	".ts":   "video/mp2t",
	".3gp":  "video/3gpp",
}

const genericVideoMIME = "video/mp4"

// MIMEForSegment derives the upload MIME type from a segment path.
func MIMEForSegment(path string) string {
	if m, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return genericVideoMIME
}
