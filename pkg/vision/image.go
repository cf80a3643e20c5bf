// Package vision holds the image and prompt values sent to a multimodal model.
package vision

import (
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultMediaType is declared for images whose type cannot be determined.
const DefaultMediaType = "image/jpeg"

// supportedExtensions mirrors the upload widget's accepted file types.
var supportedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ImageAsset is an uploaded image. It is immutable once created and lives for
// the duration of one analysis.
type ImageAsset struct {
	data        []byte
	Filename    string
	ContentType string
}

// NewImageAsset copies data into a new asset. An empty or generic contentType
// is resolved from the filename extension, then from the bytes themselves.
func NewImageAsset(filename, contentType string, data []byte) *ImageAsset {
	buf := make([]byte, len(data))
	copy(buf, data)

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = DetectMediaType(filename, buf)
	}

	return &ImageAsset{
		data:        buf,
		Filename:    filename,
		ContentType: contentType,
	}
}

// Bytes returns a copy of the raw image bytes.
func (a *ImageAsset) Bytes() []byte {
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out
}

// Size is the image length in bytes.
func (a *ImageAsset) Size() int {
	return len(a.data)
}

// Supported reports whether the asset is a jpg, jpeg or png image.
func (a *ImageAsset) Supported() bool {
	if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(a.Filename))]; ok {
		return true
	}
	switch mediaType(a.ContentType) {
	case "image/jpeg", "image/png":
		return true
	}
	return false
}

// DetectMediaType resolves an image media type from the file extension,
// falling back to content sniffing. It returns "" for anything that is not
// recognizably an image.
func DetectMediaType(filename string, data []byte) string {
	if mt, ok := supportedExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return mt
	}
	if len(data) > 0 {
		sniffed := mediaType(http.DetectContentType(data))
		if strings.HasPrefix(sniffed, "image/") {
			return sniffed
		}
	}
	return ""
}

// mediaType strips parameters such as "; charset=utf-8".
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
