package vision

import (
	"encoding/base64"
	"fmt"
)

// EncodedImage is the base64 form of an ImageAsset together with the media
// type declared in its data URI.
type EncodedImage struct {
	MediaType string
	Data      string
}

// Encode returns the standard base64 encoding of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode.
func Decode(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return data, nil
}

// EncodeAsset encodes an asset for transport. It is recomputed for every
// request.
func EncodeAsset(a *ImageAsset) EncodedImage {
	mt := mediaType(a.ContentType)
	if mt == "" {
		mt = DefaultMediaType
	}
	return EncodedImage{
		MediaType: mt,
		Data:      Encode(a.data),
	}
}

// DataURI renders the image as "data:<media type>;base64,<payload>".
func (e EncodedImage) DataURI() string {
	return "data:" + e.MediaType + ";base64," + e.Data
}
