package vision_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/glimpse/pkg/vision"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

var _ = Describe("ImageAsset", func() {
	It("copies the uploaded bytes", func() {
		data := []byte("abc")
		asset := vision.NewImageAsset("a.jpg", "", data)
		data[0] = 'z'

		Expect(asset.Bytes()).To(Equal([]byte("abc")))
		Expect(asset.Size()).To(Equal(3))
	})

	It("resolves the content type from the extension", func() {
		asset := vision.NewImageAsset("photo.JPEG", "", []byte("x"))
		Expect(asset.ContentType).To(Equal("image/jpeg"))
	})

	It("sniffs the content type when the name has no known extension", func() {
		asset := vision.NewImageAsset("upload", "application/octet-stream", pngHeader)
		Expect(asset.ContentType).To(Equal("image/png"))
	})

	It("keeps an explicit content type", func() {
		asset := vision.NewImageAsset("upload", "image/png", []byte("x"))
		Expect(asset.ContentType).To(Equal("image/png"))
	})

	DescribeTable("Supported",
		func(filename, contentType string, expected bool) {
			asset := vision.NewImageAsset(filename, contentType, []byte("data"))
			Expect(asset.Supported()).To(Equal(expected))
		},
		Entry("jpg", "a.jpg", "", true),
		Entry("jpeg", "a.jpeg", "", true),
		Entry("png", "a.png", "", true),
		Entry("png by content type", "upload", "image/png", true),
		Entry("gif", "a.gif", "image/gif", false),
		Entry("text", "notes.txt", "text/plain; charset=utf-8", false),
	)
})

var _ = Describe("DetectMediaType", func() {
	It("prefers the extension", func() {
		Expect(vision.DetectMediaType("x.png", []byte{0xFF, 0xD8, 0xFF})).To(Equal("image/png"))
	})

	It("sniffs jpeg bytes", func() {
		Expect(vision.DetectMediaType("upload", []byte{0xFF, 0xD8, 0xFF, 0xE0})).To(Equal("image/jpeg"))
	})

	It("returns empty for non-images", func() {
		Expect(vision.DetectMediaType("notes.txt", []byte("plain text"))).To(BeEmpty())
	})

	It("rejects unknown uploads as unsupported", func() {
		asset := vision.NewImageAsset("notes.txt", "application/octet-stream", []byte("plain text"))
		Expect(asset.Supported()).To(BeFalse())
		Expect(vision.EncodeAsset(asset).MediaType).To(Equal(vision.DefaultMediaType))
	})
})
