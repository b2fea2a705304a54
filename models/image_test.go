package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariantName(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
		ok       bool
	}{
		{name: "images/chair.jpg", expected: "images/chair.webp", ok: true},
		{name: "images/chair.png", expected: "images/chair.webp", ok: true},
		{name: "images/chair.v2.png", expected: "images/chair.v2.webp", ok: true},
		{name: "images/chair.jpeg"},
		{name: "images/chair.JPG"},
		{name: "images/chair.gif"},
		{name: "images/chair.webp"},
		{name: "images.d/chair"},
		{name: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := VariantName(tc.name)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestImageFormats(t *testing.T) {
	testCases := []struct {
		name     string
		product  Product
		expected []string
	}{
		{name: "no image", product: Product{}, expected: nil},
		{name: "jpg with ready variant", product: Product{Image: "images/a.jpg", ImageVariant: VariantReady}, expected: []string{"jpg", "webp"}},
		{name: "png pending", product: Product{Image: "images/a.png", ImageVariant: VariantPending}, expected: []string{"png"}},
		{name: "png failed", product: Product{Image: "images/a.png", ImageVariant: VariantFailed}, expected: []string{"png"}},
		{name: "gif", product: Product{Image: "images/a.gif", ImageVariant: VariantNone}, expected: []string{"gif"}},
		{name: "uploaded webp", product: Product{Image: "images/a.webp", ImageVariant: VariantReady}, expected: []string{"webp"}},
		{name: "no extension", product: Product{Image: "images/a"}, expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.product.ImageFormats())
		})
	}
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "images/chair.jpg", ImageName("chair.jpg"))
	assert.Equal(t, "images/chair.jpg", ImageName("../../etc/chair.jpg"))
}
