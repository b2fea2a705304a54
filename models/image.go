package models

import (
	"path"
	"strings"
)

// ImageDir is the directory, relative to the media root, where product images live.
const ImageDir = "images"

// VariantFormat is the format every derivable image is re-encoded into.
const VariantFormat = "webp"

var derivableFormats = map[string]bool{
	"jpg": true,
	"png": true,
}

// SplitImageName splits a stored image name into its base and its extension
// (without the dot). Dots in directory names are not treated as separators.
func SplitImageName(name string) (base, ext string) {
	dot := strings.LastIndex(name, ".")
	if dot < 0 || dot < strings.LastIndex(name, "/") {
		return name, ""
	}
	return name[:dot], name[dot+1:]
}

// IsDerivable reports whether images of the given extension get a webp variant.
func IsDerivable(ext string) bool {
	return derivableFormats[ext]
}

// VariantName returns the stored name of the derived variant of image name.
// ok is false when the image format has no variant.
func VariantName(name string) (variant string, ok bool) {
	base, ext := SplitImageName(name)
	if !IsDerivable(ext) {
		return "", false
	}
	return base + "." + VariantFormat, true
}

// ImageName places a file name under the image directory.
func ImageName(filename string) string {
	return path.Join(ImageDir, path.Base(filename))
}
