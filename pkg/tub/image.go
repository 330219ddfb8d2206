package tub

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	// Register the codecs used by camera frames.
	_ "image/png"

	"github.com/roverlabs/tubmerge/pkg/errors"
)

// ImagesDirName is the subdirectory holding out-of-line image files.
const ImagesDirName = "images"

// jpegQuality is used when encoding camera frames back to disk.
const jpegQuality = 90

// LoadImage reads and decodes one image file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.WrapParse(format, path, err)
	}
	return img, nil
}

// saveImage encodes img as JPEG under the dataset's images directory, named
// after the record index and field, and returns the stored file name.
func saveImage(dir string, index int, field string, img image.Image) (string, error) {
	name := fmt.Sprintf("%d_%s.jpg", index, strings.ReplaceAll(field, "/", "_"))
	path := filepath.Join(dir, ImagesDirName, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.WrapIO("create", path, err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		return "", errors.WrapIO("encode", path, err)
	}
	if err := f.Close(); err != nil {
		return "", errors.WrapIO("close", path, err)
	}
	return name, nil
}
