package openagenda

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageKind tags the representation held by an Image.
type ImageKind int

// Image representations.
const (
	ImagePath ImageKind = iota + 1
	ImageURL
	ImageBytes
)

// Image is a picture attached to an event or location, given as a local file,
// a remote URL or an in-memory stream. Exactly one representation is set.
type Image struct {
	Kind   ImageKind
	Path   string
	URL    string
	Reader io.Reader
	// Name is the file name sent with multipart uploads.
	Name string
}

// ImageFromURL returns an Image pointing at a remote picture.
func ImageFromURL(url string) *Image {
	return &Image{Kind: ImageURL, URL: url}
}

// ImageFromPath returns an Image read from a local file at submit time.
func ImageFromPath(path string) *Image {
	return &Image{Kind: ImagePath, Path: path, Name: filepath.Base(path)}
}

// ImageFromReader returns an Image streamed from r.
func ImageFromReader(r io.Reader, name string) *Image {
	return &Image{Kind: ImageBytes, Reader: r, Name: name}
}

// IsUpload reports whether the image has to be sent as a multipart file.
func (i *Image) IsUpload() bool {
	return i != nil && (i.Kind == ImagePath || i.Kind == ImageBytes)
}

// Open returns the image content for upload. The caller closes it.
func (i *Image) Open() (io.ReadCloser, error) {
	switch i.Kind {
	case ImagePath:
		file, err := os.Open(i.Path)
		if err != nil {
			return nil, fmt.Errorf("opening image: %w", err)
		}

		return file, nil
	case ImageBytes:
		if i.Reader == nil {
			return nil, fmt.Errorf("image has no reader: %w", ErrInvalidInput)
		}

		if closer, ok := i.Reader.(io.ReadCloser); ok {
			return closer, nil
		}

		return io.NopCloser(i.Reader), nil
	default:
		return nil, fmt.Errorf("image kind %d has no content: %w", i.Kind, ErrInvalidInput)
	}
}

// FileName returns the name used for the multipart part.
func (i *Image) FileName() string {
	if i.Name != "" {
		return i.Name
	}

	return "image"
}

// ToMap renders the wire form of a URL image. Uploads render as nil since
// they travel outside the JSON body.
func (i *Image) ToMap() map[string]interface{} {
	if i == nil || i.Kind != ImageURL {
		return nil
	}

	return map[string]interface{}{"url": i.URL}
}

// NewImage converts a setter value into an Image. Strings starting with
// http:// or https:// are URLs, other strings are file paths.
func NewImage(value interface{}) (*Image, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case *Image:
		return typed, nil
	case Image:
		return &typed, nil
	case string:
		if typed == "" {
			return nil, nil
		}

		lower := strings.ToLower(typed)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			return ImageFromURL(typed), nil
		}

		return ImageFromPath(typed), nil
	case map[string]interface{}:
		if url, ok := typed["url"].(string); ok && url != "" {
			return ImageFromURL(url), nil
		}

		if base, ok := typed["base"].(string); ok {
			filename, _ := typed["filename"].(string)

			return ImageFromURL(strings.TrimRight(base, "/") + "/" + filename), nil
		}
	case io.Reader:
		return ImageFromReader(typed, ""), nil
	}

	return nil, fmt.Errorf("unsupported image value %T: %w", value, ErrInvalidInput)
}

func imageSetter(_ *Entity, value interface{}) (interface{}, error) {
	image, err := NewImage(value)
	if err != nil {
		return nil, err
	}

	if image == nil {
		return nil, nil
	}

	return image, nil
}

func encodeImage(value interface{}) (interface{}, error) {
	image, ok := value.(*Image)
	if !ok {
		return value, nil
	}

	if image.IsUpload() {
		return nil, nil
	}

	return image.ToMap(), nil
}
