package openagenda_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

func TestNewImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    interface{}
		wantKind openagenda.ImageKind
		wantURL  string
		wantName string
	}{
		{name: "url", value: "https://cdn.example.com/a.jpg", wantKind: openagenda.ImageURL, wantURL: "https://cdn.example.com/a.jpg", wantName: "image"},
		{name: "upper scheme", value: "HTTP://cdn.example.com/a.jpg", wantKind: openagenda.ImageURL, wantURL: "HTTP://cdn.example.com/a.jpg", wantName: "image"},
		{name: "path", value: "/var/images/poster.png", wantKind: openagenda.ImagePath, wantName: "poster.png"},
		{name: "url map", value: map[string]interface{}{"url": "https://cdn.example.com/b.jpg"}, wantKind: openagenda.ImageURL, wantURL: "https://cdn.example.com/b.jpg", wantName: "image"},
		{name: "base map", value: map[string]interface{}{"base": "https://cdn.example.com", "filename": "c.jpg"}, wantKind: openagenda.ImageURL, wantURL: "https://cdn.example.com/c.jpg", wantName: "image"},
		{name: "reader", value: strings.NewReader("png"), wantKind: openagenda.ImageBytes, wantName: "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			image, err := openagenda.NewImage(tt.value)
			require.NoError(t, err)
			require.NotNil(t, image)

			assert.Equal(t, tt.wantKind, image.Kind)
			assert.Equal(t, tt.wantURL, image.URL)
			assert.Equal(t, tt.wantName, image.FileName())
		})
	}

	image, err := openagenda.NewImage("")
	require.NoError(t, err)
	assert.Nil(t, image)

	_, err = openagenda.NewImage(42)
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)

	_, err = openagenda.NewImage(map[string]interface{}{"size": 3})
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)
}

func TestImage_Open(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "poster.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0o600))

	fromPath := openagenda.ImageFromPath(path)
	assert.True(t, fromPath.IsUpload())
	assert.Nil(t, fromPath.ToMap())

	reader, err := fromPath.Open()
	require.NoError(t, err)

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "jpeg bytes", string(content))

	fromReader := openagenda.ImageFromReader(strings.NewReader("stream"), "live.png")

	reader, err = fromReader.Open()
	require.NoError(t, err)

	content, err = io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "stream", string(content))

	_, err = openagenda.ImageFromPath(filepath.Join(t.TempDir(), "missing.jpg")).Open()
	require.Error(t, err)

	_, err = (&openagenda.Image{Kind: openagenda.ImageBytes}).Open()
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)

	remote := openagenda.ImageFromURL("https://cdn.example.com/a.jpg")
	assert.False(t, remote.IsUpload())
	assert.Equal(t, map[string]interface{}{"url": "https://cdn.example.com/a.jpg"}, remote.ToMap())

	_, err = remote.Open()
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)

	var none *openagenda.Image

	assert.False(t, none.IsUpload())
	assert.Nil(t, none.ToMap())
}
