package openagenda

import (
	"context"
	"io"
	"net/http"
)

// Transport performs the HTTP verbs the client needs. Implementations must
// not retry; errors mean no response was received.
type Transport interface {
	Head(ctx context.Context, url string, headers map[string]string) (*Response, error)
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
	Post(ctx context.Context, url string, payload *Payload, headers map[string]string) (*Response, error)
	Patch(ctx context.Context, url string, payload *Payload, headers map[string]string) (*Response, error)
	Delete(ctx context.Context, url string, payload *Payload, headers map[string]string) (*Response, error)
}

// Response is a raw HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Header returns the first value of name, matched case-insensitively.
func (r *Response) Header(name string) string {
	if r.Headers == nil {
		return ""
	}

	return r.Headers.Get(name)
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// File is one multipart part, opened when the request is sent.
type File struct {
	Field string
	Name  string
	Open  func() (io.ReadCloser, error)
}

// Payload is a request body: JSON data, sent as a multipart "data" field
// when files are attached.
type Payload struct {
	Data  map[string]interface{}
	Files []File
}

// IsMultipart reports whether files are attached.
func (p *Payload) IsMultipart() bool {
	return p != nil && len(p.Files) > 0
}

// ToPayload builds the request body of a create (onlyDirty false) or update
// (onlyDirty true). Read-only fields are dropped and uploaded images move to
// multipart files.
func (e *Entity) ToPayload(onlyDirty bool) (*Payload, error) {
	data, err := e.ToWire(onlyDirty)
	if err != nil {
		return nil, err
	}

	for _, wire := range e.schema.WireFields() {
		if wire.ReadOnly {
			delete(data, wire.key())
		}
	}

	payload := &Payload{Data: data}

	wire, ok := e.schema.wireField("image")
	if !ok {
		return payload, nil
	}

	image, isImage := e.value("image").(*Image)
	if !isImage || !image.IsUpload() {
		return payload, nil
	}

	delete(data, wire.key())

	if onlyDirty && !e.IsDirty("image") {
		return payload, nil
	}

	payload.Files = append(payload.Files, File{
		Field: "image",
		Name:  image.FileName(),
		Open:  image.Open,
	})

	return payload, nil
}
