package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	oahttp "github.com/Erwane/openagenda-api-sub000/internal/http"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	level string
	msg   string
}

// recordingLogger keeps what the transport logs.
type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string) {
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.record("error", msg) }

//nolint:funlen
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v2/agendas", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "openagenda-go", request.Header.Get("User-Agent"))

			writer.Header().Set("X-Request-Id", "abc")
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"total": 1})
		}))
		defer server.Close()

		client := oahttp.NewClient()

		resp, err := client.Get(context.Background(), server.URL+"/v2/agendas", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "abc", resp.Header("x-request-id"))

		var result map[string]int

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, 1, result["total"])
	})

	t.Run("request with json body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "Salle des fêtes", body["name"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := oahttp.NewClient()
		payload := &openagenda.Payload{Data: map[string]interface{}{"name": "Salle des fêtes"}}

		resp, err := client.Post(context.Background(), server.URL+"/locations", payload, nil)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("request with image upload", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.True(t, strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data"))

			err := request.ParseMultipartForm(1 << 20)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"title":{"fr":"Concert"}}`, request.FormValue("data"))

			file, header, err := request.FormFile("image")
			if assert.NoError(t, err) {
				defer func() { _ = file.Close() }()

				content, _ := io.ReadAll(file)
				assert.Equal(t, "poster.jpg", header.Filename)
				assert.Equal(t, "jpeg bytes", string(content))
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := oahttp.NewClient()
		image := openagenda.ImageFromReader(strings.NewReader("jpeg bytes"), "poster.jpg")
		payload := &openagenda.Payload{
			Data:  map[string]interface{}{"title": map[string]string{"fr": "Concert"}},
			Files: []openagenda.File{{Field: "image", Name: image.FileName(), Open: image.Open}},
		}

		resp, err := client.Patch(context.Background(), server.URL+"/events/1", payload, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error response is not an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"message":"not found"}`))
		}))
		defer server.Close()

		client := oahttp.NewClient()

		resp, err := client.Get(context.Background(), server.URL+"/agendas/1", nil)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.False(t, resp.Success())
		assert.JSONEq(t, `{"message":"not found"}`, string(resp.Body))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "token", request.Header.Get("access-token"))
			assert.Equal(t, "custom", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := oahttp.NewClient(oahttp.WithUserAgent("custom"))

		resp, err := client.Delete(context.Background(), server.URL+"/events/1", nil, map[string]string{
			"access-token": "token",
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &recordingLogger{}
		client := oahttp.NewClient(oahttp.WithLogger(logger), oahttp.WithDebug(true))

		_, err := client.Get(context.Background(), server.URL, nil)
		require.NoError(t, err)

		assert.Equal(t, []logEntry{
			{level: "debug", msg: "HTTP Request"},
			{level: "debug", msg: "HTTP Response"},
		}, logger.entries)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		client := oahttp.NewClient()

		resp, err := client.Get(context.Background(), url, nil)
		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*oahttp.Client, context.Context, string) (*openagenda.Response, error)
	}{
		{
			name:   "HEAD",
			method: "HEAD",
			fn: func(c *oahttp.Client, ctx context.Context, url string) (*openagenda.Response, error) {
				return c.Head(ctx, url, nil)
			},
		},
		{
			name:   "GET",
			method: "GET",
			fn: func(c *oahttp.Client, ctx context.Context, url string) (*openagenda.Response, error) {
				return c.Get(ctx, url, nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *oahttp.Client, ctx context.Context, url string) (*openagenda.Response, error) {
				return c.Post(ctx, url, &openagenda.Payload{Data: map[string]interface{}{"key": "value"}}, nil)
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *oahttp.Client, ctx context.Context, url string) (*openagenda.Response, error) {
				return c.Patch(ctx, url, &openagenda.Payload{Data: map[string]interface{}{"key": "value"}}, nil)
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *oahttp.Client, ctx context.Context, url string) (*openagenda.Response, error) {
				return c.Delete(ctx, url, nil, nil)
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := oahttp.NewClient()
			resp, err := testCase.fn(client, context.Background(), server.URL+"/test")
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

func TestClient_NeverRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "rate limiting", status: http.StatusTooManyRequests},
		{name: "client error", status: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				attempts.Add(1)
				writer.WriteHeader(testCase.status)
			}))
			defer server.Close()

			client := oahttp.NewClient()

			resp, err := client.Get(context.Background(), server.URL, nil)
			require.NoError(t, err)
			assert.Equal(t, testCase.status, resp.StatusCode)
			assert.Equal(t, int32(1), attempts.Load())
		})
	}
}
