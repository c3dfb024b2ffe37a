package client_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

func TestClient_AgendaBySlug(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(func(_, rawURL string) (*openagenda.Response, error) {
		if strings.Contains(rawURL, "slug%5B%5D=missing") {
			return jsonResponse(http.StatusOK, `{"total":0,"agendas":[]}`), nil
		}

		return jsonResponse(http.StatusOK, `{"total":1,"agendas":[{"uid":42,"slug":"concerts","title":"Concerts"}]}`), nil
	})
	client := newClient(t, transport)

	agenda, err := client.AgendaBySlug(context.Background(), "concerts")
	require.NoError(t, err)
	require.NotNil(t, agenda)
	assert.Equal(t, 42, agenda.UID())
	assert.Contains(t, transport.last().url, "size=1")

	agenda, err = client.AgendaBySlug(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, agenda)
}

func TestClient_Locations(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(func(method, rawURL string) (*openagenda.Response, error) {
		switch {
		case method == http.MethodGet && strings.Contains(rawURL, "/locations/77"):
			return jsonResponse(http.StatusNotFound, `{"message":"not found"}`), nil
		case method == http.MethodGet:
			return jsonResponse(http.StatusOK, `{"total":1,"locations":[{"uid":5,"name":"Salle","latitude":"45.1"}]}`), nil
		case method == http.MethodHead:
			return jsonResponse(http.StatusOK, ""), nil
		default:
			return jsonResponse(http.StatusOK, `{"location":{"uid":5,"name":"Salle","countryCode":"FR"}}`), nil
		}
	})
	client := newClient(t, transport)
	ctx := context.Background()

	list, err := client.Locations(ctx, openagenda.Params{"agendaUid": 1})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.InDelta(t, 45.1, list.Items[0].Latitude(), 0.0001)

	missing, err := client.Location(ctx, openagenda.Params{"agendaUid": 1, "uid": 77})
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := client.LocationExists(ctx, openagenda.Params{"agendaUid": 1, "uid": 5})
	require.NoError(t, err)
	assert.True(t, exists)

	location, err := openagenda.NewLocation(map[string]interface{}{
		"agendaUid":   1,
		"name":        "Salle",
		"address":     "1 rue",
		"countryCode": "fr",
	})
	require.NoError(t, err)

	created, err := client.CreateLocation(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, 5, created.UID())
	assert.Equal(t, baseURL+"/agendas/1/locations", transport.last().url)
	assert.Equal(t, "token-1", transport.last().headers["access-token"])

	require.NoError(t, created.Set("name", "Grande salle"))
	require.NoError(t, created.Set("agendaUid", 1))

	_, err = client.UpdateLocation(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, transport.last().method)
	assert.Equal(t, baseURL+"/agendas/1/locations/5", transport.last().url)

	_, err = client.DeleteLocation(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, transport.last().method)

	_, err = client.CreateLocation(ctx, nil)
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)
}

func TestClient_CreateEvent(t *testing.T) {
	t.Parallel()

	t.Run("offline event without location", func(t *testing.T) {
		t.Parallel()

		transport := newFakeTransport(func(string, string) (*openagenda.Response, error) {
			return jsonResponse(http.StatusOK, `{}`), nil
		})
		client := newClient(t, transport)

		event, err := openagenda.NewEvent(map[string]interface{}{
			"agendaUid":   1,
			"title":       "Concert",
			"description": "Jazz en plein air",
			"timings": []map[string]interface{}{
				{"begin": "2024-06-21T20:00:00+02:00", "end": "2024-06-21T23:00:00+02:00"},
			},
		})
		require.NoError(t, err)

		_, err = client.CreateEvent(context.Background(), event)
		require.Error(t, err)

		var validationErr *openagenda.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, []string{"locationUid"}, validationErr.Fields())
		assert.Empty(t, transport.requests)
	})

	t.Run("posted with its location", func(t *testing.T) {
		t.Parallel()

		transport := newFakeTransport(func(string, string) (*openagenda.Response, error) {
			return jsonResponse(http.StatusOK, `{"event":{"uid":9,"locationUid":3,"title":{"fr":"Concert"}}}`), nil
		})
		client := newClient(t, transport)

		event, err := openagenda.NewEvent(map[string]interface{}{
			"agendaUid":   1,
			"locationUid": 3,
			"title":       "Concert",
			"description": "Jazz en plein air",
			"timings": []map[string]interface{}{
				{"begin": "2024-06-21T20:00:00+02:00", "end": "2024-06-21T23:00:00+02:00"},
			},
		})
		require.NoError(t, err)

		created, err := client.CreateEvent(context.Background(), event)
		require.NoError(t, err)
		assert.Equal(t, 9, created.UID())
		assert.Equal(t, 3, created.LocationUID())

		request := transport.last()
		assert.Equal(t, baseURL+"/agendas/1/events", request.url)
		assert.Equal(t, map[string]interface{}{"fr": "Concert"}, request.payload.Data["title"])
		assert.Equal(t, 3, request.payload.Data["locationUid"])
	})
}

func TestClient_Events(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(func(_, rawURL string) (*openagenda.Response, error) {
		if strings.Contains(rawURL, "/events/ext/") {
			return jsonResponse(http.StatusOK, `{"event":{"uid":4,"extId":"abc"}}`), nil
		}

		return jsonResponse(http.StatusOK, `{"total":3,"after":[10],"events":[{"uid":1},{"uid":2},{"uid":3}]}`), nil
	})
	client := newClient(t, transport)

	list, err := client.Events(context.Background(), openagenda.Params{"agendaUid": 1, "relative": "upcoming"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
	assert.Equal(t, 3, list.Total)
	assert.Contains(t, transport.last().url, "relative%5B%5D=upcoming")

	event, err := client.Event(context.Background(), openagenda.Params{"agendaUid": 1, "extId": "abc"})
	require.NoError(t, err)
	assert.Equal(t, 4, event.UID())
	assert.Equal(t, "abc", event.ExtID())

	_, err = client.Events(context.Background(), openagenda.Params{"relative": "someday"})
	require.Error(t, err)
	assert.True(t, openagenda.IsValidation(err))
}
