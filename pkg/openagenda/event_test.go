package openagenda_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

func validEventProps() map[string]interface{} {
	return map[string]interface{}{
		"agendaUid":   12,
		"locationUid": 5,
		"title":       "Concert",
		"description": "En plein air",
		"timings": []map[string]interface{}{
			{"begin": "2024-06-21T20:00:00Z", "end": "2024-06-21T22:00:00Z"},
		},
	}
}

func TestEvent_Multilingual(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{
		"title": map[string]interface{}{"fr": " <b>Concert</b> ", "en": "Gig"},
	})
	require.NoError(t, err)

	assert.Equal(t, openagenda.Multilingual{"fr": "Concert", "en": "Gig"}, event.Title())
	assert.Equal(t, []string{"en", "fr"}, event.Title().Langs())
	assert.ElementsMatch(t, []openagenda.DirtyKey{
		{Field: "title", Sub: "en"},
		{Field: "title", Sub: "fr"},
		{Field: "title"},
	}, event.DirtyKeys())

	_, err = openagenda.NewEvent(map[string]interface{}{"title": map[string]interface{}{"zz": "?"}})
	require.ErrorIs(t, err, openagenda.ErrInvalidLanguage)

	_, err = openagenda.NewEvent(map[string]interface{}{"title": 42})
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)
}

func TestEvent_MultilingualDefaultLang(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{"title": "Gig"}, openagenda.WithLang("en"))
	require.NoError(t, err)
	assert.Equal(t, "Gig", event.Title().Lang("en"))

	// lang is applied before the other fields
	event, err = openagenda.NewEvent(map[string]interface{}{"title": "Konzert"}, openagenda.WithLang("de"))
	require.NoError(t, err)
	assert.Equal(t, []string{"de"}, event.Title().Langs())
}

func TestEvent_Truncation(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{
		"title":       strings.Repeat("a", 300),
		"description": strings.Repeat("b", 100),
	})
	require.NoError(t, err)

	assert.Equal(t, 140, utf8.RuneCountInString(event.Title().Lang("fr")))
	assert.True(t, strings.HasSuffix(event.Title().Lang("fr"), " ..."))
	assert.Equal(t, 100, utf8.RuneCountInString(event.Description().Lang("fr")))
}

func TestEvent_LongDescription(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{
		"longDescription": `<p>Venez <strong>nombreux</strong></p><script>x()</script>`,
	})
	require.NoError(t, err)

	assert.Equal(t, "Venez **nombreux**", event.LongDescription().Lang("fr"))

	rendered, err := event.LongDescriptionHTML("fr")
	require.NoError(t, err)
	assert.Equal(t, "<p>Venez <strong>nombreux</strong></p>\n", rendered)

	rendered, err = event.LongDescriptionHTML("en")
	require.NoError(t, err)
	assert.Empty(t, rendered)
}

func TestEvent_LongDescriptionRelativeLink(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{
		"longDescription": `<p>Hello <a href="/x">link</a></p>`,
	}, openagenda.WithBaseURL("https://openagenda.com"))
	require.NoError(t, err)

	assert.Equal(t, "Hello [link](https://openagenda.com/x)", event.LongDescription().Lang("fr"))
}

func TestEvent_Timings(t *testing.T) {
	t.Parallel()

	begin := time.Date(2024, 6, 21, 20, 0, 0, 0, time.UTC)

	event, err := openagenda.NewEvent(map[string]interface{}{
		"timings": []openagenda.Timing{
			{Begin: begin.Add(24 * time.Hour), End: begin.Add(26 * time.Hour)},
			{Begin: begin, End: begin.Add(2 * time.Hour)},
		},
	})
	require.NoError(t, err)

	timings := event.Timings()
	require.Len(t, timings, 2)
	assert.Equal(t, begin, timings[0].Begin, "sorted by begin")

	tests := []struct {
		name  string
		value interface{}
	}{
		{name: "empty", value: []openagenda.Timing{}},
		{name: "reversed", value: []openagenda.Timing{{Begin: begin, End: begin}}},
		{name: "unparsable", value: []map[string]interface{}{{"begin": "soon", "end": "later"}}},
		{name: "wrong type", value: "tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := openagenda.NewEvent(map[string]interface{}{"timings": tt.value})

			var domainErr *openagenda.DomainError

			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "timings", domainErr.Field)
		})
	}
}

func TestEvent_Enums(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{
		"attendanceMode": "mixed",
		"state":          "published",
		"status":         "6",
	})
	require.NoError(t, err)

	assert.Equal(t, openagenda.AttendanceMixed, event.AttendanceMode())
	assert.Equal(t, openagenda.StatePublished, event.State())
	assert.Equal(t, openagenda.StatusCancelled, event.Status())
	assert.Equal(t, "mixed", event.AttendanceMode().String())
	assert.Equal(t, "published", event.State().String())

	blank, err := openagenda.NewEvent(nil)
	require.NoError(t, err)
	assert.Equal(t, openagenda.AttendanceOffline, blank.AttendanceMode())
	assert.Equal(t, openagenda.StatusScheduled, blank.Status())

	_, err = openagenda.NewEvent(map[string]interface{}{"state": 5})
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)

	_, err = openagenda.NewEvent(map[string]interface{}{"attendanceMode": "remote"})
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)
}

func TestEvent_AgeAndAccessibility(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{
		"age":           map[string]interface{}{"min": 6, "max": float64(12)},
		"accessibility": map[string]interface{}{"vi": true, "pi": 1},
	})
	require.NoError(t, err)

	assert.Equal(t, openagenda.NewAge(6, 12), event.Age())
	assert.Equal(t, openagenda.Accessibility{VI: true, PI: true}, event.Accessibility())

	_, err = openagenda.NewEvent(map[string]interface{}{"age": map[string]int{"max": 12}})
	require.Error(t, err)

	_, err = openagenda.NewEvent(map[string]interface{}{"age": openagenda.NewAge(12, 6)})
	require.Error(t, err)

	_, err = openagenda.NewEvent(map[string]interface{}{"accessibility": map[string]bool{"xx": true, "hi": true}})
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)
	assert.Contains(t, err.Error(), "xx")
}

func TestEvent_Location(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{
		"location": map[string]interface{}{"uid": 9, "name": "Salle"},
	})
	require.NoError(t, err)

	require.NotNil(t, event.Location())
	assert.Equal(t, "Salle", event.Location().Name())
	assert.Equal(t, 9, event.LocationUID(), "uid copied from the embedded location")
	assert.True(t, event.IsDirty("locationUid"))

	wired, err := openagenda.EventFromWire(map[string]interface{}{
		"uid":      float64(1),
		"location": map[string]interface{}{"uid": float64(4), "city": "Lyon"},
	})
	require.NoError(t, err)
	require.NotNil(t, wired.Location())
	assert.Equal(t, "Lyon", wired.Location().City())
	assert.False(t, wired.Location().IsNew())
}

func TestEvent_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		change map[string]interface{}
		remove []string
		fields []string
	}{
		{name: "valid"},
		{name: "missing timings", remove: []string{"timings"}, fields: []string{"timings"}},
		{name: "offline without location", remove: []string{"locationUid"}, fields: []string{"locationUid"}},
		{
			name:   "online without link",
			change: map[string]interface{}{"attendanceMode": "online"},
			fields: []string{"onlineAccessLink"},
		},
		{
			name:   "online needs no location",
			change: map[string]interface{}{"attendanceMode": 2, "onlineAccessLink": "https://example.com/live"},
			remove: []string{"locationUid"},
		},
		{
			name:   "mixed needs both",
			change: map[string]interface{}{"attendanceMode": "mixed", "onlineAccessLink": "ftp://example.com"},
			remove: []string{"locationUid"},
			fields: []string{"locationUid", "onlineAccessLink"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			props := validEventProps()
			for _, field := range tt.remove {
				delete(props, field)
			}

			for field, value := range tt.change {
				props[field] = value
			}

			event, err := openagenda.NewEvent(props)
			require.NoError(t, err)

			err = event.Check()
			if len(tt.fields) == 0 {
				require.NoError(t, err)

				return
			}

			var verr *openagenda.ValidationError

			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields())
		})
	}
}

func TestEvent_ToPayload(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(validEventProps())
	require.NoError(t, err)

	require.NoError(t, event.Set("keywords", []string{"jazz"}))
	require.NoError(t, event.Set("image", "https://cdn.example.com/a.jpg"))

	payload, err := event.ToPayload(false)
	require.NoError(t, err)
	assert.False(t, payload.IsMultipart())

	assert.NotContains(t, payload.Data, "agendaUid", "read-only")
	assert.Equal(t, 5, payload.Data["locationUid"])
	assert.Equal(t, map[string]interface{}{"fr": "Concert"}, payload.Data["title"])
	assert.Equal(t, map[string]interface{}{"fr": []string{"jazz"}}, payload.Data["keywords"])
	assert.Equal(t, map[string]interface{}{"url": "https://cdn.example.com/a.jpg"}, payload.Data["image"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"begin": "2024-06-21T20:00:00Z", "end": "2024-06-21T22:00:00Z"},
	}, payload.Data["timings"])

	event.Clean()
	require.NoError(t, event.Set("title", "Bal"))

	update, err := event.ToPayload(true)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": map[string]interface{}{"fr": "Bal"}}, update.Data)
}

func TestEvent_ToPayloadRequired(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{"title": "Concert"})
	require.NoError(t, err)

	_, err = event.ToPayload(false)

	var domainErr *openagenda.DomainError

	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "description", domainErr.Field)

	_, err = event.ToPayload(true)
	require.NoError(t, err, "updates only send what changed")
}

func TestEvent_ToPayloadUpload(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(validEventProps())
	require.NoError(t, err)

	require.NoError(t, event.Set("image", openagenda.ImageFromReader(strings.NewReader("jpeg"), "poster.jpg")))

	payload, err := event.ToPayload(false)
	require.NoError(t, err)
	require.True(t, payload.IsMultipart())
	assert.NotContains(t, payload.Data, "image")
	assert.Equal(t, "image", payload.Files[0].Field)
	assert.Equal(t, "poster.jpg", payload.Files[0].Name)

	event.Clean()
	require.NoError(t, event.Set("title", "Bal"))

	update, err := event.ToPayload(true)
	require.NoError(t, err)
	assert.False(t, update.IsMultipart(), "clean image is not re-sent")
}
