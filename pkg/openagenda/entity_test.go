package openagenda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

func TestEntity_SetMarksDirty(t *testing.T) {
	t.Parallel()

	location, err := openagenda.NewLocation(nil)
	require.NoError(t, err)
	assert.True(t, location.IsNew())
	assert.False(t, location.IsDirty())

	require.NoError(t, location.Set("name", "  Salle des fêtes "))
	require.NoError(t, location.Set("city", "Lyon"))
	require.NoError(t, location.Set("name", "Salle des fêtes"))

	assert.Equal(t, "Salle des fêtes", location.Name())
	assert.True(t, location.IsDirty())
	assert.True(t, location.IsDirty("name"))
	assert.False(t, location.IsDirty("address"))
	assert.Equal(t, []string{"name", "city"}, location.Dirty())

	location.SetDirty("name", false)
	assert.Equal(t, []string{"city"}, location.Dirty())

	location.Clean()
	assert.False(t, location.IsDirty())
}

func TestEntity_Aliases(t *testing.T) {
	t.Parallel()

	location, err := openagenda.NewLocation(map[string]interface{}{"id": "42"})
	require.NoError(t, err)

	assert.Equal(t, 42, location.UID())
	assert.True(t, location.Has("uid"))
	assert.True(t, location.Has("id"))

	value, err := location.Get("id")
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestEntity_EmptyFieldName(t *testing.T) {
	t.Parallel()

	location, err := openagenda.NewLocation(nil)
	require.NoError(t, err)

	var domainErr *openagenda.DomainError

	require.ErrorAs(t, location.Set("", "x"), &domainErr)
	require.ErrorIs(t, domainErr, openagenda.ErrInvalidInput)

	_, err = location.Get("")
	require.ErrorIs(t, err, openagenda.ErrInvalidInput)

	value, err := location.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestEntity_SetterFailureAbortsMassAssignment(t *testing.T) {
	t.Parallel()

	_, err := openagenda.NewLocation(map[string]interface{}{
		"name":        "Salle",
		"countryCode": "France",
	})

	var domainErr *openagenda.DomainError

	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "countryCode", domainErr.Field)
	assert.Contains(t, err.Error(), "setting location.countryCode")
}

func TestEntity_SetRawAndUnset(t *testing.T) {
	t.Parallel()

	location, err := openagenda.NewLocation(nil)
	require.NoError(t, err)

	require.NoError(t, location.SetRaw("countryCode", "fr"))
	assert.Equal(t, "fr", location.CountryCode(), "setter bypassed")
	assert.True(t, location.IsDirty("countryCode"))

	location.Clean()
	location.Unset("countryCode")
	assert.False(t, location.Has("countryCode"))
	assert.True(t, location.IsDirty("countryCode"))

	location.Clean()
	location.Unset("countryCode")
	assert.False(t, location.IsDirty(), "unsetting an absent field is a no-op")
}

func TestEntity_ConstructorOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      []openagenda.Option
		wantCode  string
		wantDirty bool
		wantNew   bool
	}{
		{name: "setters", opts: nil, wantCode: "FR", wantDirty: true, wantNew: true},
		{name: "raw", opts: []openagenda.Option{openagenda.WithoutSetters()}, wantCode: "fr", wantDirty: true, wantNew: true},
		{name: "clean", opts: []openagenda.Option{openagenda.MarkClean()}, wantCode: "FR", wantDirty: false, wantNew: true},
		{name: "persisted", opts: []openagenda.Option{openagenda.Persisted(), openagenda.MarkClean()}, wantCode: "FR", wantDirty: false, wantNew: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			location, err := openagenda.NewLocation(map[string]interface{}{"countryCode": "fr"}, tt.opts...)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, location.CountryCode())
			assert.Equal(t, tt.wantDirty, location.IsDirty())
			assert.Equal(t, tt.wantNew, location.IsNew())
		})
	}
}

func TestEntity_PriorityFieldsFirst(t *testing.T) {
	t.Parallel()

	// phone is parsed with the region of countryCode, which must be set
	// first even though it sorts after.
	location, err := openagenda.NewLocation(map[string]interface{}{
		"address":     "1 rue de la Paix",
		"phone":       "020 7946 0000",
		"countryCode": "gb",
	})
	require.NoError(t, err)
	assert.Equal(t, "+44 20 7946 0000", location.Phone())
}

func TestEntity_SetOrdered(t *testing.T) {
	t.Parallel()

	location, err := openagenda.NewLocation(nil)
	require.NoError(t, err)

	require.NoError(t, location.SetOrdered([]openagenda.Property{
		{Name: "city", Value: "Lyon"},
		{Name: "name", Value: "A"},
		{Name: "name", Value: "B"},
	}))

	assert.Equal(t, "B", location.Name())
	assert.Equal(t, []string{"city", "name"}, location.Dirty())
	assert.Equal(t, []string{"city", "name"}, location.Fields())
}

func TestEntity_Extract(t *testing.T) {
	t.Parallel()

	location, err := openagenda.LocationFromWire(map[string]interface{}{
		"uid":  float64(3),
		"name": "Salle",
		"city": "Lyon",
	})
	require.NoError(t, err)

	require.NoError(t, location.Set("city", "Paris"))

	assert.Equal(t, map[string]interface{}{"uid": 3, "name": "Salle", "city": "Paris"},
		location.Extract([]string{"uid", "name", "city", "address"}, false))
	assert.Equal(t, map[string]interface{}{"city": "Paris"},
		location.Extract([]string{"uid", "name", "city"}, true))
}

func TestEntity_FromWire(t *testing.T) {
	t.Parallel()

	location, err := openagenda.LocationFromWire(map[string]interface{}{
		"uid":         float64(7),
		"agendaUid":   float64(12),
		"name":        "Salle",
		"countryCode": "fr",
		"latitude":    "45.75",
		"state":       true,
		"_internal":   "dropped",
		"createdAt":   "2024-01-02T03:04:05Z",
	})
	require.NoError(t, err)

	assert.False(t, location.IsNew())
	assert.False(t, location.IsDirty())
	assert.False(t, location.Has("_internal"))
	assert.Equal(t, 7, location.UID())
	assert.Equal(t, 12, location.AgendaUID())
	assert.Equal(t, "fr", location.CountryCode(), "wire values are trusted as-is")
	assert.InDelta(t, 45.75, location.Latitude(), 0.0001)
	assert.True(t, location.State())
	assert.Equal(t, 2024, location.CreatedAt().Year())
}

func TestEntity_NewAndLifecycle(t *testing.T) {
	t.Parallel()

	var location openagenda.Location

	assert.True(t, location.IsNew(), "zero value is new")
	assert.Equal(t, "fr", location.Lang())

	location.SetNew(false)
	assert.False(t, location.IsNew())
}

func TestEntity_ToMap(t *testing.T) {
	t.Parallel()

	event, err := openagenda.NewEvent(map[string]interface{}{
		"title":         "Concert",
		"keywords":      "jazz, live",
		"accessibility": map[string]bool{"hi": true},
	})
	require.NoError(t, err)

	exported := event.ToMap()
	assert.Equal(t, map[string]interface{}{"fr": "Concert"}, exported["title"])
	assert.Equal(t, map[string]interface{}{"fr": []string{"jazz", "live"}}, exported["keywords"])
	assert.Equal(t, map[string]interface{}{"hi": true, "ii": false, "mi": false, "pi": false, "vi": false}, exported["accessibility"])
}

func TestDirtyKey_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "title", openagenda.DirtyKey{Field: "title"}.String())
	assert.Equal(t, "title[en]", openagenda.DirtyKey{Field: "title", Sub: "en"}.String())
}
