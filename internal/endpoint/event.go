package endpoint

import (
	"context"
	"fmt"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

// Events lists the events of an agenda.
type Events struct {
	*Endpoint
}

// NewEvents creates the event search endpoint.
func NewEvents(baseURL string, params openagenda.Params) *Events {
	fields := []Field{
		{Name: "agendaUid", Type: TypeInt, In: InPath, Required: []Method{MethodGet}},
		{Name: "limit", Type: TypeInt, Query: "size", Min: 1, Max: constants.MaxPageSize},
		{Name: "after", Type: TypeArray},
		{Name: "detailed", Type: TypeBool},
		{Name: "monolingual", Type: TypeString},
		{Name: "longDescriptionFormat", Type: TypeString, InList: []string{"markdown", "HTML", "HTMLWithEmbeds"}},
		{Name: "search", Type: TypeString},
		{Name: "uid", Type: TypeArray},
		{Name: "slug", Type: TypeString},
		{Name: "featured", Type: TypeBool},
		{Name: "relative", Type: TypeArray, InList: []string{"passed", "upcoming", "current"}},
		{Name: "state", Type: TypeInt, Min: -1, Max: 2},
		{Name: "status", Type: TypeArray, InList: []string{"1", "2", "3", "4", "5", "6"}},
		{Name: "attendanceMode", Type: TypeArray, InList: []string{"1", "2", "3"}},
		{Name: "accessibility", Type: TypeArray, InList: openagenda.AccessibilityKeys},
		{Name: "keyword", Type: TypeArray},
		{Name: "locationUid", Type: TypeArray},
		{Name: "city", Type: TypeArray},
		{Name: "timings", Type: TypeMap},
		{Name: "createdAt", Type: TypeMap},
		{Name: "updatedAt", Type: TypeMap},
		{Name: "geo", Type: TypeJSON},
		{
			Name:   "sort",
			Type:   TypeString,
			InList: []string{"timings.asc", "updatedAt.desc", "updatedAt.asc", "lastTimingWithFeatured.asc"},
			Rewrite: map[string]string{
				"timings":        "timings.asc",
				"updated_desc":   "updatedAt.desc",
				"updated_asc":    "updatedAt.asc",
				"featured_first": "lastTimingWithFeatured.asc",
			},
		},
	}

	return &Events{newEndpoint("events", baseURL, params, fields, func(_ Method, values map[string]interface{}) string {
		return "/agendas/" + pathID(values, "agendaUid") + "/events"
	})}
}

// List returns one page of events. A 404 is an empty page.
func (e *Events) List(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.List[*openagenda.Event], error) {
	response, err := e.fetch(ctx, requester)
	if err != nil {
		return nil, err
	}

	list := &openagenda.List[*openagenda.Event]{Items: []*openagenda.Event{}}
	if response == nil {
		return list, nil
	}

	for _, data := range items(response, "events") {
		event, err := openagenda.EventFromWire(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("hydrating event: %w", err)
		}

		list.Items = append(list.Items, event)
	}

	list.Total, list.After = listMeta(response)

	return list, nil
}

// Event manages a single event, addressed by uid or extId.
type Event struct {
	*Endpoint
}

// NewEvent creates the event endpoint.
func NewEvent(baseURL string, params openagenda.Params) *Event {
	all := []Method{MethodExists, MethodGet, MethodCreate, MethodUpdate, MethodDelete}

	fields := []Field{
		{Name: "agendaUid", Type: TypeInt, In: InPath, Required: all},
		{Name: "uid", Type: TypeInt, In: InPath},
		{Name: "extId", Type: TypeString, In: InPath},
		{Name: "detailed", Type: TypeBool, Methods: []Method{MethodGet}},
		{Name: "longDescriptionFormat", Type: TypeString, Methods: []Method{MethodGet}, InList: []string{"markdown", "HTML", "HTMLWithEmbeds"}},
		{Name: "title", Type: TypeAny, In: InBody, Required: []Method{MethodCreate}},
		{Name: "description", Type: TypeAny, In: InBody, Required: []Method{MethodCreate}},
		{Name: "timings", Type: TypeAny, In: InBody, Required: []Method{MethodCreate}},
	}

	endpoint := newEndpoint("event", baseURL, params, fields, func(method Method, values map[string]interface{}) string {
		return itemPath("/agendas/"+pathID(values, "agendaUid")+"/events", method, values)
	})
	endpoint.check = requireIdentifier

	return &Event{endpoint}
}

// Exists reports whether the event exists.
func (e *Event) Exists(ctx context.Context, requester Requester) (bool, error) {
	return e.exists(ctx, requester)
}

// Get returns the event, nil when not found.
func (e *Event) Get(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Event, error) {
	response, err := e.fetch(ctx, requester)
	if err != nil || response == nil {
		return nil, err
	}

	return hydrateEvent(response, opts)
}

// Create posts the attached event.
func (e *Event) Create(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Event, error) {
	return e.save(ctx, requester, MethodCreate, opts)
}

// Update patches the dirty fields of the attached event.
func (e *Event) Update(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Event, error) {
	return e.save(ctx, requester, MethodUpdate, opts)
}

// Delete removes the event and returns it as last seen by the API.
func (e *Event) Delete(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Event, error) {
	return e.save(ctx, requester, MethodDelete, opts)
}

func (e *Event) save(ctx context.Context, requester Requester, method Method, opts []openagenda.Option) (*openagenda.Event, error) {
	response, err := e.write(ctx, requester, method)
	if err != nil {
		return nil, err
	}

	return hydrateEvent(response, opts)
}

func hydrateEvent(response map[string]interface{}, opts []openagenda.Option) (*openagenda.Event, error) {
	event, err := openagenda.EventFromWire(item(response, "event"), opts...)
	if err != nil {
		return nil, fmt.Errorf("hydrating event: %w", err)
	}

	return event, nil
}
