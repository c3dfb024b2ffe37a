package endpoint

import (
	"context"
	"fmt"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

// Agendas lists agendas.
type Agendas struct {
	*Endpoint
}

// NewAgendas creates the agenda search endpoint.
func NewAgendas(baseURL string, params openagenda.Params) *Agendas {
	fields := []Field{
		{Name: "limit", Type: TypeInt, Query: "size", Min: 1, Max: constants.MaxPageSize},
		{Name: "after", Type: TypeArray},
		{Name: "fields", Type: TypeArray},
		{Name: "search", Type: TypeString},
		{Name: "official", Type: TypeBool},
		{Name: "slug", Type: TypeArray},
		{Name: "uid", Type: TypeArray},
		{Name: "network", Type: TypeInt},
		{
			Name:   "sort",
			Type:   TypeString,
			InList: []string{"createdAt.desc", "recentlyAddedEvents.desc"},
			Rewrite: map[string]string{
				"created_desc":  "createdAt.desc",
				"recent_events": "recentlyAddedEvents.desc",
			},
		},
	}

	return &Agendas{newEndpoint("agendas", baseURL, params, fields, func(Method, map[string]interface{}) string {
		return "/agendas"
	})}
}

// List returns one page of agendas. A 404 is an empty page.
func (e *Agendas) List(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.List[*openagenda.Agenda], error) {
	response, err := e.fetch(ctx, requester)
	if err != nil {
		return nil, err
	}

	list := &openagenda.List[*openagenda.Agenda]{Items: []*openagenda.Agenda{}}
	if response == nil {
		return list, nil
	}

	for _, data := range items(response, "agendas") {
		agenda, err := openagenda.AgendaFromWire(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("hydrating agenda: %w", err)
		}

		list.Items = append(list.Items, agenda)
	}

	list.Total, list.After = listMeta(response)

	return list, nil
}

// Agenda reads a single agenda.
type Agenda struct {
	*Endpoint
}

// NewAgenda creates the agenda endpoint. The agenda is addressed by "uid".
func NewAgenda(baseURL string, params openagenda.Params) *Agenda {
	fields := []Field{
		{Name: "uid", Type: TypeInt, In: InPath},
		{Name: "detailed", Type: TypeBool, Methods: []Method{MethodGet}},
	}

	return &Agenda{newEndpoint("agenda", baseURL, params, fields, func(_ Method, values map[string]interface{}) string {
		return "/agendas/" + pathID(values, "uid")
	})}
}

// Exists reports whether the agenda exists.
func (e *Agenda) Exists(ctx context.Context, requester Requester) (bool, error) {
	return e.exists(ctx, requester)
}

// Get returns the agenda, nil when not found.
func (e *Agenda) Get(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Agenda, error) {
	response, err := e.fetch(ctx, requester)
	if err != nil || response == nil {
		return nil, err
	}

	agenda, err := openagenda.AgendaFromWire(item(response, "agenda"), opts...)
	if err != nil {
		return nil, fmt.Errorf("hydrating agenda: %w", err)
	}

	return agenda, nil
}

// Auth is the access token endpoint.
type Auth struct {
	baseURL string
}

// NewAuth creates the access token endpoint.
func NewAuth(baseURL string) *Auth {
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	return &Auth{baseURL: baseURL}
}

// URL returns the requestAccessToken URL.
func (e *Auth) URL() string {
	return trimSlash(e.baseURL) + "/requestAccessToken"
}
