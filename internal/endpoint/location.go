package endpoint

import (
	"context"
	"fmt"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

// Locations lists the locations of an agenda.
type Locations struct {
	*Endpoint
}

// NewLocations creates the location search endpoint.
func NewLocations(baseURL string, params openagenda.Params) *Locations {
	fields := []Field{
		{Name: "agendaUid", Type: TypeInt, In: InPath, Required: []Method{MethodGet}},
		{Name: "limit", Type: TypeInt, Query: "size", Min: 1, Max: constants.MaxPageSize},
		{Name: "after", Type: TypeArray},
		{Name: "search", Type: TypeString},
		{Name: "detailed", Type: TypeBool},
		{Name: "state", Type: TypeBool},
		{Name: "createdAt", Type: TypeMap},
		{Name: "updatedAt", Type: TypeMap},
		{
			Name:   "order",
			Type:   TypeString,
			InList: []string{"name.asc", "name.desc", "createdAt.asc", "createdAt.desc"},
			Rewrite: map[string]string{
				"name":    "name.asc",
				"created": "createdAt.desc",
			},
		},
	}

	return &Locations{newEndpoint("locations", baseURL, params, fields, func(_ Method, values map[string]interface{}) string {
		return "/agendas/" + pathID(values, "agendaUid") + "/locations"
	})}
}

// List returns one page of locations. A 404 is an empty page.
func (e *Locations) List(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.List[*openagenda.Location], error) {
	response, err := e.fetch(ctx, requester)
	if err != nil {
		return nil, err
	}

	list := &openagenda.List[*openagenda.Location]{Items: []*openagenda.Location{}}
	if response == nil {
		return list, nil
	}

	for _, data := range items(response, "locations") {
		location, err := openagenda.LocationFromWire(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("hydrating location: %w", err)
		}

		list.Items = append(list.Items, location)
	}

	list.Total, list.After = listMeta(response)

	return list, nil
}

// Location manages a single location, addressed by uid or extId.
type Location struct {
	*Endpoint
}

// NewLocation creates the location endpoint.
func NewLocation(baseURL string, params openagenda.Params) *Location {
	all := []Method{MethodExists, MethodGet, MethodCreate, MethodUpdate, MethodDelete}

	fields := []Field{
		{Name: "agendaUid", Type: TypeInt, In: InPath, Required: all},
		{Name: "uid", Type: TypeInt, In: InPath},
		{Name: "extId", Type: TypeString, In: InPath},
		{Name: "detailed", Type: TypeBool, Methods: []Method{MethodGet}},
		{Name: "name", Type: TypeString, In: InBody, Required: []Method{MethodCreate}},
		{Name: "address", Type: TypeString, In: InBody, Required: []Method{MethodCreate}},
		{Name: "countryCode", Type: TypeString, In: InBody, Required: []Method{MethodCreate}},
	}

	endpoint := newEndpoint("location", baseURL, params, fields, func(method Method, values map[string]interface{}) string {
		return itemPath("/agendas/"+pathID(values, "agendaUid")+"/locations", method, values)
	})
	endpoint.check = requireIdentifier

	return &Location{endpoint}
}

// Exists reports whether the location exists.
func (e *Location) Exists(ctx context.Context, requester Requester) (bool, error) {
	return e.exists(ctx, requester)
}

// Get returns the location, nil when not found.
func (e *Location) Get(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Location, error) {
	response, err := e.fetch(ctx, requester)
	if err != nil || response == nil {
		return nil, err
	}

	return hydrateLocation(response, opts)
}

// Create posts the attached location.
func (e *Location) Create(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Location, error) {
	return e.save(ctx, requester, MethodCreate, opts)
}

// Update patches the dirty fields of the attached location.
func (e *Location) Update(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Location, error) {
	return e.save(ctx, requester, MethodUpdate, opts)
}

// Delete removes the location and returns it as last seen by the API.
func (e *Location) Delete(ctx context.Context, requester Requester, opts ...openagenda.Option) (*openagenda.Location, error) {
	return e.save(ctx, requester, MethodDelete, opts)
}

func (e *Location) save(ctx context.Context, requester Requester, method Method, opts []openagenda.Option) (*openagenda.Location, error) {
	response, err := e.write(ctx, requester, method)
	if err != nil {
		return nil, err
	}

	return hydrateLocation(response, opts)
}

func hydrateLocation(response map[string]interface{}, opts []openagenda.Option) (*openagenda.Location, error) {
	location, err := openagenda.LocationFromWire(item(response, "location"), opts...)
	if err != nil {
		return nil, fmt.Errorf("hydrating location: %w", err)
	}

	return location, nil
}

// itemPath addresses a resource under collection: create posts to the
// collection, other methods use the uid or, failing that, the extId.
func itemPath(collection string, method Method, values map[string]interface{}) string {
	if method == MethodCreate {
		return collection
	}

	if _, ok := values["uid"]; !ok {
		if _, ok := values["extId"]; ok {
			return collection + "/ext/" + pathID(values, "extId")
		}
	}

	return collection + "/" + pathID(values, "uid")
}

func requireIdentifier(method Method, values map[string]interface{}, errs *openagenda.ValidationError) {
	if method != MethodUpdate && method != MethodDelete {
		return
	}

	_, hasUID := values["uid"]
	_, hasExtID := values["extId"]

	if !hasUID && !hasExtID && !errs.Has("uid") && !errs.Has("extId") {
		errs.Add("uid", constants.RuleRequired, "uid or extId is required")
	}
}
