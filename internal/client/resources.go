package client

import (
	"context"
	"fmt"

	"github.com/Erwane/openagenda-api-sub000/internal/endpoint"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

// Agendas returns one page of agendas.
func (c *Client) Agendas(ctx context.Context, params openagenda.Params) (*openagenda.List[*openagenda.Agenda], error) {
	return endpoint.NewAgendas(c.baseURL, params).List(ctx, c, c.entityOptions()...)
}

// Agenda returns the agenda addressed by params["uid"], nil when not found.
func (c *Client) Agenda(ctx context.Context, params openagenda.Params) (*openagenda.Agenda, error) {
	return endpoint.NewAgenda(c.baseURL, params).Get(ctx, c, c.entityOptions()...)
}

// AgendaBySlug returns the agenda published under slug, nil when none is.
func (c *Client) AgendaBySlug(ctx context.Context, slug string) (*openagenda.Agenda, error) {
	list, err := c.Agendas(ctx, openagenda.Params{"slug": []string{slug}, "limit": 1})
	if err != nil {
		return nil, err
	}

	for _, agenda := range list.Items {
		if agenda.Slug() == slug {
			return agenda, nil
		}
	}

	return nil, nil
}

// Locations returns one page of the locations of params["agendaUid"].
func (c *Client) Locations(ctx context.Context, params openagenda.Params) (*openagenda.List[*openagenda.Location], error) {
	return endpoint.NewLocations(c.baseURL, params).List(ctx, c, c.entityOptions()...)
}

// Location returns a location, nil when not found.
func (c *Client) Location(ctx context.Context, params openagenda.Params) (*openagenda.Location, error) {
	return endpoint.NewLocation(c.baseURL, params).Get(ctx, c, c.entityOptions()...)
}

// LocationExists reports whether a location exists.
func (c *Client) LocationExists(ctx context.Context, params openagenda.Params) (bool, error) {
	return endpoint.NewLocation(c.baseURL, params).Exists(ctx, c)
}

// CreateLocation posts a new location.
func (c *Client) CreateLocation(ctx context.Context, location *openagenda.Location) (*openagenda.Location, error) {
	target, err := c.locationEndpoint(location)
	if err != nil {
		return nil, err
	}

	return target.Create(ctx, c, c.entityOptions()...)
}

// UpdateLocation sends the dirty fields of location.
func (c *Client) UpdateLocation(ctx context.Context, location *openagenda.Location) (*openagenda.Location, error) {
	target, err := c.locationEndpoint(location)
	if err != nil {
		return nil, err
	}

	return target.Update(ctx, c, c.entityOptions()...)
}

// DeleteLocation removes location.
func (c *Client) DeleteLocation(ctx context.Context, location *openagenda.Location) (*openagenda.Location, error) {
	target, err := c.locationEndpoint(location)
	if err != nil {
		return nil, err
	}

	return target.Delete(ctx, c, c.entityOptions()...)
}

func (c *Client) locationEndpoint(location *openagenda.Location) (*endpoint.Location, error) {
	if location == nil {
		return nil, fmt.Errorf("nil location: %w", openagenda.ErrInvalidInput)
	}

	target := endpoint.NewLocation(c.baseURL, identity(location.AgendaUID(), location.UID(), location.ExtID()))
	target.WithBody(location)

	return target, nil
}

// Events returns one page of the events of params["agendaUid"].
func (c *Client) Events(ctx context.Context, params openagenda.Params) (*openagenda.List[*openagenda.Event], error) {
	return endpoint.NewEvents(c.baseURL, params).List(ctx, c, c.entityOptions()...)
}

// Event returns an event, nil when not found.
func (c *Client) Event(ctx context.Context, params openagenda.Params) (*openagenda.Event, error) {
	return endpoint.NewEvent(c.baseURL, params).Get(ctx, c, c.entityOptions()...)
}

// EventExists reports whether an event exists.
func (c *Client) EventExists(ctx context.Context, params openagenda.Params) (bool, error) {
	return endpoint.NewEvent(c.baseURL, params).Exists(ctx, c)
}

// CreateEvent checks and posts a new event.
func (c *Client) CreateEvent(ctx context.Context, event *openagenda.Event) (*openagenda.Event, error) {
	target, err := c.eventEndpoint(event)
	if err != nil {
		return nil, err
	}

	err = event.Check()
	if err != nil {
		return nil, err
	}

	return target.Create(ctx, c, c.entityOptions()...)
}

// UpdateEvent sends the dirty fields of event.
func (c *Client) UpdateEvent(ctx context.Context, event *openagenda.Event) (*openagenda.Event, error) {
	target, err := c.eventEndpoint(event)
	if err != nil {
		return nil, err
	}

	return target.Update(ctx, c, c.entityOptions()...)
}

// DeleteEvent removes event.
func (c *Client) DeleteEvent(ctx context.Context, event *openagenda.Event) (*openagenda.Event, error) {
	target, err := c.eventEndpoint(event)
	if err != nil {
		return nil, err
	}

	return target.Delete(ctx, c, c.entityOptions()...)
}

func (c *Client) eventEndpoint(event *openagenda.Event) (*endpoint.Event, error) {
	if event == nil {
		return nil, fmt.Errorf("nil event: %w", openagenda.ErrInvalidInput)
	}

	target := endpoint.NewEvent(c.baseURL, identity(event.AgendaUID(), event.UID(), event.ExtID()))
	target.WithBody(event)

	return target, nil
}

// identity builds the path parameters of an entity. Zero identifiers are
// left out so extId addressing applies.
func identity(agendaUID, uid int, extID string) openagenda.Params {
	params := openagenda.Params{}

	if agendaUID > 0 {
		params["agendaUid"] = agendaUID
	}

	if uid > 0 {
		params["uid"] = uid
	}

	if extID != "" {
		params["extId"] = extID
	}

	return params
}
