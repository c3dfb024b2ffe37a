package oaclient

import (
	"context"
	"sync"

	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

//nolint:gochecknoglobals
var registry struct {
	mutex  sync.RWMutex
	client openagenda.Client
}

// SetDefault registers the client used by the package-level helpers.
func SetDefault(client openagenda.Client) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	registry.client = client
}

// Default returns the registered client.
func Default() (openagenda.Client, error) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	if registry.client == nil {
		return nil, openagenda.ErrNoDefaultClient
	}

	return registry.client, nil
}

// ResetDefault forgets the registered client.
func ResetDefault() {
	SetDefault(nil)
}

// GetAgenda reads an agenda through the default client.
func GetAgenda(ctx context.Context, uid int) (*openagenda.Agenda, error) {
	client, err := Default()
	if err != nil {
		return nil, err
	}

	return client.Agenda(ctx, openagenda.Params{"uid": uid})
}

// GetLocation reads a location through the default client.
func GetLocation(ctx context.Context, agendaUID, uid int) (*openagenda.Location, error) {
	client, err := Default()
	if err != nil {
		return nil, err
	}

	return client.Location(ctx, openagenda.Params{"agendaUid": agendaUID, "uid": uid})
}

// GetEvent reads an event through the default client.
func GetEvent(ctx context.Context, agendaUID, uid int) (*openagenda.Event, error) {
	client, err := Default()
	if err != nil {
		return nil, err
	}

	return client.Event(ctx, openagenda.Params{"agendaUid": agendaUID, "uid": uid})
}
