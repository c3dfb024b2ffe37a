package oaclient_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erwane/openagenda-api-sub000/pkg/oaclient"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

// Registry tests share process state and run serially.

func TestRegistry_Empty(t *testing.T) {
	oaclient.ResetDefault()
	t.Cleanup(oaclient.ResetDefault)

	_, err := oaclient.Default()
	require.ErrorIs(t, err, openagenda.ErrNoDefaultClient)

	_, err = oaclient.GetAgenda(context.Background(), 12)
	require.ErrorIs(t, err, openagenda.ErrNoDefaultClient)

	_, err = oaclient.GetEvent(context.Background(), 12, 1)
	require.ErrorIs(t, err, openagenda.ErrNoDefaultClient)

	_, err = oaclient.GetLocation(context.Background(), 12, 1)
	require.ErrorIs(t, err, openagenda.ErrNoDefaultClient)
}

func TestRegistry_Default(t *testing.T) {
	t.Cleanup(oaclient.ResetDefault)

	var authCalls atomic.Int32

	server := newAPI(t, &authCalls)

	client, err := oaclient.New(context.Background(), &openagenda.Config{
		PublicKey: "public",
		BaseURL:   server.URL,
	})
	require.NoError(t, err)

	oaclient.SetDefault(client)

	registered, err := oaclient.Default()
	require.NoError(t, err)
	assert.Same(t, client, registered)

	agenda, err := oaclient.GetAgenda(context.Background(), 12)
	require.NoError(t, err)
	require.NotNil(t, agenda)
	assert.Equal(t, 12, agenda.UID())

	oaclient.ResetDefault()

	_, err = oaclient.Default()
	require.ErrorIs(t, err, openagenda.ErrNoDefaultClient)
}
