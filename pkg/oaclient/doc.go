// Package oaclient provides the main entry point for creating OpenAgenda API
// clients that implement the openagenda.Client interface.
//
// It wires the default HTTP transport, the token cache backend and the
// internal request client together. Most applications build a client with
// New, then call its resource methods directly.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/Erwane/openagenda-api-sub000/pkg/oaclient"
//	  "github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Read-only: the public key is enough.
//	  cli, err := oaclient.NewWithKeys(ctx, "public-key", "")
//	  if err != nil { log.Fatal(err) }
//
//	  // Writes need the secret key, exchanged for a cached access token.
//	  cli, err = oaclient.New(ctx, &openagenda.Config{
//	    PublicKey: "public-key",
//	    SecretKey: "secret-key",
//	    CacheConfig: &openagenda.CacheConfig{
//	      Type: openagenda.CacheTypeNATS,
//	      NATS: &openagenda.NATSKVConfig{URL: "nats://localhost:4222", Bucket: "openagenda"},
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  events, err := cli.Events(ctx, openagenda.Params{"agendaUid": 12345, "relative": "upcoming"})
//	  if err != nil { log.Fatal(err) }
//	  _ = events
//	}
//
// Default client
//
// Programs that share one client can register it once:
//
//	oaclient.SetDefault(cli)
//	agenda, err := oaclient.GetAgenda(ctx, 12345)
//
// The helpers return openagenda.ErrNoDefaultClient until SetDefault is called.
//
// Errors
//
// Parameter problems are reported as *openagenda.ValidationError before any
// request is sent. Entity invariants fail at set time with
// *openagenda.DomainError. Non-2xx responses on writes, and transport
// failures, surface as *openagenda.TransportError; a 404 on a read yields a
// nil entity and no error.
package oaclient
