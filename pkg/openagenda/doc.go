// Package openagenda provides types, interfaces, and helpers for working with
// the OpenAgenda v2 REST API.
//
// # Overview
//
// The openagenda package defines the entities (Agenda, Location, Event), the
// Client interface implemented by the oaclient package, and the contracts the
// client depends on: Transport for HTTP calls and Cache for access tokens.
// Most consumers build a client with oaclient.New and exchange entities with
// it.
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
//	  cli, err := oaclient.New(ctx, &openagenda.Config{PublicKey: "public", SecretKey: "secret"})
//	  if err != nil { log.Fatal(err) }
//
//	  events, err := cli.Events(ctx, openagenda.Params{"agendaUid": 123, "limit": 50})
//	  if err != nil { log.Fatal(err) }
//	  _ = events
//	}
//
// # Entities
//
// Entities are attribute bags with dirty tracking. Every concrete type
// registers one Schema holding its field setters and getters, aliases and
// wire mapping. Set runs the setter and marks the field dirty; Get runs the
// getter over the stored value. Entities read from the API are built with
// the *FromWire constructors: values are stored as received, nothing is
// dirty and IsNew is false, so ToPayload(true) only sends what the caller
// changed afterwards.
//
//	event, err := openagenda.NewEvent(map[string]interface{}{
//	  "title":   "Concert",
//	  "timings": []openagenda.Timing{{Begin: begin, End: end}},
//	})
//
// Multilingual fields accept a plain string, wrapped under the default
// language, or a map of ISO 639-1 codes to text. Texts longer than the field
// limit are cut to the limit, ending with " ...".
//
// # Errors
//
// Errors can be inspected with errors.As:
//   - *ConfigurationError for invalid Config values
//   - *ValidationError for endpoint parameter violations, listing every field
//   - *TransportError for non-2xx responses and transport failures
//   - *DomainError for entity invariant violations
package openagenda
