package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erwane/openagenda-api-sub000/cmd/openagenda/commands"
	"github.com/Erwane/openagenda-api-sub000/internal/constants"
)

// Commands read the global viper instance; tests run serially.

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /requestAccessToken", func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string

		_ = json.NewDecoder(request.Body).Decode(&body)
		if body["code"] != "secret" {
			writer.WriteHeader(http.StatusForbidden)

			return
		}

		_, _ = writer.Write([]byte(`{"access_token":"token-1","expires_in":3600}`))
	})

	mux.HandleFunc("GET /agendas", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"total":1,"after":["a1"],"agendas":[{"uid":12,"slug":"concerts","title":"Concerts","official":1}]}`))
	})

	mux.HandleFunc("GET /agendas/{uid}", func(writer http.ResponseWriter, request *http.Request) {
		if request.PathValue("uid") != "12" {
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		_, _ = writer.Write([]byte(`{"agenda":{"uid":12,"slug":"concerts","title":"Concerts"}}`))
	})

	mux.HandleFunc("GET /agendas/{uid}/events", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"total":1,"events":[{"uid":7,"title":{"fr":"Bal"},"state":2}]}`))
	})

	mux.HandleFunc("GET /agendas/{uid}/events/{event}", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("GET /agendas/{uid}/locations", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"total":0,"locations":[]}`))
	})

	mux.HandleFunc("GET /agendas/{uid}/locations/ext/{ext}", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"location":{"uid":3,"name":"Salle ` + request.PathValue("ext") + `","countryCode":"FR"}}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func configure(t *testing.T, server *httptest.Server, output string) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("public-key", "public")
	viper.Set("base-url", server.URL)
	viper.Set("output", output)
}

func run(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	tests := []struct {
		name     string
		command  *cobra.Command
		children []string
	}{
		{name: "agendas", command: commands.NewAgendasCommand(), children: []string{"list", "get"}},
		{name: "events", command: commands.NewEventsCommand(), children: []string{"list", "get"}},
		{name: "locations", command: commands.NewLocationsCommand(), children: []string{"list", "get"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.command.Name())

			names := make([]string, 0, len(tt.children))
			for _, child := range tt.command.Commands() {
				names = append(names, child.Name())
			}

			assert.ElementsMatch(t, tt.children, names)
		})
	}

	assert.NotNil(t, commands.NewEventsCommand().PersistentFlags().Lookup("agenda"))
	assert.NotNil(t, commands.NewTokenCommand().Flags().Lookup("show"))
}

func TestAgendas_List(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatJSON)

	out, err := run(commands.NewAgendasCommand(), "list", "--limit", "5")
	require.NoError(t, err)

	var page struct {
		Items []map[string]interface{} `json:"items"`
		Total int                      `json:"total"`
		After []string                 `json:"after"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "concerts", page.Items[0]["slug"])
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, []string{"a1"}, page.After)
}

func TestAgendas_ListTable(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatTable)

	out, err := run(commands.NewAgendasCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "concerts")
	assert.Contains(t, out, "Concerts")
	assert.Contains(t, out, "Total: 1")
}

func TestAgendas_Get(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatYAML)

	out, err := run(commands.NewAgendasCommand(), "get", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "slug: concerts")

	_, err = run(commands.NewAgendasCommand(), "get", "13")
	require.ErrorIs(t, err, constants.ErrAgendaNotFound)

	out, err = run(commands.NewAgendasCommand(), "get", "concerts")
	require.NoError(t, err)
	assert.Contains(t, out, "uid: 12")
}

func TestEvents(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatTable)

	_, err := run(commands.NewEventsCommand(), "list")
	require.ErrorIs(t, err, constants.ErrAgendaUIDRequired)

	out, err := run(commands.NewEventsCommand(), "list", "--agenda", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Bal")
	assert.Contains(t, out, "published")

	_, err = run(commands.NewEventsCommand(), "get", "--agenda", "12", "99")
	require.ErrorIs(t, err, constants.ErrEventNotFound)

	_, err = run(commands.NewEventsCommand(), "get", "--agenda", "12")
	require.ErrorIs(t, err, constants.ErrUIDRequired)
}

func TestLocations(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatTable)

	out, err := run(commands.NewLocationsCommand(), "list", "--agenda", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found")

	out, err = run(commands.NewLocationsCommand(), "get", "--agenda", "12", "--ext-id", "bleue")
	require.NoError(t, err)
	assert.Contains(t, out, "Salle bleue")
}

func TestToken(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatJSON)
	viper.Set("secret-key", "secret")

	out, err := run(commands.NewTokenCommand())
	require.NoError(t, err)
	assert.Contains(t, out, `"access_token": "***"`)

	out, err = run(commands.NewTokenCommand(), "--show")
	require.NoError(t, err)
	assert.Contains(t, out, `"access_token": "token-1"`)
}

func TestToken_Refused(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatJSON)
	viper.Set("secret-key", "wrong")

	_, err := run(commands.NewTokenCommand())
	require.ErrorIs(t, err, constants.ErrNoTokenReturned)
}

func TestMissingPublicKey(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatJSON)
	viper.Set("public-key", "")

	_, err := run(commands.NewAgendasCommand(), "list")
	require.ErrorIs(t, err, constants.ErrNoPublicKey)
}

func TestVersion(t *testing.T) {
	server := newTestAPI(t)
	configure(t, server, constants.FormatJSON)

	out, err := run(commands.NewVersionCommand("1.2.3", "abc", "today"))
	require.NoError(t, err)

	var info map[string]string

	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, map[string]string{"version": "1.2.3", "commit": "abc", "built": "today"}, info)
}
