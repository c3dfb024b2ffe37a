package commands

import (
	"strconv"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
	"github.com/spf13/cobra"
)

// NewAgendasCommand creates the agendas command group.
func NewAgendasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agendas",
		Aliases: []string{"agenda"},
		Short:   "Browse agendas",
		Long:    "List and inspect OpenAgenda agendas",
	}

	cmd.AddCommand(newAgendasListCommand())
	cmd.AddCommand(newAgendasGetCommand())

	return cmd
}

func newAgendasListCommand() *cobra.Command {
	var (
		official bool
		slugs    []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agendas",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			params := pageParams(cmd)
			if official {
				params["official"] = true
			}

			if len(slugs) > 0 {
				params["slug"] = slugs
			}

			agendas, err := client.Agendas(cmd.Context(), params)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(agendas.Items))
			for _, agenda := range agendas.Items {
				rows = append(rows, []string{
					strconv.Itoa(agenda.UID()),
					agenda.Slug(),
					agendaTitle(agenda),
					formatValue(agenda.Official()),
				})
			}

			return renderList(cmd.OutOrStdout(), newListPage(agendas), []string{"UID", "Slug", "Title", "Official"}, rows)
		},
	}

	addPageFlags(cmd)
	cmd.Flags().BoolVar(&official, "official", false, "only official agendas")
	cmd.Flags().StringSliceVar(&slugs, "slug", nil, "filter by slug")

	return cmd
}

func newAgendasGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get UID_OR_SLUG",
		Short: "Show an agenda",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			var agenda *openagenda.Agenda

			if uid, convErr := strconv.Atoi(args[0]); convErr == nil {
				agenda, err = client.Agenda(cmd.Context(), openagenda.Params{"uid": uid, "detailed": true})
			} else {
				agenda, err = client.AgendaBySlug(cmd.Context(), args[0])
			}

			if err != nil {
				return err
			}

			if agenda == nil {
				return constants.ErrAgendaNotFound
			}

			return renderProperties(cmd.OutOrStdout(), agenda.ToMap())
		},
	}
}

func agendaTitle(agenda *openagenda.Agenda) string {
	if title, ok := agenda.Title().(openagenda.Multilingual); ok {
		return translate(title)
	}

	return formatValue(agenda.Title())
}
