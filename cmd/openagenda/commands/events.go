package commands

import (
	"strconv"
	"time"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
	"github.com/spf13/cobra"
)

// NewEventsCommand creates the events command group.
func NewEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Browse events",
		Long:    "List and inspect the events of an agenda",
	}

	cmd.PersistentFlags().Int("agenda", 0, "agenda UID")

	cmd.AddCommand(newEventsListCommand())
	cmd.AddCommand(newEventsGetCommand())

	return cmd
}

func newEventsListCommand() *cobra.Command {
	var relative []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			agendaUID, err := agendaFlag(cmd)
			if err != nil {
				return err
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			params := pageParams(cmd)
			params["agendaUid"] = agendaUID

			if len(relative) > 0 {
				params["relative"] = relative
			}

			events, err := client.Events(cmd.Context(), params)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(events.Items))
			for _, event := range events.Items {
				rows = append(rows, []string{
					strconv.Itoa(event.UID()),
					translate(event.Title()),
					firstBegin(event),
					event.State().String(),
				})
			}

			return renderList(cmd.OutOrStdout(), newListPage(events), []string{"UID", "Title", "Begin", "State"}, rows)
		},
	}

	addPageFlags(cmd)
	cmd.Flags().StringSliceVar(&relative, "relative", nil, "passed, upcoming or current")

	return cmd
}

func newEventsGetCommand() *cobra.Command {
	var extID string

	cmd := &cobra.Command{
		Use:   "get [UID]",
		Short: "Show an event",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agendaUID, err := agendaFlag(cmd)
			if err != nil {
				return err
			}

			params, err := itemParams(agendaUID, args, extID)
			if err != nil {
				return err
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			event, err := client.Event(cmd.Context(), params)
			if err != nil {
				return err
			}

			if event == nil {
				return constants.ErrEventNotFound
			}

			return renderProperties(cmd.OutOrStdout(), event.ToMap())
		},
	}

	cmd.Flags().StringVar(&extID, "ext-id", "", "external identifier instead of UID")

	return cmd
}

func agendaFlag(cmd *cobra.Command) (int, error) {
	agendaUID, _ := cmd.Flags().GetInt("agenda")
	if agendaUID <= 0 {
		return 0, constants.ErrAgendaUIDRequired
	}

	return agendaUID, nil
}

// itemParams addresses one item by UID argument or external id.
func itemParams(agendaUID int, args []string, extID string) (openagenda.Params, error) {
	params := openagenda.Params{"agendaUid": agendaUID, "detailed": true}

	switch {
	case len(args) == 1:
		uid, err := parseUID(args[0])
		if err != nil {
			return nil, err
		}

		params["uid"] = uid
	case extID != "":
		params["extId"] = extID
	default:
		return nil, constants.ErrUIDRequired
	}

	return params, nil
}

func firstBegin(event *openagenda.Event) string {
	timings := event.Timings()
	if len(timings) == 0 {
		return NotAvailable
	}

	return timings[0].Begin.Format(time.RFC3339)
}
