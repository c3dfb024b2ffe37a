package commands

import (
	"strconv"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/spf13/cobra"
)

// NewLocationsCommand creates the locations command group.
func NewLocationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"location"},
		Short:   "Browse locations",
		Long:    "List and inspect the locations of an agenda",
	}

	cmd.PersistentFlags().Int("agenda", 0, "agenda UID")

	cmd.AddCommand(newLocationsListCommand())
	cmd.AddCommand(newLocationsGetCommand())

	return cmd
}

func newLocationsListCommand() *cobra.Command {
	var order string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locations",
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

			if order != "" {
				params["order"] = order
			}

			locations, err := client.Locations(cmd.Context(), params)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(locations.Items))
			for _, location := range locations.Items {
				rows = append(rows, []string{
					strconv.Itoa(location.UID()),
					location.Name(),
					location.City(),
					location.CountryCode(),
				})
			}

			return renderList(cmd.OutOrStdout(), newListPage(locations), []string{"UID", "Name", "City", "Country"}, rows)
		},
	}

	addPageFlags(cmd)
	cmd.Flags().StringVar(&order, "order", "", "name.asc, name.desc, createdAt.asc or createdAt.desc")

	return cmd
}

func newLocationsGetCommand() *cobra.Command {
	var extID string

	cmd := &cobra.Command{
		Use:   "get [UID]",
		Short: "Show a location",
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

			location, err := client.Location(cmd.Context(), params)
			if err != nil {
				return err
			}

			if location == nil {
				return constants.ErrLocationNotFound
			}

			return renderProperties(cmd.OutOrStdout(), location.ToMap())
		},
	}

	cmd.Flags().StringVar(&extID, "ext-id", "", "external identifier instead of UID")

	return cmd
}
