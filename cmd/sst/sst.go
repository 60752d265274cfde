// Package sst implements the sst command.
package sst

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/ocean"
)

// Command creates the sst command.
func Command(settings *conf.Settings) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sst",
		Short: "Fetch the current sea surface temperature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ocean.New(settings.Ocean)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			snapshot := provider.FetchCurrentSST(ctx)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}

			origin := "not live"
			if snapshot.Live {
				origin = "live"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "SST %.2f °C on %s from %s (%s)\n",
				snapshot.SST, snapshot.Date, snapshot.Source, origin)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}
