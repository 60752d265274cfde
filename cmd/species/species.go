// Package species implements the species command.
package species

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bahria/bahria-go/internal/conf"
	catalogpkg "github.com/bahria/bahria-go/internal/species"
)

// Command creates the species command.
func Command(settings *conf.Settings) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "species [code]",
		Short: "List the species reference catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := catalogpkg.Open(settings.Species.File)
			if err != nil {
				return err
			}

			profiles := catalog.List()
			if len(args) == 1 {
				profile, err := catalog.Lookup(args[0])
				if err != nil {
					return err
				}
				profiles = []catalogpkg.Profile{profile}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(profiles)
			}
			return writeTable(cmd.OutOrStdout(), catalog, profiles)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print profiles as JSON")
	return cmd
}

func writeTable(out io.Writer, catalog *catalogpkg.Catalog, profiles []catalogpkg.Profile) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tSCIENTIFIC NAME\tL50 CM\tSPAWNING\tSTOCK\tZONES\tWORKERS")
	for i := range profiles {
		p := &profiles[i]
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%.1f\t%v\t%s\t%s\t%d\n",
			p.Code, p.Icon, p.CommonName, p.ScientificName, p.L50Cm, p.SpawningMonths,
			p.StockStatus, strings.Join(p.Zones, ", "), catalog.Economics(p.Code).WorkersAffected)
	}
	return tw.Flush()
}
