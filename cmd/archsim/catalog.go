package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/terra-clan/archsim/internal/catalog"
	"github.com/terra-clan/archsim/internal/config"
)

func catalogCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print the scenario catalog and component whitelist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()

			scenarios, err := catalog.Load(cfg.Catalog.ScenariosPath)
			if err != nil {
				return err
			}
			components, err := catalog.LoadComponents(cfg.Catalog.ComponentsPath)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(map[string]any{
					"scenarios":  scenarios.ListScenarios(),
					"roles":      scenarios.Roles(),
					"components": components.Categories(),
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCENARIO\tTITLE\tUSERS\tAVAILABILITY")
			for _, s := range scenarios.ListScenarios() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Requirements.Users, s.Requirements.Availability)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "CATEGORY\tTYPE\tLABEL")
			for _, category := range components.Categories() {
				for _, item := range category.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\n", category.Name, item.Type, item.Label)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.SetOut(os.Stdout)

	return cmd
}
