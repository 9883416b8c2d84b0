package main

import (
	"fmt"
	"text/tabwriter"

	"modelhub/internal/provider"

	"github.com/spf13/cobra"
)

type providerRow struct {
	Name         string        `json:"name"`
	Kind         provider.Kind `json:"kind"`
	Enabled      bool          `json:"enabled"`
	BaseURL      string        `json:"baseUrl"`
	HasKey       bool          `json:"hasKey"`
	StaticModels int           `json:"staticModels"`
}

func providersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List registered providers and their resolved endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []providerRow
			for _, p := range registry().All() {
				creds := provider.Resolve(p.Name(), p.Config(), apiKeys(), settings(), env)
				rows = append(rows, providerRow{
					Name:         p.Name(),
					Kind:         p.Kind(),
					Enabled:      settings().For(p.Name()).IsEnabled(),
					BaseURL:      creds.BaseURL,
					HasKey:       creds.APIKey != "",
					StaticModels: len(p.StaticModels()),
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, rows)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			headerColor.Fprintln(tw, "PROVIDER\tKIND\tENABLED\tBASE URL\tKEY\tSTATIC")
			for _, r := range rows {
				enabled := okColor.Sprint("yes")
				if !r.Enabled {
					enabled = dimColor.Sprint("no")
				}
				key := okColor.Sprint("set")
				if !r.HasKey {
					key = warnColor.Sprint("none")
				}
				baseURL := r.BaseURL
				if baseURL == "" {
					baseURL = dimColor.Sprint("-")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", nameColor.Sprint(r.Name), r.Kind, enabled, baseURL, key, r.StaticModels)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
