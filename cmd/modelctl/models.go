package main

import (
	"context"
	"fmt"

	"modelhub/internal/provider"

	"github.com/spf13/cobra"
)

type modelsOutput struct {
	Provider string               `json:"provider"`
	Status   provider.ListStatus  `json:"status,omitempty"`
	Error    string               `json:"error,omitempty"`
	Models   []provider.ModelInfo `json:"models"`
}

func modelsCmd() *cobra.Command {
	var (
		dynamic bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "models [provider]",
		Short: "List a provider's models (all providers when none is given)",
		Long: `List models. Static models are always shown; --dynamic also queries the
provider's live listing with credentials resolved from --key, the providers
config file and the environment.

Examples:
  modelctl models
  modelctl models Ollama --dynamic
  modelctl models OpenRouter --dynamic --key OpenRouter=sk-or-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry()
			targets := reg.All()
			if len(args) == 1 {
				p, err := reg.Get(args[0])
				if err != nil {
					return fmt.Errorf("%w (known: %v)", err, reg.Names())
				}
				targets = []provider.Provider{p}
			}

			results := make([]modelsOutput, 0, len(targets))
			for _, p := range targets {
				results = append(results, listModels(cmd.Context(), p, dynamic))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, results)
			}

			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				headerColor.Fprintf(out, "%s", r.Provider)
				fmt.Fprintf(out, " (%s)", plural(len(r.Models), "model"))
				if r.Status != "" {
					fmt.Fprint(out, " ")
					statusColor(r.Status).Fprint(out, r.Status)
				}
				fmt.Fprintln(out)
				if r.Error != "" {
					dimColor.Fprintln(out, r.Error)
				}
				if len(r.Models) > 0 {
					printModels(out, r.Models)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dynamic, "dynamic", "d", false, "also fetch the live model listing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func listModels(ctx context.Context, p provider.Provider, dynamic bool) modelsOutput {
	out := modelsOutput{Provider: p.Name(), Models: p.StaticModels()}
	if !dynamic {
		return out
	}

	if ctx == nil {
		ctx = context.Background()
	}
	result := p.ListDynamic(ctx, provider.ListRequest{
		APIKeys:  apiKeys(),
		Settings: settings(),
		Env:      env,
	})
	out.Models = append(out.Models, result.Models...)
	out.Status = result.Status
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	return out
}
