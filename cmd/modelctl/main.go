// Command modelctl inspects the configured LLM providers and chats with them
// from a terminal.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"modelhub/internal/config"
	"modelhub/internal/logger"
	"modelhub/internal/provider"

	"github.com/spf13/cobra"
)

var (
	envFile      string
	providersCfg string
	logLevel     string
	listTimeout  time.Duration
	apiKeyFlags  map[string]string
	backendName  string

	providersConfig *config.ProvidersConfig
	env             provider.Env
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "modelctl",
		Short:         "Inspect LLM providers and their models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Log.SetOutput(os.Stderr)
			logger.Log.SetLevel(logger.ParseLevel(logLevel))

			if _, err := provider.ParseHandleBackend(backendName); err != nil {
				return err
			}

			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			env = provider.EnvFromOS()

			pc, err := config.NewProvidersConfig(providersCfg)
			switch {
			case err == nil:
				providersConfig = pc
			case errors.Is(err, fs.ErrNotExist):
				providersConfig = &config.ProvidersConfig{}
			default:
				return err
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	flags.StringVar(&providersCfg, "providers-config", "config/providers.json", "provider settings file")
	flags.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.DurationVar(&listTimeout, "timeout", provider.ListTimeout, "model listing timeout")
	flags.StringVar(&backendName, "backend", "genkit", "model handle backend (genkit, http)")
	flags.StringToStringVar(&apiKeyFlags, "key", nil, "API key override, as Provider=key (repeatable)")

	rootCmd.AddCommand(
		providersCmd(),
		modelsCmd(),
		chatCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func registry() *provider.Registry {
	// an invalid --backend is rejected in PersistentPreRunE
	backend, _ := provider.ParseHandleBackend(backendName)
	return provider.DefaultRegistry(
		provider.WithTimeout(listTimeout),
		provider.WithHandleFactory(provider.HandleFactoryFor(backend)),
	)
}

func apiKeys() provider.APIKeys {
	return provider.APIKeys(apiKeyFlags)
}

func settings() provider.ProviderSettings {
	return providersConfig.Settings()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
