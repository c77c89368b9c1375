package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tailbits/conform"
	"github.com/tailbits/conform/internal/config"
)

// app holds what every subcommand needs once the configuration is loaded.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "conform",
		Short: "Resolve the interfaces an integration implements",
		Long: `conform reads an integration definition, resolves the interfaces it
declares and merges the resolved actions, events and channels into it.

Examples:
  conform resolve github.yaml
  conform statements github.yaml
  conform openapi github.yaml --lint
  conform validate github.yaml payload.json --event issueCreated`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}

			logger, err := cfg.Log.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(
		newResolveCmd(a),
		newStatementsCmd(a),
		newOpenAPICmd(a),
		newValidateCmd(a),
	)

	return rootCmd
}

// load parses and resolves the integration definition at path.
func (a *app) load(path string) (*conform.IntegrationDefinition, error) {
	def, err := conform.ParseIntegrationFile(path)
	if err != nil {
		return nil, err
	}

	log := a.logger.With().Str("integration", def.Name).Logger()

	if _, err := conform.ResolveInterfaces(def, conform.WithLogger(log)); err != nil {
		return nil, err
	}

	log.Info().
		Int("interfaces", len(def.Interfaces)).
		Int("actions", len(def.Actions)).
		Int("events", len(def.Events)).
		Int("channels", len(def.Channels)).
		Msg("integration resolved")

	return def, nil
}

func (a *app) writeJSON(w io.Writer, v any) error {
	var (
		b   []byte
		err error
	)
	if a.cfg.Output.Indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}
