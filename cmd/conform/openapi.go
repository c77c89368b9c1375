package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tailbits/conform/openapi"
)

func newOpenAPICmd(a *app) *cobra.Command {
	var (
		output string
		lint   bool
	)

	cmd := &cobra.Command{
		Use:   "openapi <definition>",
		Short: "Generate an OpenAPI document for the resolved integration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.load(args[0])
			if err != nil {
				return err
			}

			opts := []openapi.Option{
				openapi.Info(a.cfg.OpenAPI.Title, a.cfg.OpenAPI.Version),
				openapi.Lint(lint || a.cfg.OpenAPI.Lint),
				openapi.WithLogger(a.logger),
			}
			for _, url := range a.cfg.OpenAPI.Servers {
				opts = append(opts, openapi.Server(url))
			}

			doc, err := openapi.New(def, opts...)
			if err != nil {
				return fmt.Errorf("generate openapi: %w", err)
			}

			if a.cfg.Output.Indent {
				var buf bytes.Buffer
				if err := json.Indent(&buf, doc, "", "  "); err == nil {
					doc = buf.Bytes()
				}
			}

			if output == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(doc))
				return err
			}

			if err := os.WriteFile(output, doc, 0o644); err != nil {
				return fmt.Errorf("write file %s: %w", output, err)
			}
			a.logger.Info().Str("path", output).Msg("openapi document written")

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().BoolVar(&lint, "lint", false, "lint the document with vacuum's recommended ruleset")

	return cmd
}
