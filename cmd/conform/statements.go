package main

import (
	"github.com/spf13/cobra"
	"github.com/tailbits/conform"
)

func newStatementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "statements <definition>",
		Short: "Print the concrete name every abstract name of each interface resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := conform.ParseIntegrationFile(args[0])
			if err != nil {
				return err
			}

			return a.writeJSON(cmd.OutOrStdout(), conform.ImplementationStatements(def))
		},
	}
}
