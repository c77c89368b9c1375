package main

import (
	"github.com/spf13/cobra"
)

func newResolveCmd(a *app) *cobra.Command {
	var keepInterfaces bool

	cmd := &cobra.Command{
		Use:   "resolve <definition>",
		Short: "Print the integration with its interfaces resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.load(args[0])
			if err != nil {
				return err
			}

			if !keepInterfaces {
				def.Interfaces = nil
			}

			return a.writeJSON(cmd.OutOrStdout(), def)
		},
	}

	cmd.Flags().BoolVar(&keepInterfaces, "keep-interfaces", false, "include the interface declarations in the output")

	return cmd
}
