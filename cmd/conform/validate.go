package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tailbits/conform/model"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		action  string
		output  bool
		event   string
		channel string
		message string
	)

	cmd := &cobra.Command{
		Use:   "validate <definition> <payload>",
		Short: "Validate a JSON payload against a resolved action, event or message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.load(args[0])
			if err != nil {
				return err
			}

			payload, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read file %s: %w", args[1], err)
			}

			switch {
			case action != "" && output:
				err = def.ValidateActionOutput(action, payload)
			case action != "":
				err = def.ValidateActionInput(action, payload)
			case event != "":
				err = def.ValidateEventPayload(event, payload)
			case channel != "" && message != "":
				err = def.ValidateMessage(channel, message, payload)
			default:
				return errors.New("one of --action, --event or --channel with --message is required")
			}

			var verr model.ValidationError
			if errors.As(err, &verr) {
				for _, fe := range verr.Errors {
					fmt.Fprintln(cmd.OutOrStdout(), fe.Message)
				}
				return errors.New("payload is invalid")
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "payload is valid")

			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "validate against the input of this action")
	cmd.Flags().BoolVar(&output, "output", false, "validate against the action's output instead of its input")
	cmd.Flags().StringVar(&event, "event", "", "validate against this event")
	cmd.Flags().StringVar(&channel, "channel", "", "channel of the message to validate against")
	cmd.Flags().StringVar(&message, "message", "", "message to validate against")

	return cmd
}
