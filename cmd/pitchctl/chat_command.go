package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message...>",
		Short: "Ask the backend assistant about the pitch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(rt *sessionRuntime) error {
				turn, err := rt.session.SendMessage(rt.ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, turn)
				}
				fmt.Fprintln(cmd.OutOrStdout(), turn.Content)
				return nil
			})
		},
	}
}
