package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sensenode/sensenode/internal/morse"
)

// CreateMorseCmd builds the morse subcommand, which prints the dit/dah
// pattern of a message without touching any hardware.
func CreateMorseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "morse [message...]",
		Short: "Print the Morse code pattern for a message",
		Long:  `Encodes the given message as dits and dahs, the same encoding the LED uses. Characters without a Morse encoding are rendered as '?'.`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			msg := ""
			for i, arg := range args {
				if i > 0 {
					msg += " "
				}
				msg += arg
			}
			fmt.Fprintln(cmd.OutOrStdout(), morse.Pattern(msg))
		},
	}
}
