package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <file-id> <question...>",
	Short: "Ask one question about a document",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, viewBatch)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		a.sess.Bind(args[0], a.filenameFor(ctx, args[0]))
		_, err = a.sess.Ask(ctx, strings.Join(args[1:], " "))
		return err
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
