package cmd

import (
	"github.com/spf13/cobra"
)

var openJSON bool

var openCmd = &cobra.Command{
	Use:   "open <file-id>",
	Short: "Show the summary and chat history of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := viewBatch
		if openJSON {
			mode = viewQuiet
		}
		a, err := newApp(cmd, mode)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		doc, err := a.sess.Select(ctx, args[0], a.filenameFor(ctx, args[0]))
		if err != nil {
			return err
		}
		if openJSON {
			return writeJSON(a.out, doc)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().BoolVar(&openJSON, "json", false, "print the document as JSON instead of the transcript")
}
