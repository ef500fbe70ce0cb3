package cmd

import (
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, viewBatch)
		if err != nil {
			return err
		}
		defer a.Close()

		if listJSON {
			docs, err := a.sess.Lists.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(a.out, docs)
		}
		_, err = a.sess.Refresh(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the list as JSON")
}
