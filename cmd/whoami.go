package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docchat-cli/internal/identity"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the anonymous user id documents are stored under",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		id, err := identity.LoadOrCreate(c.IdentityFile, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
