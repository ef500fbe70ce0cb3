package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docchat-cli/internal/session"
)

var uploadNoWait bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document and wait for its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, viewBatch)
		if err != nil {
			return err
		}
		defer a.Close()

		file, f, err := session.OpenFile(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		ctx, cancel := interruptContext(cmd)
		defer cancel()
		doc, err := a.sess.Upload(ctx, file)
		if err != nil {
			return fmt.Errorf("upload %s: %w", file.Name, err)
		}
		if uploadNoWait {
			a.sess.Poller.Stop()
			fmt.Fprintf(a.out, "✓ Uploaded %s as %s\n", doc.Filename, doc.FileID)
			return nil
		}

		out, err := a.sess.WaitForProcessing(ctx)
		if err != nil {
			return fmt.Errorf("wait for %s: %w", doc.FileID, err)
		}
		switch out.State {
		case session.PollSucceeded:
			fmt.Fprintf(a.out, "✓ %s is ready (%s)\n", doc.Filename, doc.FileID)
			return nil
		case session.PollFailed:
			return fmt.Errorf("processing failed for %s", doc.FileID)
		case session.PollTimedOut:
			return fmt.Errorf("gave up on %s after %d status checks", doc.FileID, out.Attempts)
		default:
			return fmt.Errorf("upload of %s interrupted", doc.FileID)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVar(&uploadNoWait, "no-wait", false, "return after the transfer without waiting for the summary")
}
