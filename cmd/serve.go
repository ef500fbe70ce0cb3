package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docchat-cli/internal/devserver"
)

var (
	serveAddr      string
	servePublicURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local backend for development and demos",
	Long: `Serve runs an in-process implementation of the DocChat backend: upload URLs,
object storage, background text extraction, summaries, the document list and chat.
Redis and MinIO are used when configured under devserver.*, memory otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		ds := c.DevServer
		if cmd.Flags().Changed("addr") {
			ds.Addr = serveAddr
		}
		if cmd.Flags().Changed("public-url") {
			ds.PublicURL = strings.TrimRight(servePublicURL, "/")
		}

		ctx, cancel := interruptContext(cmd)
		defer cancel()
		logger := log.New(cmd.ErrOrStderr(), "[docchat] ", log.LstdFlags)
		srv, err := devserver.Open(ctx, ds, logger)
		if err != nil {
			return fmt.Errorf("start devserver: %w", err)
		}
		defer srv.Close()

		fmt.Fprintf(cmd.ErrOrStderr(), "✓ DocChat devserver listening on %s (%s)\n", ds.Addr, srv.Backends())
		return srv.ListenAndServe(ctx, ds.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides devserver.addr)")
	serveCmd.Flags().StringVar(&servePublicURL, "public-url", "", "base URL handed out in upload URLs (overrides devserver.public_url)")
}
