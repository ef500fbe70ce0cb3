package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docchat-cli/internal/api"
	"github.com/KaramelBytes/docchat-cli/internal/identity"
	"github.com/KaramelBytes/docchat-cli/internal/render"
	"github.com/KaramelBytes/docchat-cli/internal/session"
	"github.com/KaramelBytes/docchat-cli/internal/utils"
)

// app bundles what a command needs to talk to the backend.
type app struct {
	out    io.Writer
	userID string
	client *api.Client
	term   *render.Terminal
	sess   *session.Session
}

// viewMode picks where session rendering goes.
type viewMode int

const (
	viewBatch viewMode = iota
	viewInteractive
	// viewQuiet discards rendering so stdout stays machine-readable.
	viewQuiet
)

func newApp(cmd *cobra.Command, mode viewMode) (*app, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	id, err := identity.LoadOrCreate(c.IdentityFile, time.Now())
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	client := api.NewClient(c.APIBaseURL, c.HTTPTimeout(), c.UploadContentType)
	if debug {
		client.SetDebug(cmd.ErrOrStderr())
	}
	out := cmd.OutOrStdout()
	viewOut := out
	if mode == viewQuiet {
		viewOut = io.Discard
	}
	term := render.NewTerminal(viewOut, render.Options{Color: c.Color, Interactive: mode == viewInteractive})
	sess := session.New(id.UserID, client, term, nil, session.Options{
		PollInterval:    c.PollInterval(),
		PollMaxAttempts: c.PollMaxAttempts,
	})
	return &app{out: out, userID: id.UserID, client: client, term: term, sess: sess}, nil
}

func (a *app) Close() { a.sess.Close() }

// interruptContext is cancelled on Ctrl-C.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

// filenameFor looks up the display name of fileID in the user's list.
// Unknown ids fall back to the id itself.
func (a *app) filenameFor(ctx context.Context, fileID string) string {
	docs, err := a.sess.Lists.Fetch(ctx)
	if err != nil {
		return fileID
	}
	for _, d := range docs {
		if d.FileID == fileID {
			return d.Filename
		}
	}
	return fileID
}

func writeJSON(w io.Writer, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
