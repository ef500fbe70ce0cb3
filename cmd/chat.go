package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docchat-cli/internal/session"
)

const chatHelp = `Commands:
  /upload <path>      upload a document (start a /new chat first if one is open)
  /list               show your documents
  /open <n|file-id>   switch to a document from the list
  /new                forget the active document
  /status             show the active document and polling state
  /quit               leave
Anything else is asked about the active document.`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session: upload, pick documents and ask questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, viewInteractive)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := interruptContext(cmd)
		defer cancel()

		a.term.Printf("%s\n", chatHelp)
		a.term.ShowEmptyState()
		_, _ = a.sess.Refresh(ctx)

		lines, readErr := readLines(ctx, cmd.InOrStdin())
		for {
			a.term.Printf("> ")
			select {
			case <-ctx.Done():
				a.term.Printf("\n")
				return nil
			case line, ok := <-lines:
				if !ok {
					select {
					case err := <-readErr:
						return err
					case <-ctx.Done():
						return nil
					}
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if quit := a.chatLine(ctx, line); quit {
					return nil
				}
			}
		}
	},
}

// readLines scans r in the background so the loop can leave on Ctrl-C while
// a read is pending. The error channel receives once the input ends.
func readLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

// chatLine handles one line of input and reports whether to leave the loop.
func (a *app) chatLine(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, "/") {
		_, err := a.sess.Ask(ctx, line)
		a.hint(err)
		return false
	}
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		a.term.Printf("%s\n", chatHelp)
	case "/upload":
		if arg == "" {
			a.term.Prompt("usage: /upload <path>")
			return false
		}
		file, f, err := session.OpenFile(arg)
		if err != nil {
			a.term.Prompt(err.Error())
			return false
		}
		defer f.Close()
		_, err = a.sess.Upload(ctx, file)
		a.hint(err)
	case "/list":
		_, _ = a.sess.Refresh(ctx)
	case "/open":
		doc, ok := a.lookup(ctx, arg)
		if !ok {
			a.term.Prompt(fmt.Sprintf("no document %q; run /list to see numbers", arg))
			return false
		}
		_, err := a.sess.Select(ctx, doc.FileID, doc.Filename)
		a.hint(err)
	case "/new":
		a.sess.NewChat()
	case "/status":
		a.status()
	default:
		a.term.Prompt(fmt.Sprintf("unknown command %s; /help lists commands", name))
	}
	return false
}

// lookup resolves a 1-based list number or a file id against the last fetched list.
func (a *app) lookup(ctx context.Context, arg string) (session.Document, bool) {
	if arg == "" {
		return session.Document{}, false
	}
	docs := a.sess.Lists.Last()
	if len(docs) == 0 {
		docs, _ = a.sess.Lists.Fetch(ctx)
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(docs) {
			return session.Document{}, false
		}
		return docs[n-1], true
	}
	for _, d := range docs {
		if d.FileID == arg {
			return d, true
		}
	}
	return session.Document{}, false
}

func (a *app) status() {
	active, ok := a.sess.Active()
	var b strings.Builder
	if !ok {
		b.WriteString("active: none\n")
	} else {
		fmt.Fprintf(&b, "active: %s (%s)\n", active.Filename, active.FileID)
	}
	fmt.Fprintf(&b, "polling: %s, %d attempts\n", a.sess.Poller.State(), a.sess.Poller.Attempts())
	fmt.Fprintf(&b, "user: %s\n", a.userID)
	a.term.Printf("%s", b.String())
}

// hint turns session errors into short prompts. Errors the session already
// rendered inline get no second notice.
func (a *app) hint(err error) {
	var chatErr *session.ChatQueryError
	switch {
	case err == nil, errors.As(err, &chatErr), errors.Is(err, session.ErrSuperseded),
		errors.Is(err, session.ErrNoActiveDocument):
	case errors.Is(err, session.ErrUploadSuppressed):
		a.term.Prompt("a document is open; type /new before uploading another")
	default:
		if debug {
			a.term.Prompt(err.Error())
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
