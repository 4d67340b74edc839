// Package console is the terminal front-end: it renders the form and the
// post list and turns typed commands into store operations.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/astromechza/postboard/pkg/viewstate"
)

const usage = `commands:
  title <text>   set the title draft
  body <text>    set the body draft
  add            create a post from the drafts
  edit <id>      load a post into the drafts
  update         save the drafts to the post being edited
  delete <id>    delete a post
  reload         fetch the list again
  help           show this text
  quit           exit`

// Run renders the screen and processes one command per input line until the
// input ends, quit is typed or ctx is done. Store failures are only logged by
// the store, so the user just sees an unchanged screen.
func Run(ctx context.Context, store *viewstate.Store, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	Render(out, store.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			quit, err := dispatch(ctx, store, line, out)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// dispatch runs a single command. Only write failures on out are returned.
func dispatch(ctx context.Context, store *viewstate.Store, line string, out io.Writer) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		_, err := fmt.Fprintln(out, usage)
		return false, err
	case "title":
		store.SetTitle(arg)
	case "body":
		store.SetBody(arg)
	case "add":
		_ = store.SubmitDraft(ctx)
	case "update":
		if !store.Snapshot().Mode.IsEditing() {
			_, err := fmt.Fprintln(out, "nothing is being edited, use: edit <id>")
			return false, err
		}
		_ = store.SubmitEdit(ctx)
	case "reload":
		_ = store.LoadAll(ctx)
	case "edit", "delete":
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil {
			_, err := fmt.Fprintf(out, "usage: %s <id>\n", cmd)
			return false, err
		}
		if cmd == "delete" {
			_ = store.Remove(ctx, id)
			break
		}
		p, ok := store.Lookup(id)
		if !ok {
			_, err := fmt.Fprintf(out, "no post #%d in the list\n", id)
			return false, err
		}
		store.BeginEdit(p)
	default:
		_, err := fmt.Fprintf(out, "unknown command %q, type help for a list\n", cmd)
		return false, err
	}
	Render(out, store.Snapshot())
	return false, nil
}

// Render draws the form followed by one row per post.
func Render(out io.Writer, snap viewstate.Snapshot) {
	fmt.Fprintf(out, "== posts (%d) | %s ==\n", len(snap.Posts), snap.Mode)
	fmt.Fprintf(out, "title: %s\n", snap.Title)
	fmt.Fprintf(out, "body:  %s\n", snap.Body)
	if snap.Mode.IsEditing() {
		fmt.Fprintln(out, "[add] [update]")
	} else {
		fmt.Fprintln(out, "[add]")
	}
	for _, p := range snap.Posts {
		fmt.Fprintln(out, strings.Repeat("-", 40))
		fmt.Fprintf(out, "#%d %s\n", p.ID, p.Title)
		for _, l := range strings.Split(p.Body, "\n") {
			fmt.Fprintf(out, "   %s\n", l)
		}
		fmt.Fprintf(out, "   [edit %d] [delete %d]\n", p.ID, p.ID)
	}
}
