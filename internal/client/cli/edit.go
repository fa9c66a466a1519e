package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/memoria/internal/client/editor"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/wire"
	"github.com/spf13/cobra"
)

// openLocalFile is a test seam for media.OpenLocalFile.
var openLocalFile = media.OpenLocalFile

// session is the part of *editor.Session the REPL drives.
type session interface {
	Accept(f media.File) (string, error)
	AcceptMusic(f media.File) (string, error)
	Remove(ctx context.Context, entryID string) error
	RemoveMusic(ctx context.Context) error
	Reorder(from, to int)
	UpdateCaption(entryID, caption string)
	SetTitle(title string)
	SetDescription(desc string)
	SetPrimaryColor(color string)
	Content() media.Content
	Tasks() []media.UploadTask
	IsValid() bool
	Save(ctx context.Context) (wire.Memory, error)
	Publish(ctx context.Context) (wire.Memory, error)
}

func newEditCommand() *cobra.Command {
	var fresh bool
	var memoryID string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the current draft interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}

			key := memoryID
			if key == "" {
				var err error
				if key, err = a.currentDraftKey(ctx, fresh); err != nil {
					return err
				}
			}

			s, err := a.openSession(ctx, key, memoryID, editor.WithEventHandler(eventPrinter(a.out)))
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Fprintln(a.out, "memoria editor (type 'help' for commands)")
			runREPL(ctx, s, a.out, bufio.NewScanner(a.in))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fresh, "new", false, "start a new draft")
	cmd.Flags().StringVar(&memoryID, "id", "", "edit an existing memory by id")
	return cmd
}

const replHelp = `Commands:
  title TEXT          set the title
  desc TEXT           set the description
  color #RRGGBB       set the theme color
  add PATH...         upload photos or videos
  music PATH          upload background music
  nomusic             remove background music
  rm ID               remove a media entry
  mv FROM TO          move an entry (zero-based positions)
  caption ID TEXT     set an entry caption
  show                print the page
  tasks               list uploads in progress
  save                save as draft
  publish             publish the page
  exit                leave the editor`

// rest returns line with its first n fields removed, keeping inner spacing.
func rest(line string, n int) string {
	s := strings.TrimSpace(line)
	for i := 0; i < n; i++ {
		idx := strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })
		if idx < 0 {
			return ""
		}
		s = strings.TrimSpace(s[idx:])
	}
	return s
}

// userError renders err the way the end user should see it.
func userError(err error) string {
	return media.UserMessage(err, err.Error())
}

// runREPL reads commands from scanner until EOF or exit and applies them to
// s. Errors are printed and never end the loop.
func runREPL(ctx context.Context, s session, w io.Writer, scanner *bufio.Scanner) {
	for {
		fmt.Fprint(w, "memoria> ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, replHelp)

		case "title":
			s.SetTitle(rest(line, 1))

		case "desc":
			s.SetDescription(rest(line, 1))

		case "color":
			if len(args) != 1 {
				fmt.Fprintln(w, "usage: color #RRGGBB")
				continue
			}
			s.SetPrimaryColor(args[0])

		case "add":
			if len(args) == 0 {
				fmt.Fprintln(w, "usage: add PATH...")
				continue
			}
			for _, p := range args {
				f, err := openLocalFile(p)
				if err != nil {
					fmt.Fprintf(w, "%s: %v\n", p, err)
					continue
				}
				if _, err := s.Accept(f); err != nil {
					fmt.Fprintf(w, "%s: %s\n", p, userError(err))
				}
			}

		case "music":
			if len(args) != 1 {
				fmt.Fprintln(w, "usage: music PATH")
				continue
			}
			f, err := openLocalFile(args[0])
			if err != nil {
				fmt.Fprintf(w, "%s: %v\n", args[0], err)
				continue
			}
			if _, err := s.AcceptMusic(f); err != nil {
				fmt.Fprintf(w, "%s: %s\n", args[0], userError(err))
			}

		case "nomusic":
			if err := s.RemoveMusic(ctx); err != nil {
				fmt.Fprintln(w, userError(err))
			}

		case "rm":
			if len(args) != 1 {
				fmt.Fprintln(w, "usage: rm ID")
				continue
			}
			if err := s.Remove(ctx, args[0]); err != nil {
				fmt.Fprintln(w, userError(err))
			}

		case "mv":
			if len(args) != 2 {
				fmt.Fprintln(w, "usage: mv FROM TO")
				continue
			}
			from, err1 := strconv.Atoi(args[0])
			to, err2 := strconv.Atoi(args[1])
			if err1 != nil || err2 != nil {
				fmt.Fprintln(w, "positions must be integers")
				continue
			}
			s.Reorder(from, to)

		case "caption":
			if len(args) < 1 {
				fmt.Fprintln(w, "usage: caption ID TEXT")
				continue
			}
			s.UpdateCaption(args[0], rest(line, 2))

		case "show":
			printContent(w, s.Content())

		case "tasks":
			printTasks(w, s.Tasks())

		case "save":
			m, err := s.Save(ctx)
			if err != nil {
				fmt.Fprintln(w, "save failed:", userError(err))
				continue
			}
			fmt.Fprintf(w, "Saved draft %s (%s)\n", m.ID, m.Slug)

		case "publish":
			m, err := s.Publish(ctx)
			if errors.Is(err, editor.ErrNotPublishable) {
				fmt.Fprintln(w, "cannot publish yet: a title and a description are required and all uploads must finish")
				continue
			}
			if err != nil {
				fmt.Fprintln(w, "publish failed:", userError(err))
				continue
			}
			fmt.Fprintf(w, "Published %s (%s)\n", m.ID, m.Slug)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
