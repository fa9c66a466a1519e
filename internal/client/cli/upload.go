package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/memoria/internal/client/editor"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// waiter hands each terminal task event to whoever waits for that task id.
// Events that arrive before the waiter registers are kept until claimed.
type waiter struct {
	mu      sync.Mutex
	waiting map[string]chan editor.Event
	early   map[string]editor.Event
}

func newWaiter() *waiter {
	return &waiter{
		waiting: map[string]chan editor.Event{},
		early:   map[string]editor.Event{},
	}
}

func (w *waiter) handle(ev editor.Event) {
	if !ev.Task.Terminal() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.waiting[ev.Task.ID]; ok {
		delete(w.waiting, ev.Task.ID)
		ch <- ev
		return
	}
	w.early[ev.Task.ID] = ev
}

func (w *waiter) wait(ctx context.Context, id string) (editor.Event, error) {
	w.mu.Lock()
	if ev, ok := w.early[id]; ok {
		delete(w.early, id)
		w.mu.Unlock()
		return ev, nil
	}
	ch := make(chan editor.Event, 1)
	w.waiting[id] = ch
	w.mu.Unlock()

	select {
	case ev := <-ch:
		return ev, nil
	case <-ctx.Done():
		return editor.Event{}, ctx.Err()
	}
}

type uploadResult struct {
	path string
	err  string
}

func newUploadCommand() *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "upload PATH...",
		Short: "Add photos and videos to the current draft, then save it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}

			key, err := a.currentDraftKey(ctx, false)
			if err != nil {
				return err
			}

			w := newWaiter()
			s, err := a.openSession(ctx, key, "", editor.WithEventHandler(w.handle))
			if err != nil {
				return err
			}
			defer s.Close()

			results := make([]uploadResult, len(args))

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(a.config.Concurrency)
			for i, p := range args {
				results[i].path = p
				g.Go(func() error {
					f, err := openLocalFile(p)
					if err != nil {
						results[i].err = err.Error()
						return nil
					}
					id, err := s.Accept(f)
					if err != nil {
						results[i].err = userError(err)
						return nil
					}
					ev, err := w.wait(gctx, id)
					if err != nil {
						return err
					}
					if ev.Err != nil {
						results[i].err = ev.Task.Error
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.err != "" {
					failed++
					fmt.Fprintf(a.out, "FAIL %s: %s\n", r.path, r.err)
					continue
				}
				fmt.Fprintf(a.out, "OK   %s\n", r.path)
			}

			save := s.Save
			if publish {
				save = s.Publish
			}
			m, err := save(ctx)
			if err != nil {
				return fmt.Errorf("save: %s", userError(err))
			}
			fmt.Fprintf(a.out, "%d uploaded, %d failed; memory %s (%s) is %s\n",
				len(args)-failed, failed, m.ID, m.Slug, m.Status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "publish instead of saving a draft")
	return cmd
}
