package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/memoria/internal/client/editor"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type fakeSession struct {
	calls   []string
	content media.Content
	valid   bool
	err     error
}

func (f *fakeSession) Accept(file media.File) (string, error) {
	f.calls = append(f.calls, "accept "+file.Name)
	return "t1", f.err
}

func (f *fakeSession) AcceptMusic(file media.File) (string, error) {
	f.calls = append(f.calls, "music "+file.Name)
	return "t2", f.err
}

func (f *fakeSession) Remove(ctx context.Context, id string) error {
	f.calls = append(f.calls, "rm "+id)
	return f.err
}

func (f *fakeSession) RemoveMusic(ctx context.Context) error {
	f.calls = append(f.calls, "nomusic")
	return nil
}

func (f *fakeSession) Reorder(from, to int) {
	f.calls = append(f.calls, "mv")
	f.content.Media = append(f.content.Media, media.Entry{Position: from*10 + to})
}

func (f *fakeSession) UpdateCaption(id, caption string) {
	f.calls = append(f.calls, "caption "+id+"="+caption)
}

func (f *fakeSession) SetTitle(title string)      { f.content.Title = title }
func (f *fakeSession) SetDescription(desc string) { f.content.Description = desc }
func (f *fakeSession) SetPrimaryColor(c string)   { f.content.PrimaryColor = c }
func (f *fakeSession) Content() media.Content     { return f.content }
func (f *fakeSession) Tasks() []media.UploadTask  { return nil }
func (f *fakeSession) IsValid() bool              { return f.valid }

func (f *fakeSession) Save(ctx context.Context) (wire.Memory, error) {
	f.calls = append(f.calls, "save")
	return wire.Memory{ID: "m-1", Slug: "trip"}, nil
}

func (f *fakeSession) Publish(ctx context.Context) (wire.Memory, error) {
	f.calls = append(f.calls, "publish")
	if !f.valid {
		return wire.Memory{}, editor.ErrNotPublishable
	}
	return wire.Memory{ID: "m-1", Slug: "trip"}, nil
}

func stubOpenLocalFile(t *testing.T) {
	t.Helper()
	orig := openLocalFile
	openLocalFile = func(path string) (media.File, error) {
		if strings.HasPrefix(path, "missing") {
			return media.File{}, errors.New("no such file")
		}
		return media.NewFile(path, "image/jpeg", []byte("x")), nil
	}
	t.Cleanup(func() { openLocalFile = orig })
}

func run(t *testing.T, s session, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	sc := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), s, &out, sc)
	return out.String()
}

func TestRunREPL_TextFields(t *testing.T) {
	s := &fakeSession{}
	out := run(t, s,
		"title   Our   summer trip",
		"desc Two weeks by the sea",
		"color #ff0000",
		"show",
		"exit",
	)

	assert.Equal(t, "Our   summer trip", s.content.Title)
	assert.Equal(t, "Two weeks by the sea", s.content.Description)
	assert.Equal(t, "#ff0000", s.content.PrimaryColor)
	assert.Contains(t, out, "Title:       Our   summer trip")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_MediaCommands(t *testing.T) {
	stubOpenLocalFile(t)
	s := &fakeSession{}

	out := run(t, s,
		"add a.jpg missing.jpg b.jpg",
		"music song.mp3",
		"nomusic",
		"rm e1",
		"mv 0 2",
		"mv x 2",
		"caption e2 at the  beach",
		"save",
		"publish",
		"bogus",
	)

	assert.Equal(t, []string{
		"accept a.jpg",
		"accept b.jpg",
		"music song.mp3",
		"nomusic",
		"rm e1",
		"mv",
		"caption e2=at the  beach",
		"save",
		"publish",
	}, s.calls)
	assert.Contains(t, out, "missing.jpg: no such file")
	assert.Contains(t, out, "positions must be integers")
	assert.Contains(t, out, "Saved draft m-1 (trip)")
	assert.Contains(t, out, "cannot publish yet")
	assert.Contains(t, out, "Unknown command: bogus")
}

func TestRunREPL_ShowsLocalizedRejection(t *testing.T) {
	stubOpenLocalFile(t)
	msgs := media.NewMessages(language.English)
	s := &fakeSession{err: media.NewError(media.ErrValidation, msgs.TooLarge(media.KindImage), nil)}

	out := run(t, s, "add big.jpg")

	assert.Contains(t, out, "big.jpg: "+msgs.TooLarge(media.KindImage))
}

func TestRunREPL_Usage(t *testing.T) {
	s := &fakeSession{}
	out := run(t, s, "add", "music", "rm", "mv 1", "caption", "color", "help")

	assert.Empty(t, s.calls)
	for _, u := range []string{"usage: add", "usage: music", "usage: rm", "usage: mv", "usage: caption", "usage: color", "Commands:"} {
		assert.Contains(t, out, u)
	}
}

func TestRest(t *testing.T) {
	assert.Equal(t, "hello  world", rest("title hello  world", 1))
	assert.Equal(t, "", rest("title", 1))
	assert.Equal(t, "text here", rest("caption id1 text here", 2))
}

func TestWaiter_EarlyAndLateEvents(t *testing.T) {
	w := newWaiter()
	ctx := context.Background()

	w.handle(editor.Event{Task: media.UploadTask{ID: "early", Status: media.TaskSuccess}})
	ev, err := w.wait(ctx, "early")
	require.NoError(t, err)
	assert.Equal(t, "early", ev.Task.ID)

	done := make(chan editor.Event)
	go func() {
		ev, _ := w.wait(ctx, "late")
		done <- ev
	}()
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		_, ok := w.waiting["late"]
		return ok
	}, time.Second, time.Millisecond)

	w.handle(editor.Event{Task: media.UploadTask{ID: "late", Status: media.TaskUploading}})
	w.handle(editor.Event{Task: media.UploadTask{ID: "late", Status: media.TaskError}})
	assert.Equal(t, media.TaskError, (<-done).Task.Status)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = w.wait(cctx, "never")
	assert.ErrorIs(t, err, context.Canceled)
}
