package editor

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"testing"
	"time"

	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func timeAt(seq int) time.Time {
	return time.UnixMilli(1700000000000 + int64(seq))
}

func openSession(t *testing.T, f *fixture) *Session {
	t.Helper()
	s, err := Open(context.Background(), "draft-1", f.deps(), WithEventHandler(f.record))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func jpeg(name string, size int) media.File {
	return media.NewFile(name, "image/jpeg", make([]byte, size))
}

func requireDense(t *testing.T, entries []media.Entry) {
	t.Helper()
	for i, e := range entries {
		require.Equal(t, i, e.Position, "entry %s", e.ID)
	}
}

// seed puts n committed entries into the session without running pipelines.
func seed(s *Session, n int) {
	entries := make([]media.Entry, n)
	for i := range entries {
		entries[i] = media.Entry{
			ID:   fmt.Sprintf("e%d", i),
			Kind: media.KindImage,
			URL:  fmt.Sprintf("https://cdn.test/memories/%d-x-e%d.webp", i, i),
		}
	}
	s.Attach("", "", media.Content{Title: "t", Media: entries})
}

func ids(entries []media.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestAccept_ImageTranscodedAndAppended(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)

	id, err := s.Accept(jpeg("beach photo.jpg", 5<<20))
	require.NoError(t, err)
	require.NotEmpty(t, id)
	s.Wait()

	entries := s.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, 0, e.Position)
	assert.Equal(t, media.KindImage, e.Kind)
	assert.Regexp(t, `^https://cdn\.test/memories/\d+-[0-9a-z]{13}-beach_photo\.webp$`, e.URL)
	assert.Equal(t, ".webp", path.Ext(e.URL))

	assert.Equal(t, []string{"memories|beach photo.webp|image/webp"}, f.negotiator.calls)
	assert.Empty(t, s.Tasks())

	evs := f.recorded()
	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	assert.Equal(t, media.TaskSuccess, last.Task.Status)
	require.NotNil(t, last.Entry)
	assert.Equal(t, e.ID, last.Entry.ID)

	prev := -1
	for _, ev := range evs {
		assert.GreaterOrEqual(t, ev.Task.Progress, prev)
		prev = ev.Task.Progress
	}
	assert.Equal(t, 100, prev)
}

func TestAccept_OversizedVideoRejected(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)

	_, err := s.Accept(media.NewFile("movie.mp4", "video/mp4", make([]byte, 150<<20)))
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrValidation)
	assert.Equal(t, media.NewMessages(language.English).TooLarge(media.KindVideo), media.UserMessage(err, ""))

	s.Wait()
	assert.Empty(t, s.Entries())
	assert.Empty(t, s.Tasks())
	assert.Zero(t, f.negotiator.count())
	assert.Zero(t, f.transferer.calls)
	assert.Zero(t, f.transcoder.calls)
}

func TestAccept_RejectsUnknownAndAudio(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)

	_, err := s.Accept(media.NewFile("doc.pdf", "application/pdf", []byte("x")))
	assert.ErrorIs(t, err, media.ErrValidation)

	_, err = s.Accept(media.NewFile("song.mp3", "audio/mpeg", []byte("x")))
	assert.ErrorIs(t, err, media.ErrValidation)

	assert.Zero(t, f.negotiator.count())
}

func TestAccept_CommitsInCompletionOrder(t *testing.T) {
	f := newFixture()
	gates := map[string]chan struct{}{
		"one.webp":   f.transferer.gate("one.webp"),
		"two.webp":   f.transferer.gate("two.webp"),
		"three.webp": f.transferer.gate("three.webp"),
	}
	s := openSession(t, f)

	for _, name := range []string{"one.jpg", "two.jpg", "three.jpg"} {
		_, err := s.Accept(jpeg(name, 1<<20))
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return f.negotiator.count() == 3 }, time.Second, time.Millisecond)
	assert.False(t, s.IsValid())

	waitEntries := func(n int) {
		require.Eventually(t, func() bool { return len(s.Entries()) == n }, time.Second, time.Millisecond)
	}

	close(gates["two.webp"])
	waitEntries(1)
	close(gates["one.webp"])
	waitEntries(2)
	close(gates["three.webp"])
	s.Wait()

	entries := s.Entries()
	require.Len(t, entries, 3)
	requireDense(t, entries)
	assert.Contains(t, entries[0].URL, "two.webp")
	assert.Contains(t, entries[1].URL, "one.webp")
	assert.Contains(t, entries[2].URL, "three.webp")
	assert.Empty(t, s.Tasks())
}

func TestRemove_MiddleReindexes(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)
	seed(s, 3)
	middle := s.Entries()[1]

	require.NoError(t, s.Remove(context.Background(), middle.ID))

	entries := s.Entries()
	assert.Equal(t, []string{"e0", "e2"}, ids(entries))
	requireDense(t, entries)
	assert.Equal(t, []string{middle.URL}, f.deleter.deleted())
}

func TestRemove_DeletionFailureKeepsRemoval(t *testing.T) {
	f := newFixture()
	f.deleter.err = errBoom
	s := openSession(t, f)
	seed(s, 2)

	err := s.Remove(context.Background(), "e0")
	assert.ErrorIs(t, err, media.ErrDeletion)
	assert.Equal(t, []string{"e1"}, ids(s.Entries()))
	requireDense(t, s.Entries())
}

func TestRemove_UnknownIsNoop(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)
	seed(s, 2)

	require.NoError(t, s.Remove(context.Background(), "nope"))
	assert.Len(t, s.Entries(), 2)
	assert.Empty(t, f.deleter.deleted())
}

func TestReorder(t *testing.T) {
	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 3, []string{"e1", "e2", "e3", "e0"}},
		{3, 0, []string{"e3", "e0", "e1", "e2"}},
		{1, 2, []string{"e0", "e2", "e1", "e3"}},
		{2, 2, []string{"e0", "e1", "e2", "e3"}},
		{-1, 2, []string{"e0", "e1", "e2", "e3"}},
		{0, 4, []string{"e0", "e1", "e2", "e3"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d->%d", tt.from, tt.to), func(t *testing.T) {
			s := openSession(t, newFixture())
			seed(s, 4)

			s.Reorder(tt.from, tt.to)

			assert.Equal(t, tt.want, ids(s.Entries()))
			requireDense(t, s.Entries())
		})
	}
}

func TestReorder_IsItsOwnInverse(t *testing.T) {
	s := openSession(t, newFixture())
	seed(s, 6)
	orig := ids(s.Entries())

	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			s.Reorder(i, j)
			s.Reorder(j, i)
			require.Equal(t, orig, ids(s.Entries()), "reorder(%d,%d)", i, j)
		}
	}
}

func TestPositionsStayDenseUnderRandomOps(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)
	rnd := rand.New(rand.NewSource(7))

	for step := 0; step < 300; step++ {
		n := len(s.Entries())
		switch op := rnd.Intn(3); {
		case op == 0 && n < media.MaxEntries-1:
			_, err := s.Accept(jpeg(fmt.Sprintf("p%d.png", step), 1000))
			require.NoError(t, err)
			s.Wait()
		case op == 1 && n > 0:
			require.NoError(t, s.Remove(context.Background(), s.Entries()[rnd.Intn(n)].ID))
		default:
			s.Reorder(rnd.Intn(n+2)-1, rnd.Intn(n+2)-1)
		}
		requireDense(t, s.Entries())
	}
}

func TestUpdateCaption(t *testing.T) {
	s := openSession(t, newFixture())
	seed(s, 2)

	s.UpdateCaption("e1", "sunset")
	s.UpdateCaption("missing", "ignored")

	entries := s.Entries()
	assert.Equal(t, "", entries[0].Caption)
	assert.Equal(t, "sunset", entries[1].Caption)
}

func TestIsValid(t *testing.T) {
	f := newFixture()
	gate := f.transferer.gate("slow.webp")
	s := openSession(t, f)

	assert.False(t, s.IsValid())

	s.SetTitle("Our trip")
	assert.False(t, s.IsValid())

	s.SetDescription("   ")
	assert.False(t, s.IsValid())

	s.SetDescription("Two weeks by the sea")
	assert.True(t, s.IsValid())

	_, err := s.Accept(jpeg("slow.jpg", 1000))
	require.NoError(t, err)
	assert.False(t, s.IsValid())

	_, err = s.Publish(context.Background())
	assert.ErrorIs(t, err, ErrNotPublishable)

	close(gate)
	s.Wait()
	assert.True(t, s.IsValid())
}

func TestPipelineFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		stage error
	}{
		{"transcode", func(f *fixture) { f.transcoder.err = errBoom }, media.ErrTranscode},
		{"negotiate", func(f *fixture) { f.negotiator.err = errBoom }, media.ErrNegotiation},
		{"transfer", func(f *fixture) { f.transferer.err = errBoom }, media.ErrTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)
			s := openSession(t, f)

			_, err := s.Accept(jpeg("a.jpg", 1000))
			require.NoError(t, err)
			s.Wait()

			assert.Empty(t, s.Entries())
			assert.Empty(t, s.Tasks())

			evs := f.recorded()
			last := evs[len(evs)-1]
			assert.Equal(t, media.TaskError, last.Task.Status)
			assert.ErrorIs(t, last.Err, tt.stage)
			assert.NotEmpty(t, last.Task.Error)
			assert.NotContains(t, last.Task.Error, "boom")
		})
	}
}

func TestTranscodeFailureNeverUploadsOriginal(t *testing.T) {
	f := newFixture()
	f.transcoder.err = errBoom
	s := openSession(t, f)

	_, err := s.Accept(jpeg("a.jpg", 1000))
	require.NoError(t, err)
	s.Wait()

	assert.Zero(t, f.negotiator.count())
	assert.Zero(t, f.transferer.calls)
}

func TestVideoSkipsTranscode(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)

	_, err := s.Accept(media.NewFile("clip.mp4", "video/mp4", make([]byte, 1000)))
	require.NoError(t, err)
	s.Wait()

	assert.Zero(t, f.transcoder.calls)
	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, media.KindVideo, entries[0].Kind)
	assert.Equal(t, ".mp4", path.Ext(entries[0].URL))
}

func TestAcceptMusic(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)

	_, err := s.AcceptMusic(media.NewFile("song.mp3", "audio/mpeg", make([]byte, 1000)))
	require.NoError(t, err)
	s.Wait()

	first := s.Content().MusicURL
	assert.Contains(t, first, "https://cdn.test/music/")
	assert.Empty(t, s.Entries())
	assert.Zero(t, f.transcoder.calls)

	_, err = s.AcceptMusic(media.NewFile("other.mp3", "audio/mpeg", make([]byte, 1000)))
	require.NoError(t, err)
	s.Wait()

	assert.NotEqual(t, first, s.Content().MusicURL)
	assert.Equal(t, []string{first}, f.deleter.deleted())

	_, err = s.AcceptMusic(jpeg("cover.jpg", 10))
	assert.ErrorIs(t, err, media.ErrValidation)

	_, err = s.AcceptMusic(media.NewFile("long.wav", "audio/wav", make([]byte, 11<<20)))
	assert.ErrorIs(t, err, media.ErrValidation)

	require.NoError(t, s.RemoveMusic(context.Background()))
	assert.Empty(t, s.Content().MusicURL)
	assert.Len(t, f.deleter.deleted(), 2)
}

func TestGalleryFull(t *testing.T) {
	s := openSession(t, newFixture())
	seed(s, media.MaxEntries)

	_, err := s.Accept(jpeg("extra.jpg", 10))
	assert.ErrorIs(t, err, ErrGalleryFull)
}

func TestClose_CancelsInFlight(t *testing.T) {
	f := newFixture()
	f.transferer.gate("stuck.webp")
	s, err := Open(context.Background(), "k", f.deps(), WithEventHandler(f.record))
	require.NoError(t, err)

	_, err = s.Accept(jpeg("stuck.jpg", 10))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the pipeline")
	}

	assert.Empty(t, s.Entries())
	evs := f.recorded()
	assert.ErrorIs(t, evs[len(evs)-1].Err, context.Canceled)

	_, err = s.Accept(jpeg("late.jpg", 10))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSnapshotPersistence(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)

	s.SetTitle("Trip")
	_, err := s.Accept(jpeg("a.jpg", 100))
	require.NoError(t, err)
	s.Wait()

	snap, ok := f.cache.snaps["draft-1"]
	require.True(t, ok)
	assert.Equal(t, "Trip", snap.Content.Title)
	assert.Len(t, snap.Content.Media, 1)

	restored, err := Open(context.Background(), "draft-1", f.deps())
	require.NoError(t, err)
	t.Cleanup(restored.Close)

	assert.Equal(t, s.Content(), restored.Content())
}

func TestOpen_CacheError(t *testing.T) {
	f := newFixture()
	f.cache.err = errBoom

	_, err := Open(context.Background(), "k", f.deps())
	assert.ErrorIs(t, err, errBoom)
}

func TestSaveAndPublish(t *testing.T) {
	f := newFixture()
	s := openSession(t, f)
	ctx := context.Background()

	s.SetTitle("Trip")
	m, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m-1", m.ID)
	require.Len(t, f.store.created, 1)
	assert.Equal(t, wire.StatusDraft, f.store.created[0].Status)
	assert.Equal(t, "m-1", s.MemoryID())
	assert.Equal(t, "m-1", f.cache.snaps["draft-1"].MemoryID)

	s.SetDescription("By the sea")
	m, err = s.Publish(ctx)
	require.NoError(t, err)
	assert.Equal(t, wire.StatusPaid, m.Status)
	require.Len(t, f.store.updated, 1)
	assert.Equal(t, "By the sea", f.store.updated[0].Content.Description)
}

func TestSave_AllowedWithPendingUploads(t *testing.T) {
	f := newFixture()
	gate := f.transferer.gate("slow.webp")
	s := openSession(t, f)
	seed(s, 1)

	_, err := s.Accept(jpeg("slow.jpg", 10))
	require.NoError(t, err)

	_, err = s.Save(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.store.created[0].Content.Media, 1)

	close(gate)
	s.Wait()
}

func TestPublish_RefusedWhileUploadInFlight(t *testing.T) {
	f := newFixture()
	gate := f.transferer.gate("slow.webp")
	s := openSession(t, f)
	s.SetTitle("Trip")
	s.SetDescription("By the sea")

	_, err := s.Accept(jpeg("slow.jpg", 10))
	require.NoError(t, err)

	_, err = s.Publish(context.Background())
	assert.ErrorIs(t, err, ErrNotPublishable)
	assert.Empty(t, f.store.created)

	close(gate)
	s.Wait()

	m, err := s.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wire.StatusPaid, m.Status)
	require.Len(t, f.store.created, 1)
	assert.Len(t, f.store.created[0].Content.Media, 1)
}

func TestPublish_ConcurrentAccept(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture()
		gate := f.transferer.gate(fmt.Sprintf("p%d.webp", i))
		s := openSession(t, f)
		s.SetTitle("Trip")
		s.SetDescription("By the sea")

		start := make(chan struct{})
		accepted := make(chan error, 1)
		go func() {
			<-start
			_, err := s.Accept(jpeg(fmt.Sprintf("p%d.jpg", i), 10))
			accepted <- err
		}()
		close(start)
		_, err := s.Publish(context.Background())
		require.NoError(t, <-accepted)

		if err != nil {
			require.ErrorIs(t, err, ErrNotPublishable)
			assert.Empty(t, f.store.created)
		} else {
			require.Len(t, f.store.created, 1)
			assert.Empty(t, f.store.created[0].Content.Media)
		}
		close(gate)
		s.Wait()
	}
}

func TestSave_StoreError(t *testing.T) {
	f := newFixture()
	f.store.err = errBoom
	s := openSession(t, f)

	_, err := s.Save(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, s.MemoryID())
}
