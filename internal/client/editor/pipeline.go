package editor

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/memoria/internal/media"
)

// ErrGalleryFull rejects files once the gallery holds media.MaxEntries
// entries, counting uploads still in flight.
var ErrGalleryFull = errors.New("gallery is full")

// Progress milestones. Images reach progressTranscoded before the transfer
// starts; the transfer fills the rest of the bar.
const (
	progressAccepted   = 10
	progressTranscoded = 20
)

type target int

const (
	targetGallery target = iota
	targetMusic
)

// Accept validates f and, when accepted, starts its upload pipeline in the
// background. It returns the id of the new upload task. A rejected file
// leaves the session untouched.
func (s *Session) Accept(f media.File) (string, error) {
	k, err := s.deps.Validator.ValidateVisual(f)
	if err != nil {
		return "", err
	}
	return s.start(f, k, targetGallery)
}

// AcceptMusic validates f as audio and uploads it untranscoded into the
// music folder; on success it becomes the page's background music.
func (s *Session) AcceptMusic(f media.File) (string, error) {
	if err := s.deps.Validator.ValidateAs(f, media.KindAudio); err != nil {
		return "", err
	}
	return s.start(f, media.KindAudio, targetMusic)
}

func (s *Session) start(f media.File, k media.Kind, tgt target) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	if tgt == targetGallery && len(s.content.Media)+s.pendingGalleryLocked() >= media.MaxEntries {
		s.mu.Unlock()
		return "", ErrGalleryFull
	}

	t := &media.UploadTask{
		ID:       s.newID(),
		FileName: f.Name,
		Kind:     k,
		Progress: progressAccepted,
		Status:   media.TaskUploading,
	}
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	ev := Event{Task: *t}
	s.wg.Add(1)
	s.mu.Unlock()

	s.emit(ev)
	go s.pipeline(t.ID, f, k, tgt)
	return t.ID, nil
}

func (s *Session) pendingGalleryLocked() int {
	n := 0
	for _, t := range s.tasks {
		if t.Kind.Visual() {
			n++
		}
	}
	return n
}

func (s *Session) pipeline(id string, f media.File, k media.Kind, tgt target) {
	defer s.wg.Done()

	folder := media.FolderMemories
	if tgt == targetMusic {
		folder = media.FolderMusic
	}

	publicURL, err := s.upload(s.ctx, id, f, k, folder)
	if err != nil {
		s.fail(id, err)
		return
	}

	if tgt == targetMusic {
		s.commitMusic(id, publicURL)
		return
	}
	s.commitEntry(id, k, publicURL)
}

// upload runs Transcode (images only), Negotiate and Transfer strictly in
// sequence. A transcode failure aborts the pipeline; the original is never
// uploaded in its place.
func (s *Session) upload(ctx context.Context, id string, f media.File, k media.Kind, folder string) (string, error) {
	base, span := progressAccepted, 100-progressAccepted

	if k == media.KindImage {
		out, err := s.deps.Transcoder.Transcode(ctx, f)
		if err != nil {
			return "", media.Wrap(media.ErrTranscode, err)
		}
		f = out
		s.setProgress(id, progressTranscoded)
		base, span = progressTranscoded, 100-progressTranscoded
	}

	grant, err := s.deps.Negotiator.Negotiate(ctx, f.Name, f.Type, folder)
	if err != nil {
		return "", media.Wrap(media.ErrNegotiation, err)
	}

	err = s.deps.Transferer.Transfer(ctx, grant, f, func(p int) {
		s.setProgress(id, base+p*span/100)
	})
	if err != nil {
		return "", media.Wrap(media.ErrTransfer, err)
	}
	return grant.PublicURL, nil
}

// setProgress never lowers a task's progress.
func (s *Session) setProgress(id string, p int) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok || t.Status != media.TaskUploading || p <= t.Progress {
		s.mu.Unlock()
		return
	}
	if p > 100 {
		p = 100
	}
	t.Progress = p
	ev := Event{Task: *t}
	s.mu.Unlock()

	s.emit(ev)
}

// removeTaskLocked drops a terminal task from the transient set.
func (s *Session) removeTaskLocked(id string) {
	delete(s.tasks, id)
	for i, tid := range s.order {
		if tid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Session) fail(id string, err error) {
	fallback := s.deps.Messages.UploadFailed()
	if errors.Is(err, media.ErrTranscode) {
		fallback = s.deps.Messages.TranscodeFailed()
	}

	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	t.Status = media.TaskError
	t.Error = media.UserMessage(err, fallback)
	ev := Event{Task: *t, Err: err}
	s.removeTaskLocked(id)
	s.mu.Unlock()

	s.deps.Logger.Warn(s.ctx, "upload failed", "file", t.FileName, "error", err)
	s.emit(ev)
}

// commitEntry appends the uploaded file at the end of the gallery. The
// position is derived from the length at the moment of the append.
func (s *Session) commitEntry(id string, k media.Kind, publicURL string) {
	var ev Event
	s.mutate(func() bool {
		t, ok := s.tasks[id]
		if !ok {
			return false
		}
		e := media.Entry{
			ID:       s.newID(),
			Kind:     k,
			URL:      publicURL,
			Position: len(s.content.Media),
		}
		s.content.Media = append(s.content.Media, e)

		t.Status = media.TaskSuccess
		t.Progress = 100
		ev = Event{Task: *t, Entry: &e}
		s.removeTaskLocked(id)
		return true
	})
	if ev.Task.ID != "" {
		s.emit(ev)
	}
}

func (s *Session) commitMusic(id, publicURL string) {
	var ev Event
	var previous string
	s.mutate(func() bool {
		t, ok := s.tasks[id]
		if !ok {
			return false
		}
		previous = s.content.MusicURL
		s.content.MusicURL = publicURL

		t.Status = media.TaskSuccess
		t.Progress = 100
		ev = Event{Task: *t}
		s.removeTaskLocked(id)
		return true
	})
	if ev.Task.ID == "" {
		return
	}
	s.emit(ev)

	if previous != "" && previous != publicURL {
		if err := s.deps.Deleter.DeleteByPublicURL(s.ctx, previous); err != nil {
			s.deps.Logger.Warn(s.ctx, "previous music not deleted", "url", previous, "error", err)
		}
	}
}
