// Package media holds the domain types of the media intake pipeline: file
// kinds and limits, the validator, storage keys, committed entries and
// transient upload tasks, and the pipeline error taxonomy.
package media

import "strings"

// Kind classifies a file by its declared media type.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindAudio   Kind = "audio"
	KindUnknown Kind = "unknown"
)

// Classify maps a declared media type to a Kind by its top-level prefix.
// Anything that is not image/*, video/* or audio/* is KindUnknown.
func Classify(mimeType string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case strings.HasPrefix(mt, "video/"):
		return KindVideo
	case strings.HasPrefix(mt, "audio/"):
		return KindAudio
	default:
		return KindUnknown
	}
}

// Visual reports whether entries of this kind may live in the media gallery.
func (k Kind) Visual() bool {
	return k == KindImage || k == KindVideo
}
