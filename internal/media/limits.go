package media

const mib = 1024 * 1024

// Size ceilings, checked against the declared size before any work is done.
const (
	MaxImageBytes int64 = 15 * mib
	MaxVideoBytes int64 = 100 * mib
	MaxAudioBytes int64 = 10 * mib
)

// Transcoder envelope for images.
const (
	TranscodeTargetBytes  int64 = 1 * mib
	TranscodeMaxDimension       = 1920
	TranscodeQuality            = 85
)

// Storage folders used by the editor.
const (
	FolderMemories = "memories"
	FolderMusic    = "music"
)

// MaxEntries is the largest gallery a page may carry.
const MaxEntries = 50

// SupportedTypes lists the media types the product advertises per kind.
// Classification itself is prefix based; see Classify.
var SupportedTypes = map[Kind][]string{
	KindImage: {"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic", "image/heif"},
	KindVideo: {"video/mp4", "video/webm", "video/quicktime", "video/x-msvideo"},
	KindAudio: {"audio/mpeg", "audio/mp3", "audio/wav", "audio/ogg", "audio/aac", "audio/m4a"},
}

// MaxBytes returns the size ceiling for kind, or 0 for KindUnknown.
func MaxBytes(k Kind) int64 {
	switch k {
	case KindImage:
		return MaxImageBytes
	case KindVideo:
		return MaxVideoBytes
	case KindAudio:
		return MaxAudioBytes
	default:
		return 0
	}
}
