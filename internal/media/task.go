package media

// TaskStatus is the state of an UploadTask. uploading is the only
// non-terminal state.
type TaskStatus string

const (
	TaskUploading TaskStatus = "uploading"
	TaskSuccess   TaskStatus = "success"
	TaskError     TaskStatus = "error"
)

// UploadTask tracks one in-flight or failed upload. It is never persisted.
type UploadTask struct {
	ID       string
	FileName string
	Kind     Kind
	Progress int
	Status   TaskStatus
	Error    string
}

// Terminal reports whether no further transitions are possible.
func (t UploadTask) Terminal() bool {
	return t.Status != TaskUploading
}
