package domain

// NoticeLevel grades a user-facing notice.
type NoticeLevel int

const (
	// NoticeInfo is a neutral notice.
	NoticeInfo NoticeLevel = iota
	// NoticeSuccess confirms a completed mutation.
	NoticeSuccess
	// NoticeWarning reports a degraded but usable state.
	NoticeWarning
	// NoticeError reports a failed load or mutation.
	NoticeError
)

// Notice is a message for the user, reported once.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

// UploadForm is a multipart payload for document-bearing resources.
type UploadForm struct {
	Fields    map[string]string
	FileField string
	FileName  string
	Content   []byte
}
