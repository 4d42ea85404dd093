package prescription

import "errors"

var (
	ErrUnreadableText      = errors.New("unreadable text: check image quality")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrRecordNotFound      = errors.New("prescription record not found")
)
