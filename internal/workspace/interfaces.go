package workspace

import "context"

// TextSource loads document text by file handle.
type TextSource interface {
	// Open reads and decodes the file at path.
	Open(ctx context.Context, path string) (*Document, error)
}

// FileEnumerator lists files under the workspace root.
type FileEnumerator interface {
	// FindFiles returns absolute paths matching any include glob and no exclude glob.
	// Globs are matched against slash-separated paths relative to the root.
	FindFiles(ctx context.Context, include, exclude []string) ([]string, error)

	// RelativePath returns path relative to the workspace root for display.
	RelativePath(path string) string
}

// NoticeLevel classifies a user-facing notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// PickItem is one entry of a selection list.
type PickItem struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Detail      string   `json:"detail"`
	Location    Location `json:"location"`
}

// Navigator is the UI side of a jump: it opens locations, prompts for a choice
// and shows notices.
type Navigator interface {
	// Navigate moves the user to loc.
	Navigate(ctx context.Context, loc Location) error

	// Pick asks the user to choose one of items. ok is false when the user
	// dismissed the list or the navigator cannot prompt.
	Pick(ctx context.Context, placeholder string, items []PickItem) (index int, ok bool, err error)

	// Notify shows a message at the given level.
	Notify(ctx context.Context, level NoticeLevel, message string)
}
