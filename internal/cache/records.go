package cache

import (
	"strings"
	"time"

	"syncview/internal/syncstate"
)

// EntryKind distinguishes files from directories in cached listings.
type EntryKind string

const (
	EntryFile EntryKind = "file"
	EntryDir  EntryKind = "dir"
)

// Entry is one cached item of a directory listing.
type Entry struct {
	Name    string
	Kind    EntryKind
	Size    int64
	ModTime time.Time
}

// FolderStatus is the cached snapshot of a folder's daemon status. Sequence
// doubles as the validity anchor for every other record of the folder.
type FolderStatus struct {
	Sequence              int64
	State                 string
	NeedTotalItems        int64
	ReceiveOnlyTotalItems int64
	GlobalFiles           int64
	GlobalBytes           int64
	LocalFiles            int64
	LocalBytes            int64
	NeedFiles             int64
	NeedBytes             int64
	UpdatedAt             time.Time
}

// StateRecord is a stored per-item sync state with its capture sequence.
type StateRecord struct {
	State           syncstate.State
	CaptureSequence int64
}

// Stats summarizes cache contents for inspection commands.
type Stats struct {
	Folders  int64
	Listings int64
	Entries  int64
	States   int64
}

// normalizeKey canonicalizes prefixes and paths: no leading or trailing
// slashes, root and empty both map to "".
func normalizeKey(key string) string {
	return strings.Trim(key, "/")
}

// escapeLike escapes LIKE wildcards so stored keys containing % or _ match
// literally. Patterns built with it must use ESCAPE '\'.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `%`, `\%`)
	return strings.ReplaceAll(value, `_`, `\_`)
}
