package scheduler

import (
	"strings"

	"github.com/google/uuid"

	"syncview/internal/cache"
	"syncview/internal/stdaemon"
	"syncview/internal/syncstate"
)

// Priority orders queued requests. Higher values drain first; FIFO within a tier.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Kind names a request variant.
type Kind string

const (
	KindBrowseFolder      Kind = "browse_folder"
	KindFileInfo          Kind = "file_info"
	KindFolderStatus      Kind = "folder_status"
	KindLocalChangedFiles Kind = "local_changed_files"
	KindRescanFolder      Kind = "rescan_folder"
	KindRevertFolder      Kind = "revert_folder"
	KindSetIgnorePatterns Kind = "set_ignore_patterns"
)

// Request is a fetch or write intent addressed to the daemon.
type Request struct {
	Kind     Kind
	Folder   string
	Path     string // path for file_info/rescan, prefix for browse
	Priority Priority
	Patterns []string // set_ignore_patterns only
}

// IsWrite reports whether the request mutates daemon state. Write requests
// are exempt from deduplication.
func (r Request) IsWrite() bool {
	switch r.Kind {
	case KindRescanFolder, KindRevertFolder, KindSetIgnorePatterns:
		return true
	default:
		return false
	}
}

// dedupKey collapses duplicate in-flight reads. Writes get a unique key so
// each one dispatches.
func (r Request) dedupKey() string {
	if r.IsWrite() {
		return strings.Join([]string{string(r.Kind), r.Folder, uuid.NewString()}, "|")
	}
	return strings.Join([]string{string(r.Kind), r.Folder, strings.Trim(r.Path, "/")}, "|")
}

// Response is the asynchronous result of one admitted request. Err carries
// the human-readable failure message; an empty Err means success.
type Response struct {
	Kind   Kind
	Folder string
	Path   string
	Err    string

	Status       *cache.FolderStatus
	Listing      []cache.Entry
	FileInfo     *stdaemon.FileInfoResponse
	State        syncstate.State
	LocalChanged []stdaemon.LocalChangedFile
}

// OK reports whether the request succeeded.
func (r Response) OK() bool {
	return r.Err == ""
}
