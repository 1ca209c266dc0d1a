package stdaemon

import (
	"encoding/json"
	"strings"
	"time"
)

// FolderStatus mirrors the daemon's db/status response. Sequence is the
// folder's index generation counter and the sole basis for cache validity.
type FolderStatus struct {
	Sequence              int64  `json:"sequence"`
	State                 string `json:"state"`
	Errors                int    `json:"errors"`
	NeedTotalItems        int64  `json:"needTotalItems"`
	ReceiveOnlyTotalItems int64  `json:"receiveOnlyTotalItems"`
	GlobalFiles           int64  `json:"globalFiles"`
	GlobalDirectories     int64  `json:"globalDirectories"`
	GlobalBytes           int64  `json:"globalBytes"`
	LocalFiles            int64  `json:"localFiles"`
	LocalDirectories      int64  `json:"localDirectories"`
	LocalBytes            int64  `json:"localBytes"`
	NeedFiles             int64  `json:"needFiles"`
	NeedBytes             int64  `json:"needBytes"`
	InSyncFiles           int64  `json:"inSyncFiles"`
	InSyncBytes           int64  `json:"inSyncBytes"`
}

// EntryKind distinguishes files from directories in browse listings.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "dir"
)

// BrowseEntry is one item in a directory listing.
type BrowseEntry struct {
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Kind normalizes the daemon's type strings to an EntryKind.
func (e BrowseEntry) Kind() EntryKind {
	switch strings.ToUpper(e.Type) {
	case "FILE_INFO_TYPE_DIRECTORY", "DIRECTORY", "DIR":
		return KindDirectory
	default:
		return KindFile
	}
}

// FileMeta is one side (local or global) of a file's index entry.
type FileMeta struct {
	Deleted    bool          `json:"deleted"`
	Ignored    bool          `json:"ignored"`
	Invalid    bool          `json:"invalid"`
	Version    VersionVector `json:"version"`
	BlocksHash string        `json:"blocksHash"`
	Sequence   int64         `json:"sequence"`
	Size       int64         `json:"size"`
	ModTime    time.Time     `json:"modTime"`
}

// VersionVector is the daemon's per-file version vector, kept as its
// canonical string form for comparison.
type VersionVector string

// UnmarshalJSON accepts either a plain string or the daemon's array-of-counters
// form and stores a canonical joined representation.
func (v *VersionVector) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*v = VersionVector(asString)
		return nil
	}
	var asList []string
	if err := json.Unmarshal(data, &asList); err != nil {
		return err
	}
	*v = VersionVector(strings.Join(asList, ","))
	return nil
}

// Availability names a device holding the newest version of a file.
type Availability struct {
	ID            string `json:"id"`
	FromTemporary bool   `json:"fromTemporary"`
}

// FileInfoResponse mirrors the daemon's db/file response. Either side may be
// absent when the corresponding index has no entry.
type FileInfoResponse struct {
	Local        *FileMeta      `json:"local"`
	Global       *FileMeta      `json:"global"`
	Availability []Availability `json:"availability"`
}

// LocalChangedFile is one locally-modified item in a receive-only folder.
type LocalChangedFile struct {
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Size    int64     `json:"size"`
	Deleted bool      `json:"deleted"`
	ModTime time.Time `json:"modTime"`
}

// IgnoresResponse mirrors the daemon's db/ignores response.
type IgnoresResponse struct {
	Ignore   []string `json:"ignore"`
	Expanded []string `json:"expanded"`
}

// DeviceConnection is the per-device slice of the system/connections response.
type DeviceConnection struct {
	Connected     bool   `json:"connected"`
	Paused        bool   `json:"paused"`
	Address       string `json:"address"`
	ClientVersion string `json:"clientVersion"`
	Type          string `json:"type"`
	InBytesTotal  int64  `json:"inBytesTotal"`
	OutBytesTotal int64  `json:"outBytesTotal"`
}

// Connections summarizes daemon connectivity, used for reachability display.
type Connections struct {
	Devices map[string]DeviceConnection `json:"connections"`
	Total   struct {
		At            time.Time `json:"at"`
		InBytesTotal  int64     `json:"inBytesTotal"`
		OutBytesTotal int64     `json:"outBytesTotal"`
	} `json:"total"`
}

// Event type strings consumed from the daemon's event stream.
const (
	EventLocalIndexUpdated    = "LocalIndexUpdated"
	EventRemoteIndexUpdated   = "RemoteIndexUpdated"
	EventItemStarted          = "ItemStarted"
	EventItemFinished         = "ItemFinished"
	EventLocalChangeDetected  = "LocalChangeDetected"
	EventRemoteChangeDetected = "RemoteChangeDetected"
)

// Event is one entry from the daemon's event stream. Data stays raw until the
// listener knows the type-specific payload to decode.
type Event struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// IndexUpdatedData is the payload of Local/RemoteIndexUpdated events.
type IndexUpdatedData struct {
	Folder    string   `json:"folder"`
	Items     int64    `json:"items"`
	Filenames []string `json:"filenames"`
	Sequence  int64    `json:"sequence"`
	Version   int64    `json:"version"`
}

// ItemData is the payload of ItemStarted/ItemFinished events.
type ItemData struct {
	Folder string `json:"folder"`
	Item   string `json:"item"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Error  string `json:"error"`
}

// ChangeDetectedData is the payload of Local/RemoteChangeDetected events.
type ChangeDetectedData struct {
	Folder string `json:"folder"`
	Path   string `json:"path"`
	Type   string `json:"type"`
	Action string `json:"action"`
}
