package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"syncview/internal/stdaemon"
)

// InvalidationKind distinguishes single-file from directory-subtree purges.
type InvalidationKind string

const (
	InvalidateFile      InvalidationKind = "file"
	InvalidateDirectory InvalidationKind = "directory"
)

// Invalidation names cached records that must be purged. A directory
// invalidation with an empty path clears every prefix in the folder.
type Invalidation struct {
	Kind   InvalidationKind
	Folder string
	Path   string
}

// ItemRef identifies an item a sync notification concerns.
type ItemRef struct {
	Folder string
	Item   string
}

// ItemResult is a finished transfer, successful or not.
type ItemResult struct {
	Folder  string
	Item    string
	Failure string
}

// Effect is everything one event implies: cache purges, folders whose status
// should be refreshed to catch the sequence bump early, and informational
// notifications.
type Effect struct {
	Invalidations []Invalidation
	RefreshStatus []string
	Started       []ItemRef
	Finished      []ItemResult
}

// Translate maps one daemon event to its effect. Unknown event types yield an
// empty effect; malformed payloads fail only the affected event.
func Translate(ev stdaemon.Event) (Effect, error) {
	switch ev.Type {
	case stdaemon.EventLocalIndexUpdated:
		return translateIndexUpdated(ev)

	case stdaemon.EventRemoteIndexUpdated:
		var data stdaemon.IndexUpdatedData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return Effect{}, fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		if data.Folder == "" {
			return Effect{}, fmt.Errorf("%s event without folder", ev.Type)
		}
		// The remote index names only a folder: every cached prefix in it
		// could be stale.
		return Effect{
			Invalidations: []Invalidation{{Kind: InvalidateDirectory, Folder: data.Folder, Path: ""}},
			RefreshStatus: []string{data.Folder},
		}, nil

	case stdaemon.EventItemStarted:
		data, err := decodeItem(ev)
		if err != nil {
			return Effect{}, err
		}
		// Informational only: invalidating per started item would trigger
		// redundant refetches throughout a long bulk transfer.
		return Effect{Started: []ItemRef{{Folder: data.Folder, Item: data.Item}}}, nil

	case stdaemon.EventItemFinished:
		data, err := decodeItem(ev)
		if err != nil {
			return Effect{}, err
		}
		kind := InvalidateFile
		if strings.EqualFold(data.Type, "dir") || strings.EqualFold(data.Type, "directory") {
			kind = InvalidateDirectory
		}
		return Effect{
			Invalidations: []Invalidation{{Kind: kind, Folder: data.Folder, Path: data.Item}},
			Finished:      []ItemResult{{Folder: data.Folder, Item: data.Item, Failure: data.Error}},
		}, nil

	case stdaemon.EventLocalChangeDetected, stdaemon.EventRemoteChangeDetected:
		var data stdaemon.ChangeDetectedData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return Effect{}, fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		kind := InvalidateFile
		if strings.EqualFold(data.Type, "dir") || strings.EqualFold(data.Type, "directory") {
			kind = InvalidateDirectory
		}
		return Effect{
			Invalidations: []Invalidation{{Kind: kind, Folder: data.Folder, Path: data.Path}},
		}, nil

	default:
		return Effect{}, nil
	}
}

func translateIndexUpdated(ev stdaemon.Event) (Effect, error) {
	var data stdaemon.IndexUpdatedData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return Effect{}, fmt.Errorf("decode %s payload: %w", ev.Type, err)
	}
	if data.Folder == "" {
		return Effect{}, fmt.Errorf("%s event without folder", ev.Type)
	}

	effect := Effect{RefreshStatus: []string{data.Folder}}
	if len(data.Filenames) == 0 {
		// No filenames means the update's scope is unknown: clear the folder.
		effect.Invalidations = []Invalidation{{Kind: InvalidateDirectory, Folder: data.Folder, Path: ""}}
		return effect, nil
	}
	for _, name := range data.Filenames {
		effect.Invalidations = append(effect.Invalidations, Invalidation{
			Kind:   InvalidateFile,
			Folder: data.Folder,
			Path:   name,
		})
	}
	return effect, nil
}

func decodeItem(ev stdaemon.Event) (stdaemon.ItemData, error) {
	var data stdaemon.ItemData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return stdaemon.ItemData{}, fmt.Errorf("decode %s payload: %w", ev.Type, err)
	}
	if data.Folder == "" {
		return stdaemon.ItemData{}, fmt.Errorf("%s event without folder", ev.Type)
	}
	return data, nil
}
