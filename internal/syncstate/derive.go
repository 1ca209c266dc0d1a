package syncstate

// FileMeta is the subset of per-file index metadata the derivation rules need.
// Local and global snapshots share this shape.
type FileMeta struct {
	Deleted     bool
	Ignored     bool
	Invalid     bool
	Version     string
	ContentHash string
	Sequence    int64
}

// Derive computes a single item's state from its local metadata, the global
// (consensus) metadata, and the list of devices the item is available from.
// Either metadata snapshot may be nil when the corresponding index has no
// entry for the item.
func Derive(local, global *FileMeta, availability []string) State {
	switch {
	case local != nil && global != nil:
		return deriveBoth(local, global)
	case local != nil:
		return deriveLocalOnly(local, availability)
	case global != nil:
		return RemoteOnly
	default:
		return Unknown
	}
}

func deriveBoth(local, global *FileMeta) State {
	if local.Ignored {
		return Ignored
	}
	if local.Deleted && global.Deleted {
		return Synced
	}
	if local.Deleted {
		return RemoteOnly
	}
	if global.Deleted {
		return LocalOnly
	}
	if local.Version != global.Version {
		return OutOfSync
	}
	if local.ContentHash != "" && global.ContentHash != "" && local.ContentHash != global.ContentHash {
		return OutOfSync
	}
	return Synced
}

func deriveLocalOnly(local *FileMeta, availability []string) State {
	if local.Ignored {
		return Ignored
	}
	if len(availability) == 0 {
		return LocalOnly
	}
	// Some device claims to have it while the global index does not list it:
	// the indexes have not converged yet.
	return OutOfSync
}
