package syncstate

// aggregateScanOrder is the precedence used when child states bubble up into
// a directory summary. Ignored, Unknown, and Synced children never override
// the directory's own state.
var aggregateScanOrder = []State{Syncing, RemoteOnly, OutOfSync, LocalOnly}

// Aggregate computes a directory's displayed state from its direct state and
// the states of the children currently known. Callers pass Synced as the
// direct state when the directory's own metadata was never fetched.
//
// A RemoteOnly or Ignored directory keeps its direct state regardless of
// children: everything under a not-yet-downloaded or ignored directory is
// implied by the directory itself.
func Aggregate(direct State, children []State) State {
	if direct == RemoteOnly || direct == Ignored {
		return direct
	}
	for _, candidate := range aggregateScanOrder {
		for _, child := range children {
			if child == candidate {
				return candidate
			}
		}
	}
	return direct
}
