package syncstate

// State classifies how an item relates to the folder's global index.
type State string

const (
	// Synced means local and global agree.
	Synced State = "synced"
	// OutOfSync means local and global disagree on version or content.
	OutOfSync State = "out_of_sync"
	// LocalOnly means the item exists locally but not in the global index.
	LocalOnly State = "local_only"
	// RemoteOnly means the item exists remotely but not locally.
	RemoteOnly State = "remote_only"
	// Ignored means the item matches the folder's ignore patterns.
	Ignored State = "ignored"
	// Syncing means a transfer for the item is currently in progress.
	Syncing State = "syncing"
	// Unknown means no metadata is available for the item.
	Unknown State = "unknown"
)

// AttentionOrder lists all states from most to least attention-worthy. It is
// the display-priority total order used when one state must summarize many.
var AttentionOrder = []State{
	OutOfSync,
	Syncing,
	RemoteOnly,
	LocalOnly,
	Ignored,
	Unknown,
	Synced,
}

var attentionRank = func() map[State]int {
	ranks := make(map[State]int, len(AttentionOrder))
	for i, state := range AttentionOrder {
		ranks[state] = i
	}
	return ranks
}()

// Valid reports whether the value is one of the defined states.
func (s State) Valid() bool {
	_, ok := attentionRank[s]
	return ok
}

func (s State) String() string {
	return string(s)
}

// Rank returns the state's position in AttentionOrder; unknown values sort
// alongside Unknown.
func (s State) Rank() int {
	if rank, ok := attentionRank[s]; ok {
		return rank
	}
	return attentionRank[Unknown]
}

// Worst returns the most attention-worthy of the given states. With no
// arguments it returns Synced.
func Worst(states ...State) State {
	worst := Synced
	for _, state := range states {
		if state.Rank() < worst.Rank() {
			worst = state
		}
	}
	return worst
}
