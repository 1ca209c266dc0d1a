package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"syncview/internal/syncstate"
)

// GetState returns the cached sync state for (folder, path) when its capture
// sequence equals currentSeq.
func (s *Store) GetState(ctx context.Context, folder, path string, currentSeq int64) (syncstate.State, bool, error) {
	record, ok, err := s.stateRecord(ctx, folder, path)
	if err != nil || !ok {
		return syncstate.Unknown, false, err
	}
	if record.CaptureSequence != currentSeq {
		return syncstate.Unknown, false, nil
	}
	return record.State, true, nil
}

// GetStateUnvalidated returns the stored state regardless of sequence. It
// exists only for low-confidence instant display while a validated fetch is
// in flight; callers must not treat the result as current.
func (s *Store) GetStateUnvalidated(ctx context.Context, folder, path string) (syncstate.State, bool, error) {
	record, ok, err := s.stateRecord(ctx, folder, path)
	if err != nil || !ok {
		return syncstate.Unknown, false, err
	}
	return record.State, true, nil
}

func (s *Store) stateRecord(ctx context.Context, folder, path string) (StateRecord, bool, error) {
	ctx = ensureContext(ctx)
	path = normalizeKey(path)

	var (
		state    string
		captured int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, capture_sequence FROM sync_states WHERE folder_id = ? AND path = ?`,
		folder, path,
	).Scan(&state, &captured)
	if errors.Is(err, sql.ErrNoRows) {
		return StateRecord{}, false, nil
	}
	if err != nil {
		return StateRecord{}, false, fmt.Errorf("query sync state: %w", err)
	}
	return StateRecord{State: syncstate.State(state), CaptureSequence: captured}, true, nil
}

// PutState stores or replaces the sync state for (folder, path) tagged with seq.
func (s *Store) PutState(ctx context.Context, folder, path string, state syncstate.State, seq int64) error {
	ctx = ensureContext(ctx)
	path = normalizeKey(path)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return s.execWithRetry(ctx,
		`INSERT INTO sync_states (folder_id, path, state, capture_sequence, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (folder_id, path) DO UPDATE SET
            state = excluded.state,
            capture_sequence = excluded.capture_sequence,
            updated_at = excluded.updated_at`,
		folder, path, string(state), seq, now,
	)
}

// StatesUnder returns the validated states of every cached path directly or
// transitively under prefix, keyed by path. It feeds directory aggregation:
// only children present in the cache participate.
func (s *Store) StatesUnder(ctx context.Context, folder, prefix string, currentSeq int64) (map[string]syncstate.State, error) {
	ctx = ensureContext(ctx)
	prefix = normalizeKey(prefix)

	var (
		rows *sql.Rows
		err  error
	)
	if prefix == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT path, state, capture_sequence FROM sync_states WHERE folder_id = ?`,
			folder,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT path, state, capture_sequence FROM sync_states
             WHERE folder_id = ? AND path LIKE ? ESCAPE '\'`,
			folder, escapeLike(prefix)+`/%`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query states under prefix: %w", err)
	}
	defer rows.Close()

	states := make(map[string]syncstate.State)
	for rows.Next() {
		var (
			path     string
			state    string
			captured int64
		)
		if err := rows.Scan(&path, &state, &captured); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		if captured != currentSeq {
			continue
		}
		states[path] = syncstate.State(state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state rows: %w", err)
	}
	return states, nil
}
