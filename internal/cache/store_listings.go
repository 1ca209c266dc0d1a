package cache

import (
	"context"
	"fmt"
	"time"
)

// emptyListingMarker is the reserved name row that records a successfully
// fetched empty directory, so it caches as a hit rather than a miss. Real
// entries can never have an empty name.
const emptyListingMarker = ""

// GetListing returns the cached listing for (folder, prefix) when its capture
// sequence equals currentSeq. The second return value reports a cache hit; a
// stale or absent record is a miss even if still physically stored.
func (s *Store) GetListing(ctx context.Context, folder, prefix string, currentSeq int64) ([]Entry, bool, error) {
	ctx = ensureContext(ctx)
	prefix = normalizeKey(prefix)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, size, modified_at, capture_sequence
         FROM browse_cache
         WHERE folder_id = ? AND prefix = ?
         ORDER BY position`,
		folder, prefix,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query listing: %w", err)
	}
	defer rows.Close()

	var (
		entries []Entry
		found   bool
	)
	for rows.Next() {
		var (
			entry    Entry
			kind     string
			modified string
			captured int64
		)
		if err := rows.Scan(&entry.Name, &kind, &entry.Size, &modified, &captured); err != nil {
			return nil, false, fmt.Errorf("scan listing row: %w", err)
		}
		if captured != currentSeq {
			return nil, false, nil
		}
		found = true
		if entry.Name == emptyListingMarker {
			continue
		}
		entry.Kind = EntryKind(kind)
		if modified != "" {
			if ts, parseErr := time.Parse(time.RFC3339Nano, modified); parseErr == nil {
				entry.ModTime = ts
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate listing rows: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return entries, true, nil
}

// PutListing atomically replaces the cached listing for (folder, prefix),
// tagging every row with seq. Readers never observe a partially written
// listing; the swap happens in one transaction.
func (s *Store) PutListing(ctx context.Context, folder, prefix string, entries []Entry, seq int64) error {
	ctx = ensureContext(ctx)
	prefix = normalizeKey(prefix)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin listing tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM browse_cache WHERE folder_id = ? AND prefix = ?`,
			folder, prefix,
		); err != nil {
			return fmt.Errorf("clear old listing: %w", err)
		}

		if len(entries) == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO browse_cache (folder_id, prefix, name, position, kind, size, modified_at, capture_sequence)
                 VALUES (?, ?, ?, -1, 'marker', 0, '', ?)`,
				folder, prefix, emptyListingMarker, seq,
			); err != nil {
				return fmt.Errorf("insert empty-listing marker: %w", err)
			}
		}

		for position, entry := range entries {
			modified := ""
			if !entry.ModTime.IsZero() {
				modified = entry.ModTime.UTC().Format(time.RFC3339Nano)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO browse_cache (folder_id, prefix, name, position, kind, size, modified_at, capture_sequence)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				folder, prefix, entry.Name, position, string(entry.Kind), entry.Size, modified, seq,
			); err != nil {
				return fmt.Errorf("insert listing row: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit listing: %w", err)
		}
		return nil
	})
}
