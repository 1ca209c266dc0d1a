package cache

import (
	"context"
	"fmt"
)

// Invalidate physically deletes every listing and state of the folder whose
// key equals path or lies under it as a directory prefix. An empty path
// clears every prefix in the folder, not only the root listing.
func (s *Store) Invalidate(ctx context.Context, folder, path string) error {
	ctx = ensureContext(ctx)
	path = normalizeKey(path)

	if path == "" {
		return s.InvalidateFolder(ctx, folder)
	}

	pattern := escapeLike(path) + `/%`
	if err := s.execWithRetry(ctx,
		`DELETE FROM browse_cache
         WHERE folder_id = ? AND (prefix = ? OR prefix LIKE ? ESCAPE '\')`,
		folder, path, pattern,
	); err != nil {
		return fmt.Errorf("invalidate listings: %w", err)
	}
	if err := s.execWithRetry(ctx,
		`DELETE FROM sync_states
         WHERE folder_id = ? AND (path = ? OR path LIKE ? ESCAPE '\')`,
		folder, path, pattern,
	); err != nil {
		return fmt.Errorf("invalidate states: %w", err)
	}

	// The listing that contains this item is stale too: the parent prefix
	// names it as a child.
	parent := parentPrefix(path)
	if err := s.execWithRetry(ctx,
		`DELETE FROM browse_cache WHERE folder_id = ? AND prefix = ?`,
		folder, parent,
	); err != nil {
		return fmt.Errorf("invalidate parent listing: %w", err)
	}
	return nil
}

// InvalidateFolder deletes all cached listings and states for the folder.
func (s *Store) InvalidateFolder(ctx context.Context, folder string) error {
	ctx = ensureContext(ctx)

	if err := s.execWithRetry(ctx,
		`DELETE FROM browse_cache WHERE folder_id = ?`, folder,
	); err != nil {
		return fmt.Errorf("invalidate folder listings: %w", err)
	}
	if err := s.execWithRetry(ctx,
		`DELETE FROM sync_states WHERE folder_id = ?`, folder,
	); err != nil {
		return fmt.Errorf("invalidate folder states: %w", err)
	}
	return nil
}

// Clear empties every table. Folder status rows go too; the next status fetch
// rebuilds them.
func (s *Store) Clear(ctx context.Context) error {
	ctx = ensureContext(ctx)

	for _, table := range []string{"browse_cache", "sync_states", "folder_status"} {
		if err := s.execWithRetry(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// CacheStats reports row counts for inspection commands.
func (s *Store) CacheStats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)

	var stats Stats
	queries := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(1) FROM folder_status`, &stats.Folders},
		{`SELECT COUNT(DISTINCT folder_id || '/' || prefix) FROM browse_cache`, &stats.Listings},
		{`SELECT COUNT(1) FROM browse_cache WHERE name != ''`, &stats.Entries},
		{`SELECT COUNT(1) FROM sync_states`, &stats.States},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("count cache rows: %w", err)
		}
	}
	return stats, nil
}

func parentPrefix(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}
