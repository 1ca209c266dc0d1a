package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PutFolderStatus stores or replaces the folder's status snapshot. When the
// stored sequence differs from the incoming one, every cached listing and
// state of the folder is purged in the same transaction: a sequence change in
// either direction means the folder's index is a new generation.
func (s *Store) PutFolderStatus(ctx context.Context, folder string, status FolderStatus) error {
	ctx = ensureContext(ctx)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin status tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var previous int64
		err = tx.QueryRowContext(ctx,
			`SELECT sequence FROM folder_status WHERE folder_id = ?`, folder,
		).Scan(&previous)
		hadPrevious := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read previous sequence: %w", err)
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO folder_status (
                folder_id, sequence, state, need_total_items, receive_only_total_items,
                global_files, global_bytes, local_files, local_bytes, need_files, need_bytes,
                updated_at
             ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT (folder_id) DO UPDATE SET
                sequence = excluded.sequence,
                state = excluded.state,
                need_total_items = excluded.need_total_items,
                receive_only_total_items = excluded.receive_only_total_items,
                global_files = excluded.global_files,
                global_bytes = excluded.global_bytes,
                local_files = excluded.local_files,
                local_bytes = excluded.local_bytes,
                need_files = excluded.need_files,
                need_bytes = excluded.need_bytes,
                updated_at = excluded.updated_at`,
			folder, status.Sequence, status.State, status.NeedTotalItems, status.ReceiveOnlyTotalItems,
			status.GlobalFiles, status.GlobalBytes, status.LocalFiles, status.LocalBytes,
			status.NeedFiles, status.NeedBytes, now,
		); err != nil {
			return fmt.Errorf("upsert folder status: %w", err)
		}

		if hadPrevious && previous != status.Sequence {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM browse_cache WHERE folder_id = ?`, folder,
			); err != nil {
				return fmt.Errorf("purge stale listings: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM sync_states WHERE folder_id = ?`, folder,
			); err != nil {
				return fmt.Errorf("purge stale states: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit folder status: %w", err)
		}
		return nil
	})
}

// GetFolderStatus returns the stored status snapshot for the folder.
func (s *Store) GetFolderStatus(ctx context.Context, folder string) (FolderStatus, bool, error) {
	ctx = ensureContext(ctx)

	var (
		status  FolderStatus
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sequence, state, need_total_items, receive_only_total_items,
                global_files, global_bytes, local_files, local_bytes, need_files, need_bytes,
                updated_at
         FROM folder_status WHERE folder_id = ?`,
		folder,
	).Scan(
		&status.Sequence, &status.State, &status.NeedTotalItems, &status.ReceiveOnlyTotalItems,
		&status.GlobalFiles, &status.GlobalBytes, &status.LocalFiles, &status.LocalBytes,
		&status.NeedFiles, &status.NeedBytes, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return FolderStatus{}, false, nil
	}
	if err != nil {
		return FolderStatus{}, false, fmt.Errorf("query folder status: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
		status.UpdatedAt = ts
	}
	return status, true, nil
}

// FolderSequence returns the folder's last observed sequence. The second
// return value is false when the folder's status was never stored.
func (s *Store) FolderSequence(ctx context.Context, folder string) (int64, bool, error) {
	ctx = ensureContext(ctx)

	var sequence int64
	err := s.db.QueryRowContext(ctx,
		`SELECT sequence FROM folder_status WHERE folder_id = ?`, folder,
	).Scan(&sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query folder sequence: %w", err)
	}
	return sequence, true, nil
}

// Folders lists every folder with a stored status snapshot.
func (s *Store) Folders(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)

	rows, err := s.db.QueryContext(ctx, `SELECT folder_id FROM folder_status ORDER BY folder_id`)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	var folders []string
	for rows.Next() {
		var folder string
		if err := rows.Scan(&folder); err != nil {
			return nil, fmt.Errorf("scan folder row: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder rows: %w", err)
	}
	return folders, nil
}
