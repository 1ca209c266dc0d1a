package scheduler

import (
	"context"

	"syncview/internal/cache"
	"syncview/internal/stdaemon"
	"syncview/internal/syncstate"
)

// execute performs the single outbound call for a request and writes the
// result through the cache. Cache write failures degrade to log lines; the
// daemon's answer still reaches the consumer.
func (s *Scheduler) execute(ctx context.Context, req Request) Response {
	resp := Response{Kind: req.Kind, Folder: req.Folder, Path: req.Path}

	switch req.Kind {
	case KindFolderStatus:
		status, err := s.daemon.FolderStatus(ctx, req.Folder)
		if err != nil {
			resp.Err = err.Error()
			return resp
		}
		snapshot := statusSnapshot(status)
		resp.Status = &snapshot
		if err := s.store.PutFolderStatus(ctx, req.Folder, snapshot); err != nil {
			s.logger.Warn("cache folder status failed", "folder", req.Folder, "error", err)
		}

	case KindBrowseFolder:
		entries, err := s.daemon.Browse(ctx, req.Folder, req.Path)
		if err != nil {
			resp.Err = err.Error()
			return resp
		}
		listing := make([]cache.Entry, 0, len(entries))
		for _, entry := range entries {
			kind := cache.EntryFile
			if entry.Kind() == stdaemon.KindDirectory {
				kind = cache.EntryDir
			}
			listing = append(listing, cache.Entry{
				Name:    entry.Name,
				Kind:    kind,
				Size:    entry.Size,
				ModTime: entry.ModTime,
			})
		}
		resp.Listing = listing
		s.cacheListing(ctx, req, listing)

	case KindFileInfo:
		info, err := s.daemon.FileInfo(ctx, req.Folder, req.Path)
		if err != nil {
			resp.Err = err.Error()
			return resp
		}
		state := deriveState(info)
		resp.FileInfo = &info
		resp.State = state
		s.cacheState(ctx, req, state)

	case KindLocalChangedFiles:
		files, err := s.daemon.LocalChangedFiles(ctx, req.Folder)
		if err != nil {
			resp.Err = err.Error()
			return resp
		}
		resp.LocalChanged = files

	case KindRescanFolder:
		if err := s.daemon.Rescan(ctx, req.Folder, req.Path); err != nil {
			resp.Err = err.Error()
		}

	case KindRevertFolder:
		if err := s.daemon.Revert(ctx, req.Folder); err != nil {
			resp.Err = err.Error()
		}

	case KindSetIgnorePatterns:
		if err := s.daemon.SetIgnorePatterns(ctx, req.Folder, req.Patterns); err != nil {
			resp.Err = err.Error()
		}

	default:
		resp.Err = "unknown request kind: " + string(req.Kind)
	}

	return resp
}

// cacheListing tags the listing with the folder's last observed sequence.
// With no stored sequence there is nothing safe to tag with, so the result
// is published without being cached; the consumer's folder-status fetch will
// make the next browse cacheable.
func (s *Scheduler) cacheListing(ctx context.Context, req Request, listing []cache.Entry) {
	seq, ok, err := s.store.FolderSequence(ctx, req.Folder)
	if err != nil {
		s.logger.Warn("read folder sequence failed", "folder", req.Folder, "error", err)
		return
	}
	if !ok {
		s.logger.Debug("listing not cached, folder sequence unknown", "folder", req.Folder)
		return
	}
	if err := s.store.PutListing(ctx, req.Folder, req.Path, listing, seq); err != nil {
		s.logger.Warn("cache listing failed", "folder", req.Folder, "prefix", req.Path, "error", err)
	}
}

func (s *Scheduler) cacheState(ctx context.Context, req Request, state syncstate.State) {
	seq, ok, err := s.store.FolderSequence(ctx, req.Folder)
	if err != nil {
		s.logger.Warn("read folder sequence failed", "folder", req.Folder, "error", err)
		return
	}
	if !ok {
		s.logger.Debug("state not cached, folder sequence unknown", "folder", req.Folder)
		return
	}
	if err := s.store.PutState(ctx, req.Folder, req.Path, state, seq); err != nil {
		s.logger.Warn("cache sync state failed", "folder", req.Folder, "path", req.Path, "error", err)
	}
}

func deriveState(info stdaemon.FileInfoResponse) syncstate.State {
	availability := make([]string, 0, len(info.Availability))
	for _, device := range info.Availability {
		availability = append(availability, device.ID)
	}
	return syncstate.Derive(toMeta(info.Local), toMeta(info.Global), availability)
}

func toMeta(meta *stdaemon.FileMeta) *syncstate.FileMeta {
	if meta == nil {
		return nil
	}
	return &syncstate.FileMeta{
		Deleted:     meta.Deleted,
		Ignored:     meta.Ignored,
		Invalid:     meta.Invalid,
		Version:     string(meta.Version),
		ContentHash: meta.BlocksHash,
		Sequence:    meta.Sequence,
	}
}

func statusSnapshot(status stdaemon.FolderStatus) cache.FolderStatus {
	return cache.FolderStatus{
		Sequence:              status.Sequence,
		State:                 status.State,
		NeedTotalItems:        status.NeedTotalItems,
		ReceiveOnlyTotalItems: status.ReceiveOnlyTotalItems,
		GlobalFiles:           status.GlobalFiles,
		GlobalBytes:           status.GlobalBytes,
		LocalFiles:            status.LocalFiles,
		LocalBytes:            status.LocalBytes,
		NeedFiles:             status.NeedFiles,
		NeedBytes:             status.NeedBytes,
	}
}
