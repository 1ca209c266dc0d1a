package main

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"syncview/internal/cache"
	"syncview/internal/stdaemon"
	"syncview/internal/syncstate"
)

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <folder> [prefix]",
		Short: "List a folder directory with per-item sync states",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			prefix := ""
			if len(args) == 2 {
				prefix = strings.Trim(args[1], "/")
			}

			return ctx.withStore(func(store *cache.Store) error {
				runCtx := cmd.Context()
				client, err := ctx.client()
				if err != nil {
					return err
				}

				snapshot, stale, err := folderSnapshot(runCtx, store, client, folder)
				if err != nil {
					return err
				}

				entries, fromCache, err := loadListing(runCtx, store, client, folder, prefix, snapshot.Sequence)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "(empty directory)")
					return nil
				}

				resolver := newStateResolver(store, 2*time.Second)
				states, err := resolver.resolve(runCtx, folder, prefix, snapshot.Sequence, entries)
				if err != nil {
					return err
				}

				sortEntries(entries)

				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entryLabel(entry),
						string(entry.Kind),
						entrySize(entry),
						formatUpdated(entry.ModTime),
						colorizeState(states[entry.Name], colorize),
					})
				}

				headers := []string{"NAME", "KIND", "SIZE", "MODIFIED", "STATE"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				if stale || fromCache {
					fmt.Fprintln(cmd.OutOrStdout(), "(served from local cache)")
				}
				return nil
			})
		},
	}
	return cmd
}

// loadListing serves a sequence-valid cached listing, or fetches, caches, and
// returns a fresh one. fromCache reports which happened.
func loadListing(ctx context.Context, store *cache.Store, client *stdaemon.Client, folder, prefix string, seq int64) ([]cache.Entry, bool, error) {
	cached, ok, err := store.GetListing(ctx, folder, prefix, seq)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return cached, true, nil
	}

	listed, err := client.Browse(ctx, folder, prefix)
	if err != nil {
		return nil, false, err
	}
	entries := make([]cache.Entry, 0, len(listed))
	for _, item := range listed {
		kind := cache.EntryFile
		if item.Kind() == stdaemon.KindDirectory {
			kind = cache.EntryDir
		}
		entries = append(entries, cache.Entry{
			Name:    item.Name,
			Kind:    kind,
			Size:    item.Size,
			ModTime: item.ModTime,
		})
	}
	if err := store.PutListing(ctx, folder, prefix, entries, seq); err != nil {
		return nil, false, err
	}
	return entries, false, nil
}

// stateResolver computes per-entry sync states from cached per-item records,
// folding subtree states into one per directory. Directory aggregations are
// memoized briefly so repeated renders do not rescan the store.
type stateResolver struct {
	store *cache.Store
	ttl   time.Duration

	memoAt time.Time
	memo   map[string]syncstate.State
}

func newStateResolver(store *cache.Store, ttl time.Duration) *stateResolver {
	return &stateResolver{store: store, ttl: ttl}
}

func (r *stateResolver) resolve(ctx context.Context, folder, prefix string, seq int64, entries []cache.Entry) (map[string]syncstate.State, error) {
	if r.memo != nil && time.Since(r.memoAt) < r.ttl {
		return r.memo, nil
	}

	known, err := r.store.StatesUnder(ctx, folder, prefix, seq)
	if err != nil {
		return nil, err
	}

	states := make(map[string]syncstate.State, len(entries))
	for _, entry := range entries {
		key := path.Join(prefix, entry.Name)
		direct, ok := known[key]
		if !ok {
			direct = syncstate.Unknown
		}
		if entry.Kind != cache.EntryDir {
			states[entry.Name] = direct
			continue
		}
		subtree := key + "/"
		var children []syncstate.State
		for itemPath, state := range known {
			if strings.HasPrefix(itemPath, subtree) {
				children = append(children, state)
			}
		}
		states[entry.Name] = syncstate.Aggregate(direct, children)
	}

	r.memo = states
	r.memoAt = time.Now()
	return states, nil
}

// sortEntries orders directories before files, names in locale-aware order
// with numeric runs compared as numbers.
func sortEntries(entries []cache.Entry) {
	collator := collate.New(language.Und, collate.Numeric)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind == cache.EntryDir
		}
		return collator.CompareString(entries[i].Name, entries[j].Name) < 0
	})
}

func entryLabel(entry cache.Entry) string {
	if entry.Kind == cache.EntryDir {
		return entry.Name + "/"
	}
	return entry.Name
}

func entrySize(entry cache.Entry) string {
	if entry.Kind == cache.EntryDir {
		return "-"
	}
	return humanize.IBytes(uint64(entry.Size))
}
