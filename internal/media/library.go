package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Entry is a candidate video file found in the library directory
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Scan lists the video files directly inside dir, sorted by name.  Subdirectories are not descended into.
func Scan(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read library directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !HasVideoExtension(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    filepath.Join(dir, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Filter narrows entries to those fuzzily matching query, best matches first.  An empty query returns the
// entries unchanged.
func Filter(entries []Entry, query string) []Entry {
	if query == "" {
		return entries
	}

	names := lo.Map(entries, func(e Entry, _ int) string { return e.Name })
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) Entry {
		return entries[r.OriginalIndex]
	})
}
