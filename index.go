package schedbot

import (
	"sort"
	"strings"
)

// IndexEntry is the extracted text of one mirrored document.
type IndexEntry struct {
	// Key is the document filename.
	Key  string
	Text string

	// Hash is a content hash of Text, used to detect changed documents
	// between refresh cycles.
	Hash uint64
}

// Index maps document filenames to their extracted text.
// An Index is immutable once built; a refresh builds a new one and swaps it in.
// A nil *Index behaves as an empty index.
type Index struct {
	entries []IndexEntry
	byKey   map[string]int
}

// NewIndex builds an index from entries. Keys are unique; a later entry
// replaces an earlier one with the same key. Entries are ordered by key.
func NewIndex(entries []IndexEntry) *Index {
	byKey := make(map[string]IndexEntry, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}

	idx := &Index{
		entries: make([]IndexEntry, 0, len(byKey)),
		byKey:   make(map[string]int, len(byKey)),
	}
	for _, e := range byKey {
		idx.entries = append(idx.entries, e)
	}
	sort.Slice(idx.entries, func(i, j int) bool {
		return idx.entries[i].Key < idx.entries[j].Key
	})
	for i, e := range idx.entries {
		idx.byKey[e.Key] = i
	}
	return idx
}

// Len returns the number of documents in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Keys returns the document filenames in index order.
func (idx *Index) Keys() []string {
	if idx == nil {
		return nil
	}
	keys := make([]string, len(idx.entries))
	for i, e := range idx.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entry returns the entry for key.
func (idx *Index) Entry(key string) (IndexEntry, bool) {
	if idx == nil {
		return IndexEntry{}, false
	}
	i, ok := idx.byKey[key]
	if !ok {
		return IndexEntry{}, false
	}
	return idx.entries[i], true
}

// Lookup returns every entry whose text contains value as a literal,
// case-sensitive substring, in index order. This is a linear scan.
func (idx *Index) Lookup(value string) []IndexEntry {
	if idx == nil {
		return nil
	}
	var matches []IndexEntry
	for _, e := range idx.entries {
		if strings.Contains(e.Text, value) {
			matches = append(matches, e)
		}
	}
	return matches
}

// IndexReader provides access to the current index snapshot.
type IndexReader interface {
	// Index returns the most recently built index. It never returns nil.
	Index() *Index
}
