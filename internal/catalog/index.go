package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Index is an in-memory prefix index over lower-cased names. When Fuzzy is
// set, a query without prefix matches falls back to fuzzy matching.
type Index struct {
	Fuzzy bool

	mu      sync.RWMutex
	trie    *patricia.Trie
	entries []Entry
}

func NewIndex(names []string) *Index {
	idx := &Index{}
	_ = idx.Replace(names)
	return idx
}

// Replace rebuilds the index from names.
func (idx *Index) Replace(names []string) error {
	entries := entriesFor(names)
	trie := patricia.NewTrie()
	for _, entry := range entries {
		key := patricia.Prefix(strings.ToLower(entry.Name))
		if existing := trie.Get(key); existing != nil {
			trie.Set(key, append(existing.([]Entry), entry))
			continue
		}
		trie.Insert(key, []Entry{entry})
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.trie = trie
	idx.entries = entries
	return nil
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

func (idx *Index) Match(query string, limit int) ([]Entry, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var matches []Entry
	err := idx.trie.VisitSubtree(patricia.Prefix(strings.ToLower(query)), func(_ patricia.Prefix, item patricia.Item) error {
		matches = append(matches, item.([]Entry)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 && idx.Fuzzy && query != "" {
		return idx.fuzzyMatch(query, limit), nil
	}

	slices.SortFunc(matches, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return truncate(matches, limit), nil
}

func (idx *Index) fuzzyMatch(query string, limit int) []Entry {
	names := lo.Map(idx.entries, func(e Entry, _ int) string { return e.Name })
	found := fuzzy.Find(query, names)
	matches := lo.Map(found, func(m fuzzy.Match, _ int) Entry { return idx.entries[m.Index] })
	return truncate(matches, limit)
}

func truncate(entries []Entry, limit int) []Entry {
	if entries == nil {
		return []Entry{}
	}
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
