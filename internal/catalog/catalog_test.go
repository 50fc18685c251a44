package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func names(entries []Entry) []string {
	return lo.Map(entries, func(e Entry, _ int) string { return e.Name })
}

func TestParseNames(t *testing.T) {
	input := "# comment\nFrance\n\n  Fries  \nFrance\n"
	parsed, err := ParseNames(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"France", "Fries"}, parsed)
}

func TestDefaultNames(t *testing.T) {
	defaults := DefaultNames()
	assert.Contains(t, defaults, "France")
	assert.Contains(t, defaults, "Côte d'Ivoire")
	assert.NotContains(t, defaults, "")
	assert.Equal(t, len(defaults), len(lo.Uniq(defaults)))
}

func TestLoadNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alpha\nBeta\n"), 0644))

	loaded, err := LoadNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, loaded)

	_, err = LoadNames(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	loaded, err = LoadNames("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNames(), loaded)
}

// matcherTests runs the same behavioural checks against every Matcher.
func matcherTests(t *testing.T, newMatcher func(t *testing.T, names []string) Matcher) {
	catalog := []string{"France", "Fries", "Finland", "Fiji", "Germany", "frankfurt"}

	t.Run("prefix is case-insensitive", func(t *testing.T) {
		m := newMatcher(t, catalog)
		found, err := m.Match("fr", 0)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"France", "Fries", "frankfurt"}, names(found))
	})

	t.Run("limit", func(t *testing.T) {
		m := newMatcher(t, catalog)
		found, err := m.Match("f", 2)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("no match", func(t *testing.T) {
		m := newMatcher(t, catalog)
		found, err := m.Match("zz", 10)
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("replace", func(t *testing.T) {
		m := newMatcher(t, catalog)
		require.NoError(t, m.Replace([]string{"Spain"}))
		assert.Equal(t, 1, m.Len())

		found, err := m.Match("fr", 0)
		require.NoError(t, err)
		assert.Empty(t, found)

		found, err = m.Match("sp", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Spain"}, names(found))
	})
}

func TestIndex(t *testing.T) {
	matcherTests(t, func(t *testing.T, names []string) Matcher {
		return NewIndex(names)
	})
}

func TestStore(t *testing.T) {
	matcherTests(t, func(t *testing.T, names []string) Matcher {
		store, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		require.NoError(t, store.Replace(names))
		return store
	})
}

func TestIndexSortsByName(t *testing.T) {
	idx := NewIndex([]string{"Fries", "Fiji", "France"})
	found, err := idx.Match("f", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fiji", "France", "Fries"}, names(found))
}

func TestIndexFuzzyFallback(t *testing.T) {
	idx := NewIndex([]string{"United Kingdom", "United States", "Uganda"})

	found, err := idx.Match("ukgdm", 0)
	require.NoError(t, err)
	assert.Empty(t, found)

	idx.Fuzzy = true
	found, err = idx.Match("ukgdm", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"United Kingdom"}, names(found))
}

func TestStoreEscapesWildcards(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Replace([]string{"100% Pure", "100 Acres", "a_b", "axb"}))

	found, err := store.Match("100%", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Pure"}, names(found))

	found, err = store.Match("a_", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, names(found))
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alpha\n"), 0644))

	idx := NewIndex(nil)
	require.NoError(t, Reload(idx, path, zap.NewNop()))
	assert.Equal(t, 1, idx.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, Watch(ctx, idx, path, zap.NewNop()))

	require.NoError(t, os.WriteFile(path, []byte("Alpha\nBeta\nGamma\n"), 0644))

	assert.Eventually(t, func() bool {
		return idx.Len() == 3
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchDropsPendingReloadOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alpha\n"), 0644))

	idx := NewIndex(nil)
	require.NoError(t, Reload(idx, path, zap.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, Watch(ctx, idx, path, zap.NewNop()))

	require.NoError(t, os.WriteFile(path, []byte("Alpha\nBeta\n"), 0644))
	time.Sleep(reloadDelay / 4)
	cancel()

	time.Sleep(3 * reloadDelay)
	assert.Equal(t, 1, idx.Len())
}
