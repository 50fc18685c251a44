package catalog

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

//go:embed countries.txt
var defaultNames string

// Entry is one name that can be suggested.
type Entry struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
}

// Matcher finds the entries whose name starts with a query.
type Matcher interface {
	Match(query string, limit int) ([]Entry, error)
	Replace(names []string) error
	Len() int
}

// ParseNames reads one name per line. Blank lines and lines starting with
// '#' are skipped and duplicates are dropped.
func ParseNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lo.Uniq(names), nil
}

// DefaultNames returns the built-in list of country names.
func DefaultNames() []string {
	names, _ := ParseNames(strings.NewReader(defaultNames))
	return names
}

// LoadNames reads the names in path, or the built-in list when path is empty.
func LoadNames(path string) ([]string, error) {
	if path == "" {
		return DefaultNames(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	names, err := ParseNames(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return names, nil
}

func entriesFor(names []string) []Entry {
	return lo.Map(names, func(name string, i int) Entry {
		return Entry{ID: uint(i + 1), Name: name}
	})
}
