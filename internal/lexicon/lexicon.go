// Package lexicon holds the keyword table used to route reports to
// responsible entities. A Lexicon is immutable once loaded.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_lexicon.yaml
var defaultLexicon string

var (
	ErrEmpty            = errors.New("lexicon has no entities")
	ErrDuplicateEntity  = errors.New("duplicate entity in lexicon")
	ErrMissingFallback  = errors.New("fallback entity not declared")
	ErrFallbackHasTerms = errors.New("fallback entity must not have terms")
	ErrEmptyTerm        = errors.New("empty term")
)

// Entry is one entity with its trigger phrases in declaration order.
type Entry struct {
	Entity string
	Terms  []string
}

// Lexicon is an ordered entity -> terms table with a designated fallback.
type Lexicon struct {
	entries  []Entry
	index    map[string]int
	fallback string
}

type fileFormat struct {
	Fallback string `yaml:"fallback"`
	Entities []struct {
		Name  string   `yaml:"name"`
		Terms []string `yaml:"terms"`
	} `yaml:"entities"`
}

// Default returns the lexicon embedded in the binary.
func Default() (*Lexicon, error) {
	return Load(strings.NewReader(defaultLexicon))
}

// MustDefault is Default for package-level initialisation and tests.
func MustDefault() *Lexicon {
	l, err := Default()
	if err != nil {
		panic(err)
	}
	return l
}

// LoadFile reads a YAML lexicon from path.
func LoadFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a YAML lexicon and validates it.
func Load(r io.Reader) (*Lexicon, error) {
	var doc fileFormat
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode lexicon: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		entries = append(entries, Entry{Entity: e.Name, Terms: e.Terms})
	}
	return New(doc.Fallback, entries)
}

// New builds a Lexicon from entries. Terms are trimmed and lowercased;
// repeated terms inside one entry keep their first position.
func New(fallback string, entries []Entry) (*Lexicon, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	l := &Lexicon{
		entries:  make([]Entry, 0, len(entries)),
		index:    make(map[string]int, len(entries)),
		fallback: strings.TrimSpace(fallback),
	}

	for _, e := range entries {
		name := strings.TrimSpace(e.Entity)
		if name == "" {
			return nil, fmt.Errorf("entity without name: %w", ErrEmpty)
		}
		if _, ok := l.index[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntity, name)
		}

		seen := make(map[string]bool, len(e.Terms))
		terms := make([]string, 0, len(e.Terms))
		for _, raw := range e.Terms {
			term := strings.ToLower(strings.TrimSpace(raw))
			if term == "" {
				return nil, fmt.Errorf("%w in entity %s", ErrEmptyTerm, name)
			}
			if seen[term] {
				continue
			}
			seen[term] = true
			terms = append(terms, term)
		}

		l.index[name] = len(l.entries)
		l.entries = append(l.entries, Entry{Entity: name, Terms: terms})
	}

	i, ok := l.index[l.fallback]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingFallback, l.fallback)
	}
	if len(l.entries[i].Terms) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrFallbackHasTerms, l.fallback)
	}

	return l, nil
}

// Entries returns a copy of the entries in declaration order.
func (l *Lexicon) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = Entry{Entity: e.Entity, Terms: append([]string(nil), e.Terms...)}
	}
	return out
}

// Fallback is the catch-all entity name.
func (l *Lexicon) Fallback() string { return l.fallback }

// EntityNames lists entity names in declaration order.
func (l *Lexicon) EntityNames() []string {
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.Entity
	}
	return names
}

// Has reports whether name is declared.
func (l *Lexicon) Has(name string) bool {
	_, ok := l.index[name]
	return ok
}

// Terms returns the trigger phrases of one entity.
func (l *Lexicon) Terms(name string) []string {
	i, ok := l.index[name]
	if !ok {
		return nil
	}
	return append([]string(nil), l.entries[i].Terms...)
}

// Len is the number of entities.
func (l *Lexicon) Len() int { return len(l.entries) }
