package lexicon_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reportes/backend/internal/lexicon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	l, err := lexicon.Default()
	require.NoError(t, err)

	assert.Equal(t, "General", l.Fallback())
	assert.Empty(t, l.Terms("General"))
	assert.True(t, l.Has("Policía"))
	assert.True(t, l.Has("Bomberos"))
	assert.True(t, l.Has("Hospital"))
	assert.True(t, l.Has("Obras Públicas"))
	assert.Equal(t, "Policía", l.EntityNames()[0], "declaration order must be preserved")
	assert.Equal(t, "General", l.EntityNames()[l.Len()-1])
}

func TestLoad_PreservesOrderAndNormalizesTerms(t *testing.T) {
	doc := `
fallback: Otros
entities:
  - name: Zeta
    terms: ["  Uno ", "dos", "UNO"]
  - name: Alfa
    terms: [tres]
  - name: Otros
    terms: []
`
	l, err := lexicon.Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Zeta", "Alfa", "Otros"}, l.EntityNames())
	assert.Equal(t, []string{"uno", "dos"}, l.Terms("Zeta"))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		entries  []lexicon.Entry
		wantErr  error
	}{
		{
			name:    "empty",
			wantErr: lexicon.ErrEmpty,
		},
		{
			name:     "duplicate entity",
			fallback: "G",
			entries:  []lexicon.Entry{{Entity: "A"}, {Entity: "A"}, {Entity: "G"}},
			wantErr:  lexicon.ErrDuplicateEntity,
		},
		{
			name:     "missing fallback",
			fallback: "G",
			entries:  []lexicon.Entry{{Entity: "A", Terms: []string{"x"}}},
			wantErr:  lexicon.ErrMissingFallback,
		},
		{
			name:     "fallback with terms",
			fallback: "G",
			entries:  []lexicon.Entry{{Entity: "G", Terms: []string{"x"}}},
			wantErr:  lexicon.ErrFallbackHasTerms,
		},
		{
			name:     "blank term",
			fallback: "G",
			entries:  []lexicon.Entry{{Entity: "A", Terms: []string{" "}}, {Entity: "G"}},
			wantErr:  lexicon.ErrEmptyTerm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lexicon.New(tt.fallback, tt.entries)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	l, err := lexicon.New("G", []lexicon.Entry{{Entity: "A", Terms: []string{"x"}}, {Entity: "G"}})
	require.NoError(t, err)

	entries := l.Entries()
	entries[0].Terms[0] = "mutated"
	entries[0].Entity = "B"

	assert.Equal(t, []string{"x"}, l.Terms("A"))
	assert.True(t, l.Has("A"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fallback: G\nentities:\n  - name: A\n    terms: [x]\n  - name: G\n"), 0o600))

	l, err := lexicon.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())

	_, err = lexicon.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
