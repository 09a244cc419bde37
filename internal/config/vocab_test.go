package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vocabFixture = `
stations:
  - code: P1
    name: Kitting
  - code: p2
    name: Assembly
series:
  AC: Acoustic
  ST: Standard
models:
  "350": Rev A
containers:
  A1: Tray A1
statuses:
  G: Good
  N: No good
flows:
  DEFAULT: [P1, P2]
  ST: [P1]
`

func writeVocab(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadVocabulary(t *testing.T) {
	vocab, err := LoadVocabulary(writeVocab(t, vocabFixture))
	require.NoError(t, err)

	assert.Equal(t, []string{"P1", "P2"}, vocab.StationCodes())
	assert.Equal(t, "Assembly", vocab.Stations[1].Name)
	assert.Equal(t, "Good", vocab.Statuses["G"])
	assert.Equal(t, []string{"P1", "P2"}, vocab.Flows["DEFAULT"])
	assert.Equal(t, []string{"P1"}, vocab.Flows["ST"])

	assert.True(t, vocab.HasSeries("AC"))
	assert.False(t, vocab.HasSeries("XX"))
	assert.True(t, vocab.HasModel("350"))
	assert.False(t, vocab.HasModel("999"))
}

func TestLoadVocabulary_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadVocabulary(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadVocabulary(writeVocab(t, "stations: ["))
		assert.Error(t, err)
	})

	t.Run("no stations", func(t *testing.T) {
		_, err := LoadVocabulary(writeVocab(t, "flows:\n  DEFAULT: [P1]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one station")
	})

	t.Run("station with empty code", func(t *testing.T) {
		content := "stations:\n  - code: \"\"\n    name: Ghost\nflows:\n  DEFAULT: [P1]\n"
		_, err := LoadVocabulary(writeVocab(t, content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty code")
	})

	t.Run("missing default flow", func(t *testing.T) {
		content := "stations:\n  - code: P1\n    name: Kitting\nflows:\n  ST: [P1]\n"
		_, err := LoadVocabulary(writeVocab(t, content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DEFAULT")
	})
}
