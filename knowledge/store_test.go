package knowledge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKnowledge = `{
  "qa": [
    {"q": "What are your hours?", "a": "9-5 Mon-Fri", "keywords": ["businesshours"]},
    {"q": "Where is your office?", "a": "Bangkok", "keywords": ["location", "address"]},
    {"q": "มีมาตรฐาน ISO อะไรไหม", "a": "ISO 9001", "keywords": ["iso", "มีมีมี", "iso9001"]}
  ],
  "company_info": {"name": "Acme"}
}`

func writeKnowledgeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestNewStore(t *testing.T) {
	t.Run("path required", func(t *testing.T) {
		_, err := NewStore("")
		assert.Equal(t, ErrPathRequired, err)
	})

	t.Run("starts with empty snapshot", func(t *testing.T) {
		s, err := NewStore("/nonexistent/knowledge.json")
		require.NoError(t, err)
		assert.Empty(t, s.Snapshot().Records)
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads records and company info", func(t *testing.T) {
		path := writeKnowledgeFile(t, testKnowledge)
		s, err := NewStore(path)
		require.NoError(t, err)

		require.NoError(t, s.Load(false))
		assert.Len(t, s.Snapshot().Records, 3)
		assert.Equal(t, "Acme", s.CompanyInfo()["name"])
	})

	t.Run("missing file falls back to empty snapshot", func(t *testing.T) {
		s, err := NewStore(filepath.Join(t.TempDir(), "missing.json"))
		require.NoError(t, err)

		err = s.Load(false)
		assert.Error(t, err)
		assert.Empty(t, s.Snapshot().Records)
		assert.NotNil(t, s.Snapshot().CompanyInfo)
	})

	t.Run("corrupt file falls back to empty snapshot", func(t *testing.T) {
		path := writeKnowledgeFile(t, "{not json")
		s, err := NewStore(path)
		require.NoError(t, err)

		assert.Error(t, s.Load(false))
		assert.Empty(t, s.Snapshot().Records)
	})

	t.Run("unchanged mtime skips reload", func(t *testing.T) {
		path := writeKnowledgeFile(t, testKnowledge)
		s, err := NewStore(path)
		require.NoError(t, err)

		require.NoError(t, s.Load(false))
		first := s.Snapshot()
		require.NoError(t, s.Load(false))
		assert.Same(t, first, s.Snapshot())
	})

	t.Run("advanced mtime triggers reload", func(t *testing.T) {
		path := writeKnowledgeFile(t, testKnowledge)
		s, err := NewStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Load(false))

		updated := `{"qa": [{"q": "Only one", "a": "left"}], "company_info": {}}`
		require.NoError(t, os.WriteFile(path, []byte(updated), 0644))
		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(path, future, future))

		require.NoError(t, s.Load(false))
		assert.Len(t, s.Snapshot().Records, 1)
	})

	t.Run("force reloads regardless of mtime", func(t *testing.T) {
		path := writeKnowledgeFile(t, testKnowledge)
		s, err := NewStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Load(false))
		first := s.Snapshot()

		require.NoError(t, s.Load(true))
		assert.NotSame(t, first, s.Snapshot())
	})
}

func TestSearch(t *testing.T) {
	path := writeKnowledgeFile(t, testKnowledge)
	s, err := NewStore(path)
	require.NoError(t, err)

	t.Run("exact question match scores 1.0", func(t *testing.T) {
		results := s.Search("What are your hours?")
		require.Len(t, results, 1)
		assert.Equal(t, 1.0, results[0].Score)
		assert.True(t, results[0].Exact)
		assert.Equal(t, "9-5 Mon-Fri", results[0].Answer)
	})

	t.Run("exact match ignores case and whitespace", func(t *testing.T) {
		results := s.Search("  what are your HOURS?  ")
		require.Len(t, results, 1)
		assert.True(t, results[0].Exact)
	})

	t.Run("explicit keyword match scores 0.8", func(t *testing.T) {
		results := s.Search("tell me your businesshours please")
		require.Len(t, results, 1)
		assert.Equal(t, 0.8, results[0].Score)
		assert.False(t, results[0].Exact)
	})

	t.Run("short keyword does not qualify", func(t *testing.T) {
		// "iso" is only 3 runes; must not match even though tagged.
		assert.Empty(t, s.Search("do you have iso"))
	})

	t.Run("low-entropy keyword does not qualify", func(t *testing.T) {
		// "มีมีมี" repeats one rune; fewer than 3 distinct runes.
		assert.Empty(t, s.Search("อยากรู้ มีมีมี"))
	})

	t.Run("qualifying keyword in another script", func(t *testing.T) {
		results := s.Search("เรามี iso9001 หรือเปล่า")
		require.Len(t, results, 1)
		assert.Equal(t, "ISO 9001", results[0].Answer)
	})

	t.Run("no substring matching on questions", func(t *testing.T) {
		assert.Empty(t, s.Search("hours"))
	})

	t.Run("results sorted by score descending", func(t *testing.T) {
		results := s.Search("address businesshours")
		require.Len(t, results, 2)
		assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	})

	t.Run("truncates to max results", func(t *testing.T) {
		limited, err := NewStore(path, WithMaxResults(1), WithThreshold(0.5))
		require.NoError(t, err)
		results := limited.Search("businesshours location address what")
		assert.LessOrEqual(t, len(results), 1)
	})
}
