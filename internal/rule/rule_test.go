package rule

import (
	"testing"
	"time"

	"github.com/luqq/sonarqube/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleMapping(t *testing.T) {
	props, err := adapter{}.MapProperties()
	require.NoError(t, err)

	t.Run("NameIsMultiFieldGroup", func(t *testing.T) {
		name := props["name"].(map[string]any)
		require.Equal(t, "multi_field", name["type"])

		fields := name["fields"].(map[string]any)
		assert.Contains(t, fields, search.SortSuffix)
		assert.Contains(t, fields, search.SearchWordsSuffix)
		assert.Contains(t, fields, search.SearchPartialSuffix)
		assert.Contains(t, fields, "name")
	})

	t.Run("CreatedAtIsDateTime", func(t *testing.T) {
		createdAt := props["createdAt"].(map[string]any)
		assert.Equal(t, "date", createdAt["type"])
		assert.Equal(t, "date_time", createdAt["format"])
	})

	t.Run("TagsAreNested", func(t *testing.T) {
		tags := props["tags"].(map[string]any)
		assert.Equal(t, "nested", tags["type"])

		nested := tags["properties"].(map[string]any)
		assert.Contains(t, nested, "value")
	})

	t.Run("SettingsDefineMappedAnalyzers", func(t *testing.T) {
		settings := adapter{}.GetIndexSettings()
		analysis := settings["analysis"].(map[string]any)
		analyzers := analysis["analyzer"].(map[string]any)
		for _, name := range []string{"sortable", "index_grams", "search_grams", "index_words", "search_words"} {
			assert.Contains(t, analyzers, name)
		}
	})
}

func TestNormalizer(t *testing.T) {
	r := Rule{
		Key:       "squid:S1067",
		Name:      "Expressions should not be too complex",
		Severity:  "MAJOR",
		Status:    "READY",
		Tags:      []string{"brain-overload"},
		CreatedAt: time.Date(2014, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	t.Run("NormalizeProducesOneDocAsUpsert", func(t *testing.T) {
		requests, err := NewNormalizer(nil).Normalize(r)
		require.NoError(t, err)
		require.Len(t, requests, 1)

		req := requests[0]
		assert.True(t, req.DocAsUpsert)
		assert.Equal(t, "squid:S1067", req.Doc["key"])
		assert.Equal(t, "2014-05-01T10:00:00.000Z", req.Doc["createdAt"])
		assert.Equal(t, []map[string]any{{"value": "brain-overload"}}, req.Doc["tags"])
		assert.NotContains(t, req.Doc, "updatedAt")
	})

	t.Run("NormalizeKeyUsesLoader", func(t *testing.T) {
		loader := func(key string) (Rule, bool, error) {
			if key == r.Key {
				return r, true, nil
			}
			return Rule{}, false, nil
		}

		requests, err := NewNormalizer(loader).NormalizeKey(r.Key)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, r.Name, requests[0].Doc["name"])

		_, err = NewNormalizer(loader).NormalizeKey("unknown")
		assert.Error(t, err)
	})

	t.Run("NormalizeKeyWithoutLoaderFails", func(t *testing.T) {
		_, err := NewNormalizer(nil).NormalizeKey(r.Key)
		assert.Error(t, err)
	})

	t.Run("NormalizeRawTags", func(t *testing.T) {
		requests, err := NewNormalizer(nil).NormalizeRaw([]string{"security", "cwe"}, r.Key)
		require.NoError(t, err)
		require.Len(t, requests, 1)

		req := requests[0]
		assert.False(t, req.DocAsUpsert)
		assert.Equal(t, []map[string]any{{"value": "security"}, {"value": "cwe"}}, req.Doc["tags"])
	})

	t.Run("NormalizeRawRejectsUnknownTypes", func(t *testing.T) {
		_, err := NewNormalizer(nil).NormalizeRaw(42, r.Key)
		assert.Error(t, err)
	})
}

func TestToDoc(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		r := Rule{
			Key:       "squid:S1068",
			Name:      "Unused private fields should be removed",
			Severity:  "MAJOR",
			Status:    "READY",
			Tags:      []string{"unused"},
			CreatedAt: time.Date(2014, 5, 1, 10, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2014, 6, 1, 10, 0, 0, 0, time.UTC),
		}

		source := toSource(r)
		// Stored sources come back through JSON, where arrays lose
		// their concrete element type.
		source["tags"] = []any{map[string]any{"value": "unused"}}

		decoded, err := adapter{}.ToDoc(source)
		require.NoError(t, err)
		assert.Equal(t, r, decoded)
	})

	t.Run("MissingKeyFails", func(t *testing.T) {
		_, err := adapter{}.ToDoc(map[string]any{"name": "nameless"})
		assert.Error(t, err)
	})
}
