package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapField(t *testing.T) {
	t.Run("Boolean", func(t *testing.T) {
		mapping, err := MapField(NewField("private", TypeBoolean))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"type": "boolean"}, mapping)
	})

	t.Run("Numeric", func(t *testing.T) {
		mapping, err := MapField(NewField("effort", TypeNumeric))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"type": "double"}, mapping)
	})

	t.Run("Date", func(t *testing.T) {
		mapping, err := MapField(NewField("createdAt", TypeDate))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"type": "date", "format": "date_time"}, mapping)
	})

	t.Run("PlainString", func(t *testing.T) {
		mapping, err := MapField(NewField("severity", TypeString))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"type":            "string",
			"index":           "analyzed",
			"index_analyzer":  "keyword",
			"search_analyzer": "whitespace",
		}, mapping)
	})

	t.Run("PlainText", func(t *testing.T) {
		mapping, err := MapField(NewField("description", TypeText))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"type":  "string",
			"index": "not_analyzed",
		}, mapping)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := MapField(IndexField{Name: "broken", Type: FieldType(42)})
		assert.Error(t, err)
	})
}

func TestMapFieldMultiField(t *testing.T) {
	t.Run("NoFlagsMeansSingleField", func(t *testing.T) {
		mapping, err := MapField(NewField("status", TypeString))
		require.NoError(t, err)
		assert.NotContains(t, mapping, "fields")
		assert.Equal(t, "string", mapping["type"])
	})

	t.Run("SortableString", func(t *testing.T) {
		mapping, err := MapField(NewSortableField("key", TypeString))
		require.NoError(t, err)
		assert.Equal(t, "multi_field", mapping["type"])

		fields := mapping["fields"].(map[string]any)
		assert.Contains(t, fields, SortSuffix)
		assert.Contains(t, fields, "key")
		assert.NotContains(t, fields, SearchWordsSuffix)
		assert.NotContains(t, fields, SearchPartialSuffix)

		sort := fields[SortSuffix].(map[string]any)
		assert.Equal(t, "sortable", sort["analyzer"])
	})

	t.Run("SearchableString", func(t *testing.T) {
		mapping, err := MapField(NewSearchableField("name", TypeString))
		require.NoError(t, err)

		fields := mapping["fields"].(map[string]any)
		assert.Contains(t, fields, SearchWordsSuffix)
		assert.Contains(t, fields, SearchPartialSuffix)
		assert.NotContains(t, fields, SortSuffix)
	})

	t.Run("SearchableTextHasNoGrams", func(t *testing.T) {
		mapping, err := MapField(NewSearchableField("description", TypeText))
		require.NoError(t, err)

		fields := mapping["fields"].(map[string]any)
		assert.Contains(t, fields, SearchWordsSuffix)
		assert.NotContains(t, fields, SearchPartialSuffix)
	})

	t.Run("PrimaryMappingDoesNotRecurse", func(t *testing.T) {
		mapping, err := MapField(IndexField{
			Name: "name", Type: TypeString, Sortable: true, Searchable: true,
		})
		require.NoError(t, err)

		fields := mapping["fields"].(map[string]any)
		primary := fields["name"].(map[string]any)
		assert.Equal(t, "string", primary["type"])
		assert.NotContains(t, primary, "fields")
	})
}

func TestMapNestedField(t *testing.T) {
	field := NewObjectField("params",
		NewField("key", TypeString),
		NewObjectField("values",
			NewField("value", TypeString),
			NewField("active", TypeBoolean),
		),
	)

	mapping, err := MapField(field)
	require.NoError(t, err)
	assert.Equal(t, "nested", mapping["type"])

	props := mapping["properties"].(map[string]any)
	require.Contains(t, props, "key")
	require.Contains(t, props, "values")

	inner := props["values"].(map[string]any)
	assert.Equal(t, "nested", inner["type"])

	innerProps := inner["properties"].(map[string]any)
	assert.Contains(t, innerProps, "value")
	assert.Contains(t, innerProps, "active")
}

func TestMapNestedFieldAppliesMultiFieldRule(t *testing.T) {
	field := NewObjectField("tags",
		NewSearchableField("value", TypeString))

	mapping, err := MapField(field)
	require.NoError(t, err)

	props := mapping["properties"].(map[string]any)
	value := props["value"].(map[string]any)
	assert.Equal(t, "multi_field", value["type"])
}

func TestMapProperties(t *testing.T) {
	fields := []IndexField{
		NewSortableField("key", TypeString),
		NewField("createdAt", TypeDate),
	}

	t.Run("OnlyDeclaredFields", func(t *testing.T) {
		props, err := MapProperties(fields)
		require.NoError(t, err)
		assert.Len(t, props, 2)
		assert.Contains(t, props, "key")
		assert.Contains(t, props, "createdAt")
	})

	t.Run("Deterministic", func(t *testing.T) {
		first, err := MapProperties(fields)
		require.NoError(t, err)
		second, err := MapProperties(fields)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("UnknownTypePropagates", func(t *testing.T) {
		_, err := MapProperties([]IndexField{{Name: "broken", Type: FieldType(42)}})
		assert.Error(t, err)
	})
}
