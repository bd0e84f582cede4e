package search

import "fmt"

// The mapping compiler turns a field model into the schema document the
// backend expects. It is pure: the same field set always compiles to
// the same mapping and no backend call is involved.
//
// A STRING or TEXT field that is sortable or searchable expands into a
// multi-field group: exact lookup, relevance search and lexicographic
// sort each need their own analyzer, so each facet gets a physically
// distinct sub-field behind the logical field name.

// MapProperties compiles the property mappings for a field set, keyed
// by field name. An unknown field type is a configuration error.
func MapProperties(fields []IndexField) (map[string]any, error) {
	props := make(map[string]any, len(fields))
	for _, field := range fields {
		mapping, err := MapField(field)
		if err != nil {
			return nil, err
		}
		props[field.Name] = mapping
	}
	return props, nil
}

// MapField compiles the mapping of a single field, expanding STRING and
// TEXT fields into multi-field groups where their flags require it.
func MapField(field IndexField) (map[string]any, error) {
	return mapField(field, true)
}

func mapField(field IndexField, allowMultiField bool) (map[string]any, error) {
	switch field.Type {
	case TypeText:
		return mapTextField(field, allowMultiField), nil
	case TypeString:
		return mapStringField(field, allowMultiField), nil
	case TypeBoolean:
		return map[string]any{"type": "boolean"}, nil
	case TypeNumeric:
		return map[string]any{"type": "double"}, nil
	case TypeDate:
		return map[string]any{"type": "date", "format": "date_time"}, nil
	case TypeObject:
		return mapNestedField(field)
	default:
		return nil, fmt.Errorf("mapping does not exist for type: %s", field.Type)
	}
}

func needMultiField(field IndexField) bool {
	return (field.Type == TypeText || field.Type == TypeString) &&
		(field.Sortable || field.Searchable)
}

func mapStringField(field IndexField, allowMultiField bool) map[string]any {
	if allowMultiField && needMultiField(field) {
		return map[string]any{
			"type":   "multi_field",
			"fields": mapMultiField(field),
		}
	}
	return map[string]any{
		"type":            "string",
		"index":           "analyzed",
		"index_analyzer":  "keyword",
		"search_analyzer": "whitespace",
	}
}

func mapTextField(field IndexField, allowMultiField bool) map[string]any {
	if allowMultiField && needMultiField(field) {
		return map[string]any{
			"type":   "multi_field",
			"fields": mapMultiField(field),
		}
	}
	return map[string]any{
		"type":  "string",
		"index": "not_analyzed",
	}
}

// mapMultiField builds the sub-fields of a multi-field group. The
// primary mapping keeps the field's own name and is compiled with
// multi-field expansion disabled so the group never recurses.
func mapMultiField(field IndexField) map[string]any {
	fields := make(map[string]any)
	if field.Sortable {
		fields[SortSuffix] = map[string]any{
			"type":     "string",
			"index":    "analyzed",
			"analyzer": "sortable",
		}
	}
	if field.Searchable {
		if field.Type != TypeText {
			fields[SearchPartialSuffix] = map[string]any{
				"type":            "string",
				"index":           "analyzed",
				"index_analyzer":  "index_grams",
				"search_analyzer": "search_grams",
			}
		}
		fields[SearchWordsSuffix] = map[string]any{
			"type":            "string",
			"index":           "analyzed",
			"index_analyzer":  "index_words",
			"search_analyzer": "search_words",
		}
	}
	primary, _ := mapField(field, false)
	fields[field.Name] = primary
	return fields
}

func mapNestedField(field IndexField) (map[string]any, error) {
	props := make(map[string]any, len(field.NestedFields))
	for _, nested := range field.NestedFields {
		mapping, err := MapField(nested)
		if err != nil {
			return nil, err
		}
		props[nested.Name] = mapping
	}
	return map[string]any{
		"type":       "nested",
		"properties": props,
	}, nil
}
