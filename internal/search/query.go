package search

// BoolFilter accumulates term filters into a bool query fragment.
// Helpers mirror the query patterns services build on top of an index:
// a value matching one field, any of several values matching one
// field, or any value matching any facet of a multi-field group.
type BoolFilter struct {
	must []map[string]any
}

func NewBoolFilter() *BoolFilter {
	return &BoolFilter{}
}

// AddTermFilter requires field to match value. Empty values are
// skipped.
func (f *BoolFilter) AddTermFilter(field, value string) *BoolFilter {
	if value == "" {
		return f
	}
	f.must = append(f.must, termQuery(field, value))
	return f
}

// AddTermsFilter requires field to match at least one of values.
func (f *BoolFilter) AddTermsFilter(field string, values []string) *BoolFilter {
	if len(values) == 0 {
		return f
	}
	should := make([]map[string]any, 0, len(values))
	for _, value := range values {
		should = append(should, termQuery(field, value))
	}
	f.must = append(f.must, map[string]any{
		"bool": map[string]any{"should": should},
	})
	return f
}

// AddMultiFieldTermFilter requires at least one of values to match at
// least one of fields, typically the facets of a multi-field group.
func (f *BoolFilter) AddMultiFieldTermFilter(values []string, fields ...string) *BoolFilter {
	if len(values) == 0 {
		return f
	}
	should := make([]map[string]any, 0, len(values))
	for _, value := range values {
		perField := make([]map[string]any, 0, len(fields))
		for _, field := range fields {
			perField = append(perField, termQuery(field, value))
		}
		should = append(should, map[string]any{
			"bool": map[string]any{"should": perField},
		})
	}
	f.must = append(f.must, map[string]any{
		"bool": map[string]any{"should": should},
	})
	return f
}

// Build renders the accumulated filters. With no filters it matches
// everything.
func (f *BoolFilter) Build() map[string]any {
	if len(f.must) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"bool": map[string]any{"must": f.must},
	}
}

func termQuery(field, value string) map[string]any {
	return map[string]any{
		"term": map[string]any{field: value},
	}
}
