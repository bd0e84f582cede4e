package rule

import (
	"fmt"
	"time"

	"github.com/luqq/sonarqube/internal/search"
)

const (
	IndexName = "rules"
	IndexType = "rule"
)

// dateTimeFormat matches the backend's date_time mapping format.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Rule is the indexed view of a coding rule.
type Rule struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fields is the field model of the rule index.
func Fields() []search.IndexField {
	return []search.IndexField{
		search.NewSortableField("key", search.TypeString),
		{Name: "name", Type: search.TypeString, Sortable: true, Searchable: true},
		search.NewField("severity", search.TypeString),
		search.NewField("status", search.TypeString),
		search.NewObjectField("tags",
			search.NewSearchableField("value", search.TypeString)),
		search.NewField("createdAt", search.TypeDate),
		search.NewField("updatedAt", search.TypeDate),
	}
}

// adapter supplies the rule-specific behavior of the generic index.
type adapter struct{}

var _ search.EntityAdapter[Rule, Rule, string] = adapter{}

func (adapter) GetKeyValue(key string) string {
	return key
}

func (adapter) EntityKey(r Rule) string {
	return r.Key
}

func (adapter) GetIndexSettings() map[string]any {
	return map[string]any{
		"number_of_shards":   1,
		"number_of_replicas": 1,
		"analysis": map[string]any{
			"analyzer": map[string]any{
				"sortable": map[string]any{
					"type":      "custom",
					"tokenizer": "keyword",
					"filter":    []string{"lowercase"},
				},
				"index_grams": map[string]any{
					"type":      "custom",
					"tokenizer": "gram_tokenizer",
					"filter":    []string{"lowercase"},
				},
				"search_grams": map[string]any{
					"type":      "custom",
					"tokenizer": "whitespace",
					"filter":    []string{"lowercase"},
				},
				"index_words": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", "stop"},
				},
				"search_words": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", "stop"},
				},
			},
			"tokenizer": map[string]any{
				"gram_tokenizer": map[string]any{
					"type":        "ngram",
					"min_gram":    2,
					"max_gram":    15,
					"token_chars": []string{"letter", "digit"},
				},
			},
		},
	}
}

func (adapter) MapProperties() (map[string]any, error) {
	return search.MapProperties(Fields())
}

func (adapter) MapKey() map[string]any {
	return map[string]any{"path": "key"}
}

func (adapter) ToDoc(source map[string]any) (Rule, error) {
	r := Rule{
		Key:      stringField(source, "key"),
		Name:     stringField(source, "name"),
		Severity: stringField(source, "severity"),
		Status:   stringField(source, "status"),
	}
	if r.Key == "" {
		return Rule{}, fmt.Errorf("rule source has no key")
	}

	if tags, ok := source["tags"].([]any); ok {
		for _, tag := range tags {
			if obj, ok := tag.(map[string]any); ok {
				r.Tags = append(r.Tags, stringField(obj, "value"))
			}
		}
	}

	var err error
	if r.CreatedAt, err = timeField(source, "createdAt"); err != nil {
		return Rule{}, err
	}
	if r.UpdatedAt, err = timeField(source, "updatedAt"); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func stringField(source map[string]any, name string) string {
	s, _ := source[name].(string)
	return s
}

func timeField(source map[string]any, name string) (time.Time, error) {
	raw, ok := source[name].(string)
	if !ok || raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateTimeFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return t, nil
}
