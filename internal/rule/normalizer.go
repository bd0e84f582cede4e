package rule

import (
	"fmt"

	"github.com/luqq/sonarqube/internal/search"
)

// Loader resolves a rule from the source of truth by key, for
// reindex-by-reference flows. Found is false when no such rule exists.
type Loader func(key string) (r Rule, found bool, err error)

// Normalizer turns rules into index write operations.
type Normalizer struct {
	loader Loader
}

var _ search.Normalizer[Rule, string] = (*Normalizer)(nil)

func NewNormalizer(loader Loader) *Normalizer {
	return &Normalizer{loader: loader}
}

func (n *Normalizer) Normalize(r Rule) ([]search.UpdateRequest, error) {
	return []search.UpdateRequest{
		{Doc: toSource(r), DocAsUpsert: true},
	}, nil
}

func (n *Normalizer) NormalizeKey(key string) ([]search.UpdateRequest, error) {
	if n.loader == nil {
		return nil, fmt.Errorf("no rule loader configured")
	}
	r, found, err := n.loader(key)
	if err != nil {
		return nil, fmt.Errorf("load rule %s: %w", key, err)
	}
	if !found {
		return nil, fmt.Errorf("rule %s does not exist", key)
	}
	return n.Normalize(r)
}

// NormalizeRaw handles partial updates of a rule: a full rule, or a tag
// set to merge into the parent document.
func (n *Normalizer) NormalizeRaw(obj any, key string) ([]search.UpdateRequest, error) {
	switch v := obj.(type) {
	case Rule:
		return n.Normalize(v)
	case []string:
		return []search.UpdateRequest{
			{Doc: map[string]any{"tags": tagSource(v)}},
		}, nil
	default:
		return nil, fmt.Errorf("cannot normalize %T for rule %s", obj, key)
	}
}

func toSource(r Rule) map[string]any {
	source := map[string]any{
		"key":      r.Key,
		"name":     r.Name,
		"severity": r.Severity,
		"status":   r.Status,
		"tags":     tagSource(r.Tags),
	}
	if !r.CreatedAt.IsZero() {
		source["createdAt"] = r.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !r.UpdatedAt.IsZero() {
		source["updatedAt"] = r.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return source
}

func tagSource(tags []string) []map[string]any {
	out := make([]map[string]any, 0, len(tags))
	for _, tag := range tags {
		out = append(out, map[string]any{"value": tag})
	}
	return out
}
