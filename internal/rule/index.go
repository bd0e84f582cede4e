package rule

import (
	"github.com/luqq/sonarqube/internal/search"
	"github.com/luqq/sonarqube/pkg/logger"
)

// Index is the rule index: the generic base specialized to rules.
type Index struct {
	*search.BaseIndex[Rule, Rule, string]
}

func NewIndex(client search.Client, loader Loader, log logger.Logger) *Index {
	return &Index{
		BaseIndex: search.NewBaseIndex[Rule, Rule, string](
			search.NewIndexDefinition(IndexName, IndexType),
			client,
			NewNormalizer(loader),
			adapter{},
			log,
		),
	}
}
