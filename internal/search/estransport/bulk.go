package estransport

import (
	"bytes"
	"encoding/json"

	"github.com/luqq/sonarqube/internal/search"
)

// encodeBulkBody renders write operations as the newline-delimited
// action/source pairs of the bulk API.
func encodeBulkBody(ops []search.BulkOp) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, op := range ops {
		action := map[string]any{
			"update": map[string]any{
				"_index":  op.Index,
				"_id":     op.ID,
				"routing": op.Routing,
			},
		}
		if err := enc.Encode(action); err != nil {
			return nil, err
		}

		source := map[string]any{"doc": op.Update.Doc}
		if op.Update.DocAsUpsert {
			source["doc_as_upsert"] = true
		} else if op.Update.Upsert != nil {
			source["upsert"] = op.Update.Upsert
		}
		if err := enc.Encode(source); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

func (r *bulkResponse) failedItems() []search.BulkItemError {
	if !r.Errors {
		return nil
	}
	var failed []search.BulkItemError
	for _, item := range r.Items {
		for _, result := range item {
			if result.Error == nil {
				continue
			}
			failed = append(failed, search.BulkItemError{
				ID:     result.ID,
				Status: result.Status,
				Reason: result.Error.Reason,
			})
		}
	}
	return failed
}
