package search

import (
	"context"
	"sync"
)

// fakeClient is an in-memory backend for index tests. Bulk writes land
// in a pending set and only become readable after RefreshIndex, which
// models the backend's visibility lag. Direct partial updates, as used
// for the management index, are visible immediately.
type fakeClient struct {
	mu          sync.Mutex
	settings    map[string]map[string]any
	createCalls map[string]int
	mappings    map[string][]map[string]any
	visible     map[string]map[string]map[string]any
	pending     map[string]map[string]map[string]any
	failIDs     map[string]string
	err         error
}

var _ Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		settings:    make(map[string]map[string]any),
		createCalls: make(map[string]int),
		mappings:    make(map[string][]map[string]any),
		visible:     make(map[string]map[string]map[string]any),
		pending:     make(map[string]map[string]map[string]any),
		failIDs:     make(map[string]string),
	}
}

func (f *fakeClient) IndexExists(ctx context.Context, index string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.settings[index]
	return ok, nil
}

func (f *fakeClient) CreateIndex(ctx context.Context, index string, settings map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.createCalls[index]++
	if _, ok := f.settings[index]; !ok {
		f.settings[index] = settings
	}
	return nil
}

func (f *fakeClient) PutMapping(ctx context.Context, index string, mapping map[string]any, ignoreConflicts bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.mappings[index] = append(f.mappings[index], mapping)
	return nil
}

func (f *fakeClient) GetDocument(ctx context.Context, index, id, routing string) (map[string]any, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	source, ok := f.visible[index][id]
	if !ok {
		return nil, false, nil
	}
	return cloneSource(source), true, nil
}

func (f *fakeClient) UpdateDocument(ctx context.Context, index, id string, doc map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.visible[index] == nil {
		f.visible[index] = make(map[string]map[string]any)
	}
	base := f.visible[index][id]
	if base == nil {
		base = make(map[string]any)
	}
	for k, v := range doc {
		base[k] = v
	}
	f.visible[index][id] = base
	return nil
}

func (f *fakeClient) Bulk(ctx context.Context, ops []BulkOp) ([]BulkItemError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var failed []BulkItemError
	for _, op := range ops {
		if reason, ok := f.failIDs[op.ID]; ok {
			failed = append(failed, BulkItemError{ID: op.ID, Status: 400, Reason: reason})
			continue
		}

		if f.pending[op.Index] == nil {
			f.pending[op.Index] = make(map[string]map[string]any)
		}
		base := f.pending[op.Index][op.ID]
		if base == nil {
			if existing, ok := f.visible[op.Index][op.ID]; ok {
				base = cloneSource(existing)
			} else if !op.Update.DocAsUpsert && op.Update.Upsert != nil {
				base = cloneSource(op.Update.Upsert)
			} else {
				base = make(map[string]any)
			}
		}
		for k, v := range op.Update.Doc {
			base[k] = v
		}
		f.pending[op.Index][op.ID] = base
	}
	return failed, nil
}

func (f *fakeClient) DeleteDocument(ctx context.Context, index, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.visible[index], id)
	delete(f.pending[index], id)
	return nil
}

func (f *fakeClient) RefreshIndex(ctx context.Context, index string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.visible[index] == nil {
		f.visible[index] = make(map[string]map[string]any)
	}
	for id, source := range f.pending[index] {
		f.visible[index][id] = source
	}
	delete(f.pending, index)
	return nil
}

func (f *fakeClient) CountAll(ctx context.Context, index string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.visible[index])), nil
}

func cloneSource(source map[string]any) map[string]any {
	clone := make(map[string]any, len(source))
	for k, v := range source {
		clone[k] = v
	}
	return clone
}
