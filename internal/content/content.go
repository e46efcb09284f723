// Package content loads the articles the radar is built from and applies the
// type filter and date ordering the radar relies on.
package content

import (
	"context"
	"sort"
	"sync"
)

type FetchResult struct {
	Records []Record
	Errors  []error
	// Batches holds one entry per source that fetched successfully, in source order.
	Batches []Batch
}

// Batch is the full output of one successful source fetch.
type Batch struct {
	Source   string
	Complete bool
	Records  []Record
}

// FetchAll queries every source concurrently. A failing source is reported in
// Errors and does not stop the others. Records are merged in source order.
func FetchAll(ctx context.Context, sources []Source) FetchResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		batches = make([]*Batch, len(sources))
		result  FetchResult
	)

	for i, src := range sources {
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()
			records, err := s.Fetch(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			batches[i] = &Batch{Source: s.Name(), Complete: IsComplete(s), Records: records}
		}(i, src)
	}

	wg.Wait()
	for _, b := range batches {
		if b == nil {
			continue
		}
		result.Batches = append(result.Batches, *b)
		result.Records = append(result.Records, b.Records...)
	}
	return result
}

// Select keeps records of the given type and orders them newest first.
// Records with equal dates keep their relative order.
func Select(records []Record, contentType string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Type == contentType {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
