package report

import (
	"context"
	"sync"
)

// Report count bounds for one analysis request.
const (
	minReports = 1
	maxReports = 10
)

// clampCount forces a requested report count into [minReports, maxReports].
// Out-of-range requests are clamped rather than rejected.
func clampCount(n int) int {
	if n < minReports {
		return minReports
	}
	if n > maxReports {
		return maxReports
	}
	return n
}

// generated is the output of one generation attempt.
type generated struct {
	canonical []byte
	err       error
}

// generateAll runs count generation+extraction attempts concurrently over
// the same transcript. Results keep submission order. The batch is
// all-or-nothing: the first failed attempt, in submission order, fails the
// whole call and no partial results are returned.
func (s *Service) generateAll(ctx context.Context, transcript, promptName string, count int) ([][]byte, error) {
	results := make([]generated, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, err := s.generator.Generate(ctx, transcript, promptName)
			if err != nil {
				results[i] = generated{err: err}
				return
			}
			canonical, _, err := extractCanonical(raw)
			results[i] = generated{canonical: canonical, err: err}
		}(i)
	}
	wg.Wait()

	out := make([][]byte, count)
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out[i] = r.canonical
	}
	return out, nil
}
