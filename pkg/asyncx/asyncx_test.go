package asyncx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/grovekeep/grove/pkg/asyncx"
)

func TestAllSettledPreservesOrder(t *testing.T) {
	results := asyncx.AllSettled(context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 0, errors.New("boom") },
		func(ctx context.Context) (int, error) { return 3, nil },
	)

	if len(results) != 3 {
		t.Fatalf("expected three results, got %d", len(results))
	}
	if !results[0].OK() || results[0].Value != 1 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].OK() {
		t.Error("expected second result to carry the error")
	}
	if !results[2].OK() || results[2].Value != 3 {
		t.Errorf("unexpected third result: %+v", results[2])
	}
}

func TestPoolSettledRunsEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	results := asyncx.PoolSettled(context.Background(), 3, items,
		func(ctx context.Context, n int) (int, error) {
			if n%2 == 0 {
				return 0, errors.New("even")
			}
			return n * 10, nil
		})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if items[i]%2 == 0 {
			if r.OK() {
				t.Errorf("item %d should have failed", items[i])
			}
			continue
		}
		if !r.OK() || r.Value != items[i]*10 {
			t.Errorf("item %d: unexpected result %+v", items[i], r)
		}
	}
}

func TestPoolSettledEmptyInput(t *testing.T) {
	results := asyncx.PoolSettled(context.Background(), 4, nil,
		func(ctx context.Context, n int) (int, error) { return n, nil })
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
