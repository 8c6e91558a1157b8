package executor

import (
	"context"
	"errors"
	"testing"

	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/tabular"
)

func TestGatherAssemblesOneFragmentPerSymbol(t *testing.T) {
	be := NewBoundedExecutor(4)
	results, err := Gather(context.Background(), be, []string{"x", "y"},
		func(ctx context.Context, symbol string) (*tabular.TabularDataResult, error) {
			return tabular.New(nil, []tabular.Row{{XAxis: symbol, Value: 1}}), nil
		})
	if err != nil {
		t.Fatal(err)
	}
	for _, sym := range []string{"x", "y"} {
		frag, ok := results.Get(sym)
		if !ok || len(frag.Rows) != 1 {
			t.Fatalf("expected a fragment for symbol %s, got %v", sym, frag)
		}
	}
	be.Shutdown()
}

func TestGatherPropagatesAJobFailure(t *testing.T) {
	be := NewBoundedExecutor(4)
	boom := errors.New("warehouse exploded")
	_, err := Gather(context.Background(), be, []string{"x", "y"},
		func(ctx context.Context, symbol string) (*tabular.TabularDataResult, error) {
			if symbol == "y" {
				return nil, boom
			}
			return tabular.New(nil, nil), nil
		})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the job failure to propagate, got %v", err)
	}
	be.Shutdown()
}

func TestGatherRejectsWhenPoolSaturatedBeforeAllSubmitted(t *testing.T) {
	be := NewBoundedExecutor(1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = be.Submit(context.Background(), func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	_, err := Gather(context.Background(), be, []string{"x"},
		func(ctx context.Context, symbol string) (*tabular.TabularDataResult, error) {
			return tabular.New(nil, nil), nil
		})
	if !errors.Is(err, apperrors.ErrTooManyRequests) {
		t.Fatalf("expected ErrTooManyRequests, got %v", err)
	}
	close(release)
	be.Shutdown()
}
