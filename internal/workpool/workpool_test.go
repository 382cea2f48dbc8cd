package workpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/channels"
	"github.com/AbdulWasayUl/go-athan-clock/internal/workpool"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for jobs to complete")
	}
}

func TestWorkerPool_New(t *testing.T) {
	ch := channels.New()

	wp := workpool.New(ch, 3)

	require.NotNil(t, wp)
	assert.Equal(t, 3, wp.WorkerCount)
	assert.Same(t, ch, wp.Channels)
}

func TestWorkerPool_SingleJob(t *testing.T) {
	ch := channels.New()
	wp := workpool.New(ch, 1)
	wp.Start(context.Background())
	defer wp.Stop()

	var stored interface{}
	var doneErr error
	var steps atomic.Int32

	ch.Submit(models.DataRequest{
		Service: "geonames",
		ID:      "41.9,12.5",
		FetchFunc: func(ctx context.Context, id string) ([]byte, error) {
			steps.Add(1)
			return []byte(id), nil
		},
		ParseFunc: func(data []byte) (interface{}, error) {
			steps.Add(1)
			return "parsed:" + string(data), nil
		},
		StoreFunc: func(ctx context.Context, d interface{}) error {
			steps.Add(1)
			stored = d
			return nil
		},
		Done: func(err error) {
			doneErr = err
		},
	})

	waitFor(t, ch.WG)

	assert.Equal(t, int32(3), steps.Load())
	assert.Equal(t, "parsed:41.9,12.5", stored)
	assert.NoError(t, doneErr)
}

func TestWorkerPool_MultipleJobs(t *testing.T) {
	ch := channels.New()
	wp := workpool.New(ch, 2)
	wp.Start(context.Background())
	defer wp.Stop()

	var completed atomic.Int32
	numJobs := 5
	for i := 0; i < numJobs; i++ {
		ch.Submit(models.DataRequest{
			ID: "job",
			FetchFunc: func(ctx context.Context, id string) ([]byte, error) {
				return []byte("data"), nil
			},
			ParseFunc: func(data []byte) (interface{}, error) {
				return "result", nil
			},
			StoreFunc: func(ctx context.Context, d interface{}) error {
				completed.Add(1)
				return nil
			},
		})
	}

	waitFor(t, ch.WG)

	assert.Equal(t, int32(numJobs), completed.Load())
}

func TestWorkerPool_Errors(t *testing.T) {
	failure := errors.New("boom")

	tests := []struct {
		name        string
		fetchErr    error
		parseErr    error
		storeErr    error
		wantParse   bool
		wantStore   bool
		wantMessage string
	}{
		{name: "fetch error stops pipeline", fetchErr: failure, wantMessage: "fetch"},
		{name: "parse error skips store", parseErr: failure, wantParse: true, wantMessage: "parse"},
		{name: "store error is reported", storeErr: failure, wantParse: true, wantStore: true, wantMessage: "store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := channels.New()
			wp := workpool.New(ch, 1)
			wp.Start(context.Background())
			defer wp.Stop()

			var parseCalled, storeCalled atomic.Bool
			var doneErr error

			ch.Submit(models.DataRequest{
				ID: "test",
				FetchFunc: func(ctx context.Context, id string) ([]byte, error) {
					return []byte("data"), tt.fetchErr
				},
				ParseFunc: func(data []byte) (interface{}, error) {
					parseCalled.Store(true)
					return nil, tt.parseErr
				},
				StoreFunc: func(ctx context.Context, d interface{}) error {
					storeCalled.Store(true)
					return tt.storeErr
				},
				Done: func(err error) {
					doneErr = err
				},
			})

			waitFor(t, ch.WG)

			assert.Equal(t, tt.wantParse, parseCalled.Load())
			assert.Equal(t, tt.wantStore, storeCalled.Load())
			require.Error(t, doneErr)
			assert.ErrorIs(t, doneErr, failure)
			assert.Contains(t, doneErr.Error(), tt.wantMessage)
		})
	}
}

func TestWorkerPool_UsesCallerContext(t *testing.T) {
	ch := channels.New()
	wp := workpool.New(ch, 1)

	ctx, cancel := context.WithCancel(context.Background())
	wp.Start(ctx)
	defer wp.Stop()
	cancel()

	var doneErr error
	ch.Submit(models.DataRequest{
		ID: "cancelled",
		FetchFunc: func(ctx context.Context, id string) ([]byte, error) {
			return nil, ctx.Err()
		},
		ParseFunc: func(data []byte) (interface{}, error) { return nil, nil },
		StoreFunc: func(ctx context.Context, d interface{}) error { return nil },
		Done:      func(err error) { doneErr = err },
	})

	waitFor(t, ch.WG)

	assert.ErrorIs(t, doneErr, context.Canceled)
}
