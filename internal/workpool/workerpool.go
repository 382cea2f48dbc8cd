package workpool

import (
	"context"
	"fmt"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/channels"
	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
)

const requestTimeout = 30 * time.Second

type WorkerPool struct {
	WorkerCount int
	Channels    *channels.Channels
}

func New(channels *channels.Channels, workerCount int) *WorkerPool {
	return &WorkerPool{
		WorkerCount: workerCount,
		Channels:    channels,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.WorkerCount; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	logger.Debug("Worker %d started.", id)
	for req := range wp.Channels.DataRequest {
		err := wp.process(ctx, id, req)
		if req.Done != nil {
			req.Done(err)
		}
		wp.Channels.WG.Done()
	}

	logger.Debug("Worker %d stopped.", id)
}

func (wp *WorkerPool) process(ctx context.Context, id int, req models.DataRequest) error {
	opCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	logger.Debug("[%s] Worker %d processing request for ID: %s", req.Service, id, req.ID)

	// 1. Fetch Data
	data, err := req.FetchFunc(opCtx, req.ID)
	if err != nil {
		logger.Error("[%s] Worker %d failed to fetch data for %s: %v", req.Service, id, req.ID, err)
		return fmt.Errorf("fetch %s: %w", req.ID, err)
	}

	// 2. Parse Data
	parsedData, err := req.ParseFunc(data)
	if err != nil {
		logger.Error("[%s] Worker %d failed to parse data for %s: %v", req.Service, id, req.ID, err)
		return fmt.Errorf("parse %s: %w", req.ID, err)
	}

	// 3. Store Data
	if err := req.StoreFunc(opCtx, parsedData); err != nil {
		logger.Error("[%s] Worker %d failed to store data for %s: %v", req.Service, id, req.ID, err)
		return fmt.Errorf("store %s: %w", req.ID, err)
	}

	logger.Debug("[%s] Worker %d successfully completed request for ID: %s", req.Service, id, req.ID)
	return nil
}

func (wp *WorkerPool) Stop() {
	close(wp.Channels.DataRequest)
}
