package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/utils/errs"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"go.uber.org/zap"
)

// maxActiveBatches keeps a single extraction request in flight process-wide.
const maxActiveBatches = 1

type BatchRepository struct {
	batches       map[string]*models.Batch
	activeBatches int
	mu            sync.Mutex
	now           func() time.Time
}

func CreateBatchRepository() *BatchRepository {
	return &BatchRepository{
		batches: make(map[string]*models.Batch),
		now:     time.Now,
	}
}

func (r *BatchRepository) CreateBatch(ctx context.Context, templateID models.TemplateID, files []string) (*models.Batch, error) {
	const funcName = "BatchRepository.CreateBatch"
	logger.Debug("attempting to create batch",
		zap.String("function", funcName),
		zap.String("template_id", string(templateID)),
		zap.Int("files_count", len(files)),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeBatches >= maxActiveBatches {
		logger.Warn("batch already in progress",
			zap.String("function", funcName),
			zap.Int("active_batches", r.activeBatches),
		)
		return nil, fmt.Errorf("%w: active %d", errs.ErrBatchInProgress, r.activeBatches)
	}

	batch := &models.Batch{
		ID:         uuid.NewString(),
		TemplateID: templateID,
		State:      models.BatchRunning,
		Files:      append([]string(nil), files...),
		Outcomes:   make([]*models.Outcome, 0, len(files)),
		CreatedAt:  r.now(),
	}

	r.batches[batch.ID] = batch
	r.activeBatches++

	logger.Info("batch created successfully",
		zap.String("function", funcName),
		zap.String("batch_id", batch.ID),
		zap.Int("files_count", len(files)),
	)

	return copyBatch(batch), nil
}

func (r *BatchRepository) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	const funcName = "BatchRepository.GetBatch"
	logger.Debug("attempting to get batch",
		zap.String("function", funcName),
		zap.String("batch_id", id),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	batch, exists := r.batches[id]
	if !exists {
		logger.Warn("batch not found",
			zap.String("function", funcName),
			zap.String("batch_id", id),
		)
		return nil, errs.ErrBatchNotFound
	}

	return copyBatch(batch), nil
}

func (r *BatchRepository) RecordOutcome(ctx context.Context, id string, outcome *models.Outcome) error {
	const funcName = "BatchRepository.RecordOutcome"

	r.mu.Lock()
	defer r.mu.Unlock()

	batch, exists := r.batches[id]
	if !exists {
		logger.Warn("batch not found when recording outcome",
			zap.String("function", funcName),
			zap.String("batch_id", id),
		)
		return errs.ErrBatchNotFound
	}

	o := *outcome
	batch.Outcomes = append(batch.Outcomes, &o)

	logger.Debug("outcome recorded",
		zap.String("function", funcName),
		zap.String("batch_id", id),
		zap.String("file", outcome.File),
		zap.String("kind", string(outcome.Kind)),
		zap.Int("recorded", len(batch.Outcomes)),
		zap.Int("total", len(batch.Files)),
	)

	return nil
}

func (r *BatchRepository) FinishBatch(ctx context.Context, id string, state models.BatchState) error {
	const funcName = "BatchRepository.FinishBatch"
	logger.Debug("attempting to finish batch",
		zap.String("function", funcName),
		zap.String("batch_id", id),
		zap.String("state", string(state)),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	batch, exists := r.batches[id]
	if !exists {
		logger.Warn("batch not found when finishing",
			zap.String("function", funcName),
			zap.String("batch_id", id),
		)
		return errs.ErrBatchNotFound
	}

	if batch.State != models.BatchRunning {
		return fmt.Errorf("%w: %s is %s", errs.ErrBatchNotRunning, id, batch.State)
	}

	finishedAt := r.now()
	batch.State = state
	batch.FinishedAt = &finishedAt
	r.activeBatches--

	logger.Info("batch finished",
		zap.String("function", funcName),
		zap.String("batch_id", id),
		zap.String("state", string(state)),
		zap.Int("succeeded", batch.Succeeded()),
		zap.Int("total", len(batch.Files)),
	)

	return nil
}

func (r *BatchRepository) GetAllBatches(ctx context.Context) ([]*models.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batches := make([]*models.Batch, 0, len(r.batches))
	for _, batch := range r.batches {
		batches = append(batches, copyBatch(batch))
	}
	sort.Slice(batches, func(i, j int) bool {
		return batches[i].CreatedAt.Before(batches[j].CreatedAt)
	})

	return batches, nil
}

func (r *BatchRepository) GetActiveBatchesCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.activeBatches
}

func copyBatch(b *models.Batch) *models.Batch {
	c := *b
	c.Files = append([]string(nil), b.Files...)
	c.Outcomes = append([]*models.Outcome(nil), b.Outcomes...)
	if b.FinishedAt != nil {
		t := *b.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
