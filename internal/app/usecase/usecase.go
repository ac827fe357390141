package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/supchaser/pdftoxl/internal/app"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/config"
	"github.com/supchaser/pdftoxl/internal/utils/errs"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"github.com/supchaser/pdftoxl/internal/utils/validate"
	"go.uber.org/zap"
)

type Options struct {
	Retry           RetryPolicy
	FileCooldown    time.Duration
	SuccessDwell    time.Duration
	DefaultFilename string
	MaxFileSize     int64
	StrictPDF       bool
	HealthCheck     bool
	// Sleep replaces the timer used for backoff, cooldown and dwell waits.
	Sleep SleepFunc
}

func DefaultOptions() Options {
	return Options{
		Retry:           DefaultRetryPolicy(),
		FileCooldown:    2500 * time.Millisecond,
		SuccessDwell:    3 * time.Second,
		DefaultFilename: DefaultFilename,
		MaxFileSize:     50 << 20,
		HealthCheck:     true,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Retry: RetryPolicy{
			MaxAttempts:             cfg.MaxAttempts,
			BaseDelay:               cfg.BackoffBase,
			ConnectivityMaxAttempts: cfg.ConnectivityMaxAttempts,
			ConnectivityBaseDelay:   cfg.ConnectivityBackoffBase,
		},
		FileCooldown:    cfg.FileCooldown,
		SuccessDwell:    cfg.SuccessDwell,
		DefaultFilename: cfg.DefaultFilename,
		MaxFileSize:     cfg.MaxFileSize,
		StrictPDF:       cfg.StrictPDFCheck,
		HealthCheck:     cfg.HealthCheck,
	}
}

// BatchUsecase drives batches: files are processed strictly one after
// another and every file ends in exactly one recorded outcome.
type BatchUsecase struct {
	batchRepository      app.BatchRepository
	extractionRepository app.ExtractionRepository
	storage              app.ResultStorage
	extractor            *Extractor
	status               *StatusTracker
	opts                 Options

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func CreateBatchUsecase(
	batchRepository app.BatchRepository,
	extractionRepository app.ExtractionRepository,
	storage app.ResultStorage,
	opts Options,
) *BatchUsecase {
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	materializer := CreateMaterializer(storage, opts.DefaultFilename)

	return &BatchUsecase{
		batchRepository:      batchRepository,
		extractionRepository: extractionRepository,
		storage:              storage,
		extractor:            CreateExtractor(extractionRepository, materializer, opts.Retry, opts.Sleep),
		status:               CreateStatusTracker(),
		opts:                 opts,
		cancels:              make(map[string]context.CancelFunc),
	}
}

// StartBatch registers the batch and processes it in the background. The
// batch outlives ctx; use CancelBatch to stop it.
func (u *BatchUsecase) StartBatch(ctx context.Context, templateID models.TemplateID, files []models.InputFile) (*models.Batch, error) {
	const funcName = "BatchUsecase.StartBatch"

	batch, batchCtx, err := u.prepareBatch(context.WithoutCancel(ctx), templateID, files)
	if err != nil {
		logger.Warn("batch rejected",
			zap.String("function", funcName),
			zap.Int("files_count", len(files)),
			zap.Error(err),
		)
		return nil, err
	}

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.processBatch(batchCtx, batch.ID, templateID, files)
	}()

	return batch, nil
}

// RunBatch processes the batch on the calling goroutine and returns it with
// all outcomes. Canceling ctx cancels the batch.
func (u *BatchUsecase) RunBatch(ctx context.Context, templateID models.TemplateID, files []models.InputFile) (*models.Batch, error) {
	const funcName = "BatchUsecase.RunBatch"

	batch, batchCtx, err := u.prepareBatch(ctx, templateID, files)
	if err != nil {
		logger.Warn("batch rejected",
			zap.String("function", funcName),
			zap.Int("files_count", len(files)),
			zap.Error(err),
		)
		return nil, err
	}

	u.processBatch(batchCtx, batch.ID, templateID, files)

	return u.batchRepository.GetBatch(context.WithoutCancel(ctx), batch.ID)
}

func (u *BatchUsecase) prepareBatch(parent context.Context, templateID models.TemplateID, files []models.InputFile) (*models.Batch, context.Context, error) {
	if len(files) == 0 {
		u.reject(errs.ErrNoFiles)
		return nil, nil, errs.ErrNoFiles
	}

	if err := validate.ValidateTemplateID(templateID); err != nil {
		u.reject(err)
		return nil, nil, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	batch, err := u.batchRepository.CreateBatch(parent, templateID, names)
	if err != nil {
		return nil, nil, err
	}

	batchCtx, cancel := context.WithCancel(parent)
	u.mu.Lock()
	u.cancels[batch.ID] = cancel
	u.mu.Unlock()

	return batch, batchCtx, nil
}

// reject reports a refused request through the status slot unless a batch
// is running; the running batch owns the slot.
func (u *BatchUsecase) reject(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.cancels) > 0 {
		return
	}
	u.status.Set(models.BatchStatus{Kind: models.StatusError, Message: err.Error()})
}

type progress struct {
	batchID string
	index   int
	count   int
	file    string
}

func (p progress) status(kind models.StatusKind, attempt int, message string) models.BatchStatus {
	return models.BatchStatus{
		Kind:      kind,
		Attempt:   attempt,
		Message:   message,
		BatchID:   p.batchID,
		File:      p.file,
		FileIndex: p.index + 1,
		FileCount: p.count,
	}
}

func (u *BatchUsecase) processBatch(ctx context.Context, batchID string, templateID models.TemplateID, files []models.InputFile) {
	const funcName = "BatchUsecase.processBatch"
	logger.Info("starting batch processing",
		zap.String("function", funcName),
		zap.String("batch_id", batchID),
		zap.String("template_id", string(templateID)),
		zap.Int("files_count", len(files)),
	)

	// Repository writes must survive cancellation of the batch itself.
	recordCtx := context.WithoutCancel(ctx)
	state := models.BatchDone

	defer func() {
		u.mu.Lock()
		if cancel, ok := u.cancels[batchID]; ok {
			cancel()
			delete(u.cancels, batchID)
		}
		u.mu.Unlock()

		if err := u.batchRepository.FinishBatch(recordCtx, batchID, state); err != nil {
			logger.Error("failed to finish batch",
				zap.String("function", funcName),
				zap.String("batch_id", batchID),
				zap.Error(err),
			)
		}
	}()

	if u.opts.HealthCheck {
		if err := u.extractionRepository.Health(ctx); err != nil {
			reason := errs.ErrServiceUnavailable.Error()
			logger.Error("extraction service is not ready",
				zap.String("function", funcName),
				zap.String("batch_id", batchID),
				zap.Error(err),
			)
			kind := errs.KindConnectivity
			if ctx.Err() != nil {
				kind, reason, state = errs.KindCanceled, errs.ErrCanceled.Error(), models.BatchCanceled
			}
			u.skipRemaining(recordCtx, batchID, files, 0, kind, reason)
			u.status.Set(models.BatchStatus{Kind: models.StatusError, Message: reason, BatchID: batchID})
			return
		}
	}

	var last *models.Outcome
	for i, file := range files {
		p := progress{batchID: batchID, index: i, count: len(files), file: file.Name}

		if i > 0 {
			if err := u.opts.Sleep(ctx, u.opts.FileCooldown); err != nil {
				state = models.BatchCanceled
				u.skipRemaining(recordCtx, batchID, files, i, errs.KindCanceled, errs.ErrCanceled.Error())
				break
			}
		}

		u.status.Set(p.status(models.StatusUploading, 0, ""))

		outcome := u.processFile(ctx, p, templateID, file)
		if err := u.batchRepository.RecordOutcome(recordCtx, batchID, outcome); err != nil {
			logger.Error("failed to record outcome",
				zap.String("function", funcName),
				zap.String("batch_id", batchID),
				zap.String("file", file.Name),
				zap.Error(err),
			)
		}
		last = outcome

		if outcome.Succeeded() {
			u.status.Set(p.status(models.StatusSuccess, 0, fmt.Sprintf("saved %s", outcome.SavedAs)))
			continue
		}

		u.status.Set(p.status(models.StatusError, 0, fmt.Sprintf("%s: %s", file.Name, outcome.Reason)))
		if outcome.FailureKind == errs.KindCanceled {
			state = models.BatchCanceled
			u.skipRemaining(recordCtx, batchID, files, i+1, errs.KindCanceled, errs.ErrCanceled.Error())
			break
		}
	}

	if state == models.BatchCanceled {
		u.status.Set(models.BatchStatus{Kind: models.StatusError, Message: errs.ErrCanceled.Error(), BatchID: batchID})
		logger.Warn("batch canceled",
			zap.String("function", funcName),
			zap.String("batch_id", batchID),
		)
		return
	}

	if last.Succeeded() {
		if err := u.opts.Sleep(ctx, u.opts.SuccessDwell); err != nil {
			logger.Debug("success dwell interrupted",
				zap.String("function", funcName),
				zap.String("batch_id", batchID),
			)
		}
		u.status.Set(models.BatchStatus{Kind: models.StatusIdle})
	}

	logger.Info("batch processed",
		zap.String("function", funcName),
		zap.String("batch_id", batchID),
		zap.Int("files_count", len(files)),
	)
}

func (u *BatchUsecase) processFile(ctx context.Context, p progress, templateID models.TemplateID, file models.InputFile) *models.Outcome {
	const funcName = "BatchUsecase.processFile"

	if err := validate.ValidatePDF(file, u.opts.MaxFileSize, u.opts.StrictPDF); err != nil {
		logger.Warn("skipping invalid input file",
			zap.String("function", funcName),
			zap.String("batch_id", p.batchID),
			zap.String("file", file.Name),
			zap.Error(err),
		)
		return &models.Outcome{
			Kind:        models.OutcomeTerminalFailure,
			File:        file.Name,
			Reason:      err.Error(),
			FailureKind: errs.KindValidation,
			FinishedAt:  time.Now(),
		}
	}

	hooks := AttemptHooks{
		OnAttempt: func(attempt int) {
			u.status.Set(p.status(models.StatusExtracting, attempt+1, ""))
		},
		OnRetry: func(outcome models.Outcome, backoff time.Duration) {
			u.status.Set(p.status(models.StatusExtracting, outcome.Attempts,
				fmt.Sprintf("attempt %d failed, retrying in %s: %s", outcome.Attempts, backoff, outcome.Reason)))
		},
		OnDownload: func() {
			u.status.Set(p.status(models.StatusDownloading, 0, ""))
		},
	}

	return u.extractor.Extract(ctx, models.ExtractionRequest{File: file, TemplateID: templateID}, hooks)
}

func (u *BatchUsecase) skipRemaining(ctx context.Context, batchID string, files []models.InputFile, from int, kind errs.Kind, reason string) {
	for _, f := range files[from:] {
		outcome := &models.Outcome{
			Kind:        models.OutcomeTerminalFailure,
			File:        f.Name,
			Reason:      reason,
			FailureKind: kind,
			FinishedAt:  time.Now(),
		}
		if err := u.batchRepository.RecordOutcome(ctx, batchID, outcome); err != nil {
			logger.Error("failed to record skipped file",
				zap.String("function", "BatchUsecase.skipRemaining"),
				zap.String("batch_id", batchID),
				zap.String("file", f.Name),
				zap.Error(err),
			)
		}
	}
}

func (u *BatchUsecase) CancelBatch(ctx context.Context, id string) error {
	const funcName = "BatchUsecase.CancelBatch"

	u.mu.Lock()
	cancel, running := u.cancels[id]
	u.mu.Unlock()

	if !running {
		if _, err := u.batchRepository.GetBatch(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", errs.ErrBatchNotRunning, id)
	}

	cancel()
	logger.Info("batch cancellation requested",
		zap.String("function", funcName),
		zap.String("batch_id", id),
	)
	return nil
}

// Wait blocks until every batch started with StartBatch has finished.
func (u *BatchUsecase) Wait() {
	u.wg.Wait()
}

// Shutdown cancels every running batch and waits for them to wind down.
func (u *BatchUsecase) Shutdown(ctx context.Context) error {
	u.mu.Lock()
	for _, cancel := range u.cancels {
		cancel()
	}
	u.mu.Unlock()

	done := make(chan struct{})
	go func() {
		u.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *BatchUsecase) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	const funcName = "BatchUsecase.GetBatch"
	logger.Debug("getting batch",
		zap.String("function", funcName),
		zap.String("batch_id", id),
	)

	batch, err := u.batchRepository.GetBatch(ctx, id)
	if err != nil {
		logger.Error("failed to get batch",
			zap.String("function", funcName),
			zap.String("batch_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	return batch, nil
}

func (u *BatchUsecase) GetAllBatches(ctx context.Context) ([]*models.Batch, error) {
	const funcName = "BatchUsecase.GetAllBatches"

	batches, err := u.batchRepository.GetAllBatches(ctx)
	if err != nil {
		logger.Error("failed to get all batches",
			zap.String("function", funcName),
			zap.Error(err),
		)
		return nil, err
	}

	return batches, nil
}

func (u *BatchUsecase) Status() models.BatchStatus {
	return u.status.Snapshot()
}

func (u *BatchUsecase) Subscribe(ctx context.Context) <-chan models.BatchStatus {
	return u.status.Subscribe(ctx)
}

func (u *BatchUsecase) CheckHealth(ctx context.Context) error {
	if err := u.extractionRepository.Health(ctx); err != nil {
		if errors.Is(err, errs.ErrServiceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", errs.ErrServiceUnavailable, err)
	}
	return nil
}

func (u *BatchUsecase) ResultPath(name string) (string, error) {
	return u.storage.Path(name)
}
