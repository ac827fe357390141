package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/supchaser/pdftoxl/internal/app"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/utils/errs"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"go.uber.org/zap"
)

type SleepFunc func(ctx context.Context, d time.Duration) error

// AttemptHooks let the caller follow the progress of one extraction.
type AttemptHooks struct {
	OnAttempt func(attempt int)
	// OnRetry receives the retryable failure of the last attempt before the
	// backoff wait starts.
	OnRetry    func(outcome models.Outcome, backoff time.Duration)
	OnDownload func()
}

// Extractor runs the bounded retry loop for a single file.
type Extractor struct {
	extractionRepository app.ExtractionRepository
	materializer         *Materializer
	policy               RetryPolicy
	sleep                SleepFunc
	now                  func() time.Time
}

func CreateExtractor(extractionRepository app.ExtractionRepository, materializer *Materializer, policy RetryPolicy, sleep SleepFunc) *Extractor {
	if sleep == nil {
		sleep = sleepContext
	}
	return &Extractor{
		extractionRepository: extractionRepository,
		materializer:         materializer,
		policy:               policy,
		sleep:                sleep,
		now:                  time.Now,
	}
}

// Extract submits req until it succeeds, fails permanently or runs out of
// attempts. It always returns a terminal outcome.
func (e *Extractor) Extract(ctx context.Context, req models.ExtractionRequest, hooks AttemptHooks) *models.Outcome {
	const funcName = "Extractor.Extract"
	outcome := &models.Outcome{File: req.File.Name}

	for attempt := 0; ; attempt++ {
		if hooks.OnAttempt != nil {
			hooks.OnAttempt(attempt)
		}
		outcome.Attempts = attempt + 1

		resp, err := e.submit(ctx, req)
		if err == nil {
			if hooks.OnDownload != nil {
				hooks.OnDownload()
			}
			return e.materialize(ctx, outcome, resp)
		}

		var failure *errs.ExtractionError
		if !errors.As(err, &failure) {
			failure = &errs.ExtractionError{Kind: errs.KindOf(err), Reason: err.Error(), Err: err}
		}
		kind := failure.Kind
		budget := e.policy.Attempts(kind)
		logger.Warn("extraction attempt failed",
			zap.String("function", funcName),
			zap.String("file", req.File.Name),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", budget),
			zap.Boolp("service_retryable", failure.Retryable),
			zap.Error(err),
		)

		if !Retryable(kind) || attempt+1 >= budget {
			return e.terminal(outcome, err)
		}

		delay := e.policy.Delay(kind, attempt)
		outcome.Backoffs = append(outcome.Backoffs, delay)
		if hooks.OnRetry != nil {
			retry := *outcome
			retry.Kind = models.OutcomeRetryableFailure
			retry.FailureKind = kind
			retry.StatusCode = failure.StatusCode
			retry.Reason = failure.Reason
			hooks.OnRetry(retry, delay)
		}
		logger.Info("retrying extraction",
			zap.String("function", funcName),
			zap.String("file", req.File.Name),
			zap.Int("next_attempt", attempt+2),
			zap.Duration("backoff", delay),
		)

		if err := e.sleep(ctx, delay); err != nil {
			return e.terminal(outcome, canceledError(err))
		}
	}
}

// submit makes one call. Every failure is returned as an *errs.ExtractionError.
func (e *Extractor) submit(ctx context.Context, req models.ExtractionRequest) (*models.ServiceResponse, error) {
	resp, err := e.extractionRepository.Extract(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, canceledError(ctx.Err())
		}
		if errors.Is(err, errs.ErrResponseTooLarge) {
			return nil, &errs.ExtractionError{
				Kind:   errs.KindPermanent,
				Reason: err.Error(),
				Err:    err,
			}
		}
		reason := err.Error()
		if !errors.Is(err, errs.ErrServiceUnreachable) {
			reason = fmt.Sprintf("%s: %v", errs.ErrServiceUnreachable, err)
		}
		return nil, &errs.ExtractionError{
			Kind:   errs.KindConnectivity,
			Reason: reason,
			Err:    err,
		}
	}

	if resp.StatusCode/100 != 2 {
		reason, hint := parseErrorBody(resp.Body)
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, &errs.ExtractionError{
			Kind:       ClassifyServiceFailure(resp.StatusCode, reason, hint),
			StatusCode: resp.StatusCode,
			Reason:     reason,
			Retryable:  hint,
		}
	}

	if len(resp.Body) == 0 {
		return nil, &errs.ExtractionError{
			Kind:       errs.KindEmptyResult,
			StatusCode: resp.StatusCode,
			Reason:     errs.ErrEmptyOutput.Error(),
			Err:        errs.ErrEmptyOutput,
		}
	}

	return resp, nil
}

func (e *Extractor) materialize(ctx context.Context, outcome *models.Outcome, resp *models.ServiceResponse) *models.Outcome {
	saved, err := e.materializer.Materialize(ctx, resp)
	if err != nil {
		var failure error = &errs.ExtractionError{
			Kind:   errs.KindMaterialization,
			Reason: err.Error(),
			Err:    err,
		}
		if ctx.Err() != nil {
			failure = canceledError(ctx.Err())
		}
		return e.terminal(outcome, failure)
	}

	outcome.Kind = models.OutcomeSuccess
	outcome.StatusCode = resp.StatusCode
	outcome.SavedAs = saved.Name
	outcome.Path = saved.Path
	outcome.Size = saved.Size
	outcome.Workbook = saved.Workbook
	outcome.FinishedAt = e.now()

	logger.Info("file extracted",
		zap.String("function", "Extractor.materialize"),
		zap.String("file", outcome.File),
		zap.String("saved_as", outcome.SavedAs),
		zap.Int("bytes", outcome.Size),
		zap.Int("attempts", outcome.Attempts),
	)

	return outcome
}

func (e *Extractor) terminal(outcome *models.Outcome, err error) *models.Outcome {
	outcome.Kind = models.OutcomeTerminalFailure
	outcome.FailureKind = errs.KindOf(err)
	outcome.Reason = err.Error()

	var failure *errs.ExtractionError
	if errors.As(err, &failure) {
		outcome.StatusCode = failure.StatusCode
		outcome.Reason = failure.Reason
	}
	outcome.FinishedAt = e.now()
	return outcome
}

func canceledError(err error) *errs.ExtractionError {
	return &errs.ExtractionError{
		Kind:   errs.KindCanceled,
		Reason: errs.ErrCanceled.Error(),
		Err:    errors.Join(errs.ErrCanceled, err),
	}
}

// parseErrorBody reads {"detail": ..., "retryable": ...}. detail may be a
// string or a list of {"msg": ...} objects.
func parseErrorBody(body []byte) (string, *bool) {
	var parsed struct {
		Detail    json.RawMessage `json:"detail"`
		Retryable *bool           `json:"retryable"`
	}
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil {
		return "", nil
	}

	if len(parsed.Detail) == 0 {
		return "", parsed.Retryable
	}

	var text string
	if err := json.Unmarshal(parsed.Detail, &text); err == nil {
		return strings.TrimSpace(text), parsed.Retryable
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(parsed.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; "), parsed.Retryable
	}

	return string(parsed.Detail), parsed.Retryable
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
