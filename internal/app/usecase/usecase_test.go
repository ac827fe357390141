package usecase

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mock_app "github.com/supchaser/pdftoxl/internal/app/mocks"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/app/repository"
	"github.com/supchaser/pdftoxl/internal/utils/errs"
)

const (
	cooldown = 2500 * time.Millisecond
	dwell    = 3 * time.Second
)

type batchFixture struct {
	uc      *BatchUsecase
	repo    *mock_app.MockExtractionRepository
	sleeper *sleepRecorder
	outDir  string
}

func newBatchFixture(t *testing.T, ctrl *gomock.Controller, healthCheck bool) *batchFixture {
	t.Helper()

	outDir := t.TempDir()
	sleeper := &sleepRecorder{}
	repo := mock_app.NewMockExtractionRepository(ctrl)

	opts := DefaultOptions()
	opts.HealthCheck = healthCheck
	opts.Sleep = sleeper.Sleep

	uc := CreateBatchUsecase(repository.CreateBatchRepository(), repo, repository.CreateFileStorage(outDir), opts)
	return &batchFixture{uc: uc, repo: repo, sleeper: sleeper, outDir: outDir}
}

func TestBatchUsecase_EmptyFileList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, true)

	batch, err := fx.uc.RunBatch(context.Background(), models.TemplateFundReport, nil)

	assert.Nil(t, batch)
	assert.ErrorIs(t, err, errs.ErrNoFiles)
	status := fx.uc.Status()
	assert.Equal(t, models.StatusError, status.Kind)
	assert.Equal(t, "no files", status.Message)
	assert.Empty(t, fx.sleeper.Waits())
}

func TestBatchUsecase_UnknownTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, true)

	batch, err := fx.uc.StartBatch(context.Background(), "7", []models.InputFile{pdfFile("a.pdf")})

	assert.Nil(t, batch)
	assert.ErrorIs(t, err, errs.ErrUnknownTemplate)
	assert.Equal(t, models.StatusError, fx.uc.Status().Kind)
}

func TestBatchUsecase_ContinuesAfterTerminalFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, true)
	files := []models.InputFile{pdfFile("a.pdf"), pdfFile("b.pdf"), pdfFile("c.pdf")}

	fx.repo.EXPECT().Health(gomock.Any()).Return(nil)
	gomock.InOrder(
		fx.repo.EXPECT().Extract(gomock.Any(), models.ExtractionRequest{File: files[0], TemplateID: models.TemplateFundReport}).
			Return(errorResponse(http.StatusBadRequest, `{"detail":"unsupported template"}`), nil),
		fx.repo.EXPECT().Extract(gomock.Any(), models.ExtractionRequest{File: files[1], TemplateID: models.TemplateFundReport}).
			Return(okResponse("b.xlsx", []byte("b")), nil),
		fx.repo.EXPECT().Extract(gomock.Any(), models.ExtractionRequest{File: files[2], TemplateID: models.TemplateFundReport}).
			Return(okResponse("c.xlsx", []byte("c")), nil),
	)

	batch, err := fx.uc.RunBatch(context.Background(), models.TemplateFundReport, files)

	require.NoError(t, err)
	assert.Equal(t, models.BatchDone, batch.State)
	require.Len(t, batch.Outcomes, 3)
	assert.Equal(t, "a.pdf", batch.Outcomes[0].File)
	assert.Equal(t, models.OutcomeTerminalFailure, batch.Outcomes[0].Kind)
	assert.True(t, batch.Outcomes[1].Succeeded())
	assert.True(t, batch.Outcomes[2].Succeeded())
	assert.Equal(t, 2, batch.Succeeded())

	assert.Equal(t, []time.Duration{cooldown, cooldown, dwell}, fx.sleeper.Waits())
	assert.Equal(t, models.StatusIdle, fx.uc.Status().Kind)

	_, err = os.Stat(filepath.Join(fx.outDir, "c.xlsx"))
	assert.NoError(t, err)
}

func TestBatchUsecase_LLMTimeoutRecovered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	file := pdfFile("fund.pdf")
	req := models.ExtractionRequest{File: file, TemplateID: models.TemplateFundReport}
	payload := bytes.Repeat([]byte{1}, 10*1024)

	var dwellStatus models.BatchStatus
	fx.sleeper.onSleep = func(d time.Duration) {
		if d == dwell {
			dwellStatus = fx.uc.Status()
		}
	}

	gomock.InOrder(
		fx.repo.EXPECT().Extract(gomock.Any(), req).
			Return(errorResponse(http.StatusInternalServerError, `{"detail":"LLM timeout"}`), nil),
		fx.repo.EXPECT().Extract(gomock.Any(), req).
			DoAndReturn(func(context.Context, models.ExtractionRequest) (*models.ServiceResponse, error) {
				status := fx.uc.Status()
				assert.Equal(t, models.StatusExtracting, status.Kind)
				assert.Equal(t, 2, status.Attempt)
				return okResponse("extracted_data.xlsx", payload), nil
			}),
	)

	batch, err := fx.uc.RunBatch(context.Background(), models.TemplateFundReport, []models.InputFile{file})

	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 1)
	assert.True(t, batch.Outcomes[0].Succeeded())
	assert.Equal(t, 1, batch.Outcomes[0].Retries())
	assert.Equal(t, len(payload), batch.Outcomes[0].Size)
	assert.Equal(t, []time.Duration{time.Second, dwell}, fx.sleeper.Waits())
	assert.Equal(t, models.StatusSuccess, dwellStatus.Kind)
	assert.Equal(t, models.StatusIdle, fx.uc.Status().Kind)
}

func TestBatchUsecase_NonPDFSkippedWithoutNetwork(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	notes := models.InputFile{Name: "notes.txt", Data: []byte("hello")}
	fund := pdfFile("fund.pdf")

	fx.repo.EXPECT().Extract(gomock.Any(), models.ExtractionRequest{File: fund, TemplateID: models.TemplatePortfolioAnalysis}).
		Return(okResponse("fund.xlsx", []byte("x")), nil).
		Times(1)

	batch, err := fx.uc.RunBatch(context.Background(), models.TemplatePortfolioAnalysis, []models.InputFile{notes, fund})

	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 2)
	assert.Equal(t, errs.KindValidation, batch.Outcomes[0].FailureKind)
	assert.Equal(t, 0, batch.Outcomes[0].Attempts)
	assert.True(t, batch.Outcomes[1].Succeeded())
}

func TestBatchUsecase_LastFailureKeepsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	file := pdfFile("fund.pdf")

	fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).
		Return(errorResponse(http.StatusBadRequest, `{"detail":"unsupported template"}`), nil).
		Times(1)

	batch, err := fx.uc.RunBatch(context.Background(), models.TemplateFundReport, []models.InputFile{file})

	require.NoError(t, err)
	assert.Equal(t, models.BatchDone, batch.State)
	assert.Empty(t, fx.sleeper.Waits())
	status := fx.uc.Status()
	assert.Equal(t, models.StatusError, status.Kind)
	assert.Contains(t, status.Message, "unsupported template")
}

func TestBatchUsecase_StaleMessageCleared(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	files := []models.InputFile{pdfFile("a.pdf"), pdfFile("b.pdf")}

	var cooldownStatus models.BatchStatus
	fx.sleeper.onSleep = func(d time.Duration) {
		if d == cooldown {
			cooldownStatus = fx.uc.Status()
		}
	}

	gomock.InOrder(
		fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).
			Return(errorResponse(http.StatusBadRequest, `{"detail":"unsupported template"}`), nil),
		fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, models.ExtractionRequest) (*models.ServiceResponse, error) {
				status := fx.uc.Status()
				assert.Equal(t, "b.pdf", status.File)
				assert.Equal(t, 2, status.FileIndex)
				assert.Empty(t, status.Message)
				return okResponse("b.xlsx", []byte("b")), nil
			}),
	)

	_, err := fx.uc.RunBatch(context.Background(), models.TemplateFundReport, files)

	require.NoError(t, err)
	assert.Equal(t, models.StatusError, cooldownStatus.Kind)
	assert.Equal(t, "a.pdf", cooldownStatus.File)
}

func TestBatchUsecase_HealthGate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, true)
	files := []models.InputFile{pdfFile("a.pdf"), pdfFile("b.pdf")}

	fx.repo.EXPECT().Health(gomock.Any()).Return(errs.ErrServiceUnavailable)

	batch, err := fx.uc.RunBatch(context.Background(), models.TemplateFundReport, files)

	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 2)
	for _, o := range batch.Outcomes {
		assert.Equal(t, errs.KindConnectivity, o.FailureKind)
	}
	status := fx.uc.Status()
	assert.Equal(t, models.StatusError, status.Kind)
	assert.Equal(t, "extraction service unavailable", status.Message)
}

func TestBatchUsecase_CanceledDuringCooldown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	files := []models.InputFile{pdfFile("a.pdf"), pdfFile("b.pdf"), pdfFile("c.pdf")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx.sleeper.onSleep = func(d time.Duration) {
		if d == cooldown {
			cancel()
		}
	}
	fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(okResponse("a.xlsx", []byte("a")), nil).Times(1)

	batch, err := fx.uc.RunBatch(ctx, models.TemplateFundReport, files)

	require.NoError(t, err)
	assert.Equal(t, models.BatchCanceled, batch.State)
	require.Len(t, batch.Outcomes, 3)
	assert.True(t, batch.Outcomes[0].Succeeded())
	assert.Equal(t, errs.KindCanceled, batch.Outcomes[1].FailureKind)
	assert.Equal(t, errs.KindCanceled, batch.Outcomes[2].FailureKind)
	assert.Equal(t, "batch canceled", fx.uc.Status().Message)
}

func TestBatchUsecase_StartBatchRejectsConcurrentBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	release := make(chan struct{})

	fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.ExtractionRequest) (*models.ServiceResponse, error) {
			<-release
			return okResponse("a.xlsx", []byte("a")), nil
		}).
		Times(1)

	first, err := fx.uc.StartBatch(context.Background(), models.TemplateFundReport, []models.InputFile{pdfFile("a.pdf")})
	require.NoError(t, err)

	second, err := fx.uc.StartBatch(context.Background(), models.TemplateFundReport, []models.InputFile{pdfFile("b.pdf")})
	assert.Nil(t, second)
	assert.ErrorIs(t, err, errs.ErrBatchInProgress)

	close(release)
	fx.uc.Wait()

	batch, err := fx.uc.GetBatch(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchDone, batch.State)
	assert.Len(t, batch.Outcomes, 1)
}

func TestBatchUsecase_RejectedRequestKeepsRunningStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	started := make(chan struct{})
	release := make(chan struct{})

	fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.ExtractionRequest) (*models.ServiceResponse, error) {
			close(started)
			<-release
			return okResponse("a.xlsx", []byte("a")), nil
		}).
		Times(1)

	_, err := fx.uc.StartBatch(context.Background(), models.TemplateFundReport, []models.InputFile{pdfFile("a.pdf")})
	require.NoError(t, err)
	<-started

	before := fx.uc.Status()
	require.Equal(t, models.StatusExtracting, before.Kind)

	_, err = fx.uc.StartBatch(context.Background(), models.TemplateFundReport, nil)
	assert.ErrorIs(t, err, errs.ErrNoFiles)
	_, err = fx.uc.StartBatch(context.Background(), "9", []models.InputFile{pdfFile("b.pdf")})
	assert.ErrorIs(t, err, errs.ErrUnknownTemplate)

	after := fx.uc.Status()
	assert.Equal(t, models.StatusExtracting, after.Kind)
	assert.Equal(t, "a.pdf", after.File)
	assert.Equal(t, before.Seq, after.Seq)

	close(release)
	fx.uc.Wait()
}

func TestBatchUsecase_RetryShownInStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	var backoffStatus models.BatchStatus
	fx.sleeper.onSleep = func(d time.Duration) {
		if d == time.Second {
			backoffStatus = fx.uc.Status()
		}
	}

	gomock.InOrder(
		fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).
			Return(errorResponse(http.StatusInternalServerError, `{"detail":"LLM timeout"}`), nil),
		fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).
			Return(okResponse("a.xlsx", []byte("a")), nil),
	)

	_, err := fx.uc.RunBatch(context.Background(), models.TemplateFundReport, []models.InputFile{pdfFile("a.pdf")})

	require.NoError(t, err)
	assert.Equal(t, models.StatusExtracting, backoffStatus.Kind)
	assert.Equal(t, 1, backoffStatus.Attempt)
	assert.Equal(t, "attempt 1 failed, retrying in 1s: LLM timeout", backoffStatus.Message)
}

func TestBatchUsecase_CancelBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fx := newBatchFixture(t, ctrl, false)
	started := make(chan struct{})
	var once sync.Once

	fx.repo.EXPECT().Extract(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ models.ExtractionRequest) (*models.ServiceResponse, error) {
			once.Do(func() { close(started) })
			<-ctx.Done()
			return nil, ctx.Err()
		}).
		Times(1)

	batch, err := fx.uc.StartBatch(context.Background(), models.TemplateFundReport, []models.InputFile{pdfFile("a.pdf"), pdfFile("b.pdf")})
	require.NoError(t, err)

	<-started
	assert.NoError(t, fx.uc.CancelBatch(context.Background(), batch.ID))
	fx.uc.Wait()

	got, err := fx.uc.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchCanceled, got.State)
	require.Len(t, got.Outcomes, 2)
	assert.Equal(t, errs.KindCanceled, got.Outcomes[0].FailureKind)
	assert.Equal(t, errs.KindCanceled, got.Outcomes[1].FailureKind)

	assert.ErrorIs(t, fx.uc.CancelBatch(context.Background(), batch.ID), errs.ErrBatchNotRunning)
	assert.ErrorIs(t, fx.uc.CancelBatch(context.Background(), "missing"), errs.ErrBatchNotFound)
}

func TestBatchUsecase_GetBatchWithMockRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	batchRepo := mock_app.NewMockBatchRepository(ctrl)
	extractionRepo := mock_app.NewMockExtractionRepository(ctrl)
	storage := mock_app.NewMockResultStorage(ctrl)
	uc := CreateBatchUsecase(batchRepo, extractionRepo, storage, DefaultOptions())

	batchRepo.EXPECT().GetBatch(gomock.Any(), "b1").Return(&models.Batch{ID: "b1", State: models.BatchDone}, nil)
	batchRepo.EXPECT().GetBatch(gomock.Any(), "missing").Return(nil, errs.ErrBatchNotFound)
	batchRepo.EXPECT().GetAllBatches(gomock.Any()).Return([]*models.Batch{{ID: "b1"}}, nil)
	storage.EXPECT().Path("a.xlsx").Return("/out/a.xlsx", nil)
	extractionRepo.EXPECT().Health(gomock.Any()).Return(context.DeadlineExceeded)

	batch, err := uc.GetBatch(context.Background(), "b1")
	assert.NoError(t, err)
	assert.Equal(t, "b1", batch.ID)

	_, err = uc.GetBatch(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrBatchNotFound)

	batches, err := uc.GetAllBatches(context.Background())
	assert.NoError(t, err)
	assert.Len(t, batches, 1)

	path, err := uc.ResultPath("a.xlsx")
	assert.NoError(t, err)
	assert.Equal(t, "/out/a.xlsx", path)

	err = uc.CheckHealth(context.Background())
	assert.ErrorIs(t, err, errs.ErrServiceUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
