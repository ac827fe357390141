package delivery

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mock_app "github.com/supchaser/pdftoxl/internal/app/mocks"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/utils/errs"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	m.Run()
}

type upload struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, templateID string, uploads ...upload) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, u := range uploads {
		part, err := mw.CreateFormFile("files", u.name)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("template_id", templateID))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBatchDelivery_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsecase := mock_app.NewMockBatchUsecase(ctrl)
	batchDelivery := CreateBatchDelivery(mockUsecase)

	a := upload{name: "a.pdf", data: []byte("%PDF-1.4 a")}
	b := upload{name: "b.pdf", data: []byte("%PDF-1.4 b")}

	tests := []struct {
		name           string
		request        func(t *testing.T) *http.Request
		mockSetup      func()
		expectedStatus int
		validate       func(t *testing.T, body []byte)
	}{
		{
			name: "Success",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "1", a, b)
			},
			mockSetup: func() {
				mockUsecase.EXPECT().
					StartBatch(gomock.Any(), models.TemplateFundReport, []models.InputFile{
						{Name: a.name, Data: a.data},
						{Name: b.name, Data: b.data},
					}).
					Return(&models.Batch{
						ID:         "batch-1",
						TemplateID: models.TemplateFundReport,
						State:      models.BatchRunning,
						Files:      []string{"a.pdf", "b.pdf"},
						CreatedAt:  time.Now(),
					}, nil)
			},
			expectedStatus: http.StatusAccepted,
			validate: func(t *testing.T, body []byte) {
				var batch models.Batch
				assert.NoError(t, json.Unmarshal(body, &batch))
				assert.Equal(t, "batch-1", batch.ID)
				assert.Equal(t, models.BatchRunning, batch.State)
				assert.Equal(t, []string{"a.pdf", "b.pdf"}, batch.Files)
			},
		},
		{
			name: "NoFiles",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "1")
			},
			mockSetup: func() {
				mockUsecase.EXPECT().
					StartBatch(gomock.Any(), models.TemplateFundReport, gomock.Len(0)).
					Return(nil, errs.ErrNoFiles)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "BatchInProgress",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "2", a)
			},
			mockSetup: func() {
				mockUsecase.EXPECT().
					StartBatch(gomock.Any(), models.TemplatePortfolioAnalysis, gomock.Any()).
					Return(nil, errs.ErrBatchInProgress)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "NotMultipart",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewBufferString("{}"))
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			w := httptest.NewRecorder()
			batchDelivery.CreateBatch(w, tt.request(t))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validate != nil {
				tt.validate(t, w.Body.Bytes())
			}
		})
	}
}

func TestBatchDelivery_GetBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsecase := mock_app.NewMockBatchUsecase(ctrl)
	batchDelivery := CreateBatchDelivery(mockUsecase)

	tests := []struct {
		name           string
		batchID        string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name:    "Success",
			batchID: "batch-1",
			mockSetup: func() {
				mockUsecase.EXPECT().
					GetBatch(gomock.Any(), "batch-1").
					Return(&models.Batch{ID: "batch-1", State: models.BatchDone}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "NotFound",
			batchID: "missing",
			mockSetup: func() {
				mockUsecase.EXPECT().
					GetBatch(gomock.Any(), "missing").
					Return(nil, errs.ErrBatchNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "EmptyID",
			batchID:        "",
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/"+tt.batchID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.batchID})
			w := httptest.NewRecorder()

			batchDelivery.GetBatch(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBatchDelivery_GetAllBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsecase := mock_app.NewMockBatchUsecase(ctrl)
	batchDelivery := CreateBatchDelivery(mockUsecase)

	mockUsecase.EXPECT().
		GetAllBatches(gomock.Any()).
		Return([]*models.Batch{
			{
				ID:         "batch-1",
				TemplateID: models.TemplateFundReport,
				State:      models.BatchDone,
				Files:      []string{"a.pdf", "b.pdf"},
				Outcomes: []*models.Outcome{
					{Kind: models.OutcomeSuccess, File: "a.pdf"},
					{Kind: models.OutcomeTerminalFailure, File: "b.pdf"},
				},
			},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches", nil)
	w := httptest.NewRecorder()
	batchDelivery.GetAllBatches(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Count   int                    `json:"count"`
		Batches []models.BatchResponse `json:"batches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Batches, 1)
	assert.Equal(t, 2, response.Batches[0].FilesCount)
	assert.Equal(t, 1, response.Batches[0].Succeeded)
	assert.Equal(t, 1, response.Batches[0].Failed)
}

func TestBatchDelivery_CancelBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsecase := mock_app.NewMockBatchUsecase(ctrl)
	batchDelivery := CreateBatchDelivery(mockUsecase)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "Canceled", err: nil, expectedStatus: http.StatusNoContent},
		{name: "NotRunning", err: errs.ErrBatchNotRunning, expectedStatus: http.StatusConflict},
		{name: "NotFound", err: errs.ErrBatchNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsecase.EXPECT().CancelBatch(gomock.Any(), "batch-1").Return(tt.err)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/batches/batch-1", nil)
			req = mux.SetURLVars(req, map[string]string{"id": "batch-1"})
			w := httptest.NewRecorder()

			batchDelivery.CancelBatch(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBatchDelivery_GetStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsecase := mock_app.NewMockBatchUsecase(ctrl)
	batchDelivery := CreateBatchDelivery(mockUsecase)

	mockUsecase.EXPECT().Status().Return(models.BatchStatus{
		Kind:      models.StatusExtracting,
		Attempt:   2,
		File:      "fund.pdf",
		FileIndex: 1,
		FileCount: 3,
	})

	w := httptest.NewRecorder()
	batchDelivery.GetStatus(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var status models.BatchStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.StatusExtracting, status.Kind)
	assert.Equal(t, 2, status.Attempt)
	assert.Equal(t, "fund.pdf", status.File)
}

func TestBatchDelivery_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsecase := mock_app.NewMockBatchUsecase(ctrl)
	batchDelivery := CreateBatchDelivery(mockUsecase)

	mockUsecase.EXPECT().CheckHealth(gomock.Any()).Return(nil)
	w := httptest.NewRecorder()
	batchDelivery.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mockUsecase.EXPECT().CheckHealth(gomock.Any()).Return(errs.ErrServiceUnavailable)
	w = httptest.NewRecorder()
	batchDelivery.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBatchDelivery_DownloadResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsecase := mock_app.NewMockBatchUsecase(ctrl)
	batchDelivery := CreateBatchDelivery(mockUsecase)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("xlsx-bytes"), 0o644))

	t.Run("Success", func(t *testing.T) {
		mockUsecase.EXPECT().ResultPath("report.xlsx").Return(path, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/report.xlsx", nil)
		req = mux.SetURLVars(req, map[string]string{"name": "report.xlsx"})
		w := httptest.NewRecorder()

		batchDelivery.DownloadResult(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "xlsx-bytes", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="report.xlsx"`)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockUsecase.EXPECT().ResultPath("missing.xlsx").Return("", errs.ErrResultNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/missing.xlsx", nil)
		req = mux.SetURLVars(req, map[string]string{"name": "missing.xlsx"})
		w := httptest.NewRecorder()

		batchDelivery.DownloadResult(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
