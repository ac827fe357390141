package delivery

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/supchaser/pdftoxl/internal/app"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"github.com/supchaser/pdftoxl/internal/utils/responses"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxUploadMemory = 32 << 20

type BatchDelivery struct {
	batchUsecase app.BatchUsecase
}

func CreateBatchDelivery(batchUsecase app.BatchUsecase) *BatchDelivery {
	return &BatchDelivery{
		batchUsecase: batchUsecase,
	}
}

func (d *BatchDelivery) CreateBatch(w http.ResponseWriter, r *http.Request) {
	const funcName = "BatchDelivery.CreateBatch"
	logger.Debug("creating new batch", zap.String("function", funcName))

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	templateID := models.TemplateID(r.FormValue("template_id"))
	headers := r.MultipartForm.File["files"]

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	files, err := readUploads(ctx, headers)
	if err != nil {
		logger.Warn("failed to read uploaded files",
			zap.String("function", funcName),
			zap.Error(err),
		)
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "failed to read uploaded files")
		return
	}

	batch, err := d.batchUsecase.StartBatch(r.Context(), templateID, files)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, batch, http.StatusAccepted)
}

// readUploads reads every part concurrently and keeps the upload order.
func readUploads(ctx context.Context, headers []*multipart.FileHeader) ([]models.InputFile, error) {
	files := make([]models.InputFile, len(headers))

	g, ctx := errgroup.WithContext(ctx)
	for i, header := range headers {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			f, err := header.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", header.Filename, err)
			}
			defer f.Close()

			data, err := io.ReadAll(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", header.Filename, err)
			}

			files[i] = models.InputFile{Name: filepath.Base(header.Filename), Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (d *BatchDelivery) GetBatch(w http.ResponseWriter, r *http.Request) {
	const funcName = "BatchDelivery.GetBatch"
	logger.Debug("getting batch",
		zap.String("function", funcName),
	)

	batchID := mux.Vars(r)["id"]
	if batchID == "" {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	batch, err := d.batchUsecase.GetBatch(r.Context(), batchID)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, batch, http.StatusOK)
}

func (d *BatchDelivery) GetAllBatches(w http.ResponseWriter, r *http.Request) {
	const funcName = "BatchDelivery.GetAllBatches"
	logger.Debug("getting all batches",
		zap.String("function", funcName),
	)

	batches, err := d.batchUsecase.GetAllBatches(r.Context())
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	response := make([]models.BatchResponse, 0, len(batches))
	for _, batch := range batches {
		succeeded := batch.Succeeded()
		response = append(response, models.BatchResponse{
			ID:         batch.ID,
			TemplateID: batch.TemplateID,
			State:      batch.State,
			FilesCount: len(batch.Files),
			Succeeded:  succeeded,
			Failed:     len(batch.Outcomes) - succeeded,
			CreatedAt:  batch.CreatedAt,
		})
	}

	responses.DoJSONResponse(w, map[string]any{
		"count":   len(response),
		"batches": response,
	}, http.StatusOK)
}

func (d *BatchDelivery) CancelBatch(w http.ResponseWriter, r *http.Request) {
	const funcName = "BatchDelivery.CancelBatch"

	batchID := mux.Vars(r)["id"]
	if err := d.batchUsecase.CancelBatch(r.Context(), batchID); err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (d *BatchDelivery) GetStatus(w http.ResponseWriter, r *http.Request) {
	responses.DoJSONResponse(w, d.batchUsecase.Status(), http.StatusOK)
}

func (d *BatchDelivery) Health(w http.ResponseWriter, r *http.Request) {
	const funcName = "BatchDelivery.Health"

	if err := d.batchUsecase.CheckHealth(r.Context()); err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (d *BatchDelivery) DownloadResult(w http.ResponseWriter, r *http.Request) {
	const funcName = "BatchDelivery.DownloadResult"
	logger.Debug("downloading result",
		zap.String("function", funcName),
	)

	name := mux.Vars(r)["name"]
	path, err := d.batchUsecase.ResultPath(name)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))

	http.ServeFile(w, r, path)

	logger.Info("result downloaded successfully",
		zap.String("function", funcName),
		zap.String("file", filepath.Base(path)),
	)
}
