package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/utils/errs"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"go.uber.org/zap"
)

const (
	extractPath = "/extract/"
	healthPath  = "/"

	filesField    = "files"
	templateField = "template_id"
)

var maxResponseSize int64 = 256 << 20

// ExtractionRepository talks to the remote extraction service. It returns
// every HTTP response as is; only transport failures are errors.
type ExtractionRepository struct {
	baseURL string
	client  *http.Client
}

func CreateExtractionRepository(baseURL string, client *http.Client) *ExtractionRepository {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &ExtractionRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (r *ExtractionRepository) Extract(ctx context.Context, req models.ExtractionRequest) (*models.ServiceResponse, error) {
	const funcName = "ExtractionRepository.Extract"
	reqID := uuid.NewString()
	start := time.Now()

	body, contentType, err := encodeRequest(req)
	if err != nil {
		logger.Error("failed to encode extraction request",
			zap.String("function", funcName),
			zap.String("req_id", reqID),
			zap.String("file", req.File.Name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+extractPath, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("X-Request-ID", reqID)

	logger.Debug("sending extraction request",
		zap.String("function", funcName),
		zap.String("req_id", reqID),
		zap.String("file", req.File.Name),
		zap.String("template_id", string(req.TemplateID)),
		zap.Int("content_length", body.Len()),
	)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		logger.Warn("extraction request failed",
			zap.String("function", funcName),
			zap.String("req_id", reqID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", errs.ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		logger.Warn("failed to read extraction response",
			zap.String("function", funcName),
			zap.String("req_id", reqID),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: read response: %w", errs.ErrServiceUnreachable, err)
	}
	if int64(len(raw)) > maxResponseSize {
		logger.Warn("extraction response exceeds size limit",
			zap.String("function", funcName),
			zap.String("req_id", reqID),
			zap.Int64("max_bytes", maxResponseSize),
		)
		return nil, fmt.Errorf("%w: more than %d bytes", errs.ErrResponseTooLarge, maxResponseSize)
	}

	logger.Info("extraction response received",
		zap.String("function", funcName),
		zap.String("req_id", reqID),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &models.ServiceResponse{
		StatusCode:         resp.StatusCode,
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentType:        resp.Header.Get("Content-Type"),
		Body:               raw,
	}, nil
}

func (r *ExtractionRepository) Health(ctx context.Context) error {
	const funcName = "ExtractionRepository.Health"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		logger.Warn("health probe failed",
			zap.String("function", funcName),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", errs.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		logger.Warn("health probe returned non-2xx",
			zap.String("function", funcName),
			zap.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d", errs.ErrServiceUnavailable, resp.StatusCode)
	}

	return nil
}

func encodeRequest(req models.ExtractionRequest) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, filesField, req.File.Name))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.File.Data); err != nil {
		return nil, "", err
	}

	if err := w.WriteField(templateField, string(req.TemplateID)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}
