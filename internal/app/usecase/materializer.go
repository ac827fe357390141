package usecase

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/supchaser/pdftoxl/internal/app"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"github.com/supchaser/pdftoxl/internal/utils/workbook"
	"go.uber.org/zap"
)

const DefaultFilename = "extracted_data.xlsx"

var (
	filenameToken = regexp.MustCompile(`(?i)filename\s*=\s*("[^"]*"|'[^']*'|[^;]*)`)
	zipMagic      = []byte("PK\x03\x04")
)

// Materializer turns a successful service response into a saved file.
type Materializer struct {
	storage     app.ResultStorage
	defaultName string
	inspect     func([]byte) (*models.WorkbookSummary, error)
}

func CreateMaterializer(storage app.ResultStorage, defaultName string) *Materializer {
	if defaultName == "" {
		defaultName = DefaultFilename
	}
	return &Materializer{
		storage:     storage,
		defaultName: defaultName,
		inspect:     workbook.Inspect,
	}
}

func (m *Materializer) Materialize(ctx context.Context, resp *models.ServiceResponse) (*models.SavedFile, error) {
	const funcName = "Materializer.Materialize"

	name := FilenameFromDisposition(resp.ContentDisposition, m.defaultName)
	path, err := m.storage.Save(ctx, name, resp.Body)
	if err != nil {
		logger.Error("failed to save result",
			zap.String("function", funcName),
			zap.String("file_name", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("save %s: %w", name, err)
	}

	saved := &models.SavedFile{
		Name: filepath.Base(path),
		Path: path,
		Size: len(resp.Body),
	}

	if bytes.HasPrefix(resp.Body, zipMagic) {
		summary, err := m.inspect(resp.Body)
		if err != nil {
			logger.Warn("saved result is not a readable workbook",
				zap.String("function", funcName),
				zap.String("path", path),
				zap.Error(err),
			)
		} else {
			saved.Workbook = summary
			for _, e := range summary.Errors {
				logger.Warn("service reported a per-file error",
					zap.String("function", funcName),
					zap.String("source_file", e.SourceFile),
					zap.String("error", e.Error),
				)
			}
		}
	}

	return saved, nil
}

// FilenameFromDisposition extracts the filename parameter of a
// Content-Disposition value, or returns fallback.
func FilenameFromDisposition(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	if _, params, err := mime.ParseMediaType(value); err == nil {
		if name := cleanFilename(params["filename"]); name != "" {
			return name
		}
	}

	if match := filenameToken.FindStringSubmatch(value); match != nil {
		if name := cleanFilename(match[1]); name != "" {
			return name
		}
	}

	return fallback
}

func cleanFilename(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.Trim(name, `"'`)
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "/" || strings.HasPrefix(name, ".") {
		return ""
	}
	return name
}
