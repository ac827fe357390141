package app

import (
	"context"

	"github.com/supchaser/pdftoxl/internal/app/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock.go

type BatchRepository interface {
	CreateBatch(ctx context.Context, templateID models.TemplateID, files []string) (*models.Batch, error)
	GetBatch(ctx context.Context, id string) (*models.Batch, error)
	RecordOutcome(ctx context.Context, id string, outcome *models.Outcome) error
	FinishBatch(ctx context.Context, id string, state models.BatchState) error
	GetAllBatches(ctx context.Context) ([]*models.Batch, error)
}

// ExtractionRepository is the remote extraction service.
type ExtractionRepository interface {
	Extract(ctx context.Context, req models.ExtractionRequest) (*models.ServiceResponse, error)
	Health(ctx context.Context) error
}

// ResultStorage is the local save collaborator.
type ResultStorage interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Path(name string) (string, error)
}

type BatchUsecase interface {
	StartBatch(ctx context.Context, templateID models.TemplateID, files []models.InputFile) (*models.Batch, error)
	GetBatch(ctx context.Context, id string) (*models.Batch, error)
	GetAllBatches(ctx context.Context) ([]*models.Batch, error)
	CancelBatch(ctx context.Context, id string) error
	Status() models.BatchStatus
	CheckHealth(ctx context.Context) error
	ResultPath(name string) (string, error)
}
