package models

import (
	"time"

	"github.com/supchaser/pdftoxl/internal/utils/errs"
)

type TemplateID string

const (
	// TemplateFundReport is the standard fund financial report layout.
	TemplateFundReport TemplateID = "1"
	// TemplatePortfolioAnalysis is the detailed portfolio company analysis layout.
	TemplatePortfolioAnalysis TemplateID = "2"
)

var Templates = []TemplateID{TemplateFundReport, TemplatePortfolioAnalysis}

type InputFile struct {
	Name string
	Data []byte
}

type ExtractionRequest struct {
	File       InputFile
	TemplateID TemplateID
}

type ServiceResponse struct {
	StatusCode         int
	ContentDisposition string
	ContentType        string
	Body               []byte
}

type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeRetryableFailure OutcomeKind = "retryable_failure"
	OutcomeTerminalFailure  OutcomeKind = "terminal_failure"
)

type Outcome struct {
	Kind        OutcomeKind      `json:"kind"`
	File        string           `json:"file"`
	SavedAs     string           `json:"saved_as,omitempty"`
	Path        string           `json:"-"`
	Size        int              `json:"size,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	FailureKind errs.Kind        `json:"failure_kind,omitempty"`
	StatusCode  int              `json:"status_code,omitempty"`
	Attempts    int              `json:"attempts"`
	Backoffs    []time.Duration  `json:"-"`
	Workbook    *WorkbookSummary `json:"workbook,omitempty"`
	FinishedAt  time.Time        `json:"finished_at"`
}

func (o *Outcome) Succeeded() bool {
	return o != nil && o.Kind == OutcomeSuccess
}

func (o *Outcome) Retries() int {
	if o == nil || o.Attempts == 0 {
		return 0
	}
	return o.Attempts - 1
}

type SavedFile struct {
	Name     string
	Path     string
	Size     int
	Workbook *WorkbookSummary
}

type SheetSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// SheetError is one row of the service's "Errors" sheet.
type SheetError struct {
	SourceFile string `json:"source_file"`
	Error      string `json:"error"`
}

type WorkbookSummary struct {
	Sheets []SheetSummary `json:"sheets"`
	Errors []SheetError   `json:"errors,omitempty"`
}

type StatusKind string

const (
	StatusIdle        StatusKind = "idle"
	StatusUploading   StatusKind = "uploading"
	StatusExtracting  StatusKind = "extracting"
	StatusDownloading StatusKind = "downloading"
	StatusSuccess     StatusKind = "success"
	StatusError       StatusKind = "error"
)

// BatchStatus is the aggregate status slot. Attempt is 1-based and only set while extracting.
type BatchStatus struct {
	Kind      StatusKind `json:"kind"`
	Attempt   int        `json:"attempt,omitempty"`
	Message   string     `json:"message,omitempty"`
	BatchID   string     `json:"batch_id,omitempty"`
	File      string     `json:"file,omitempty"`
	FileIndex int        `json:"file_index,omitempty"`
	FileCount int        `json:"file_count,omitempty"`
	Seq       uint64     `json:"seq"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s BatchStatus) InProgress() bool {
	switch s.Kind {
	case StatusUploading, StatusExtracting, StatusDownloading:
		return true
	}
	return false
}

type BatchState string

const (
	BatchRunning  BatchState = "running"
	BatchDone     BatchState = "done"
	BatchCanceled BatchState = "canceled"
)

type Batch struct {
	ID         string     `json:"id"`
	TemplateID TemplateID `json:"template_id"`
	State      BatchState `json:"state"`
	Files      []string   `json:"files"`
	Outcomes   []*Outcome `json:"outcomes"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (b *Batch) Succeeded() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

type BatchResponse struct {
	ID         string     `json:"id"`
	TemplateID TemplateID `json:"template_id"`
	State      BatchState `json:"state"`
	FilesCount int        `json:"files_count"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	CreatedAt  time.Time  `json:"created_at"`
}
