package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/app/repository"
	"github.com/supchaser/pdftoxl/internal/app/usecase"
	"github.com/supchaser/pdftoxl/internal/config"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type options struct {
	template   string
	outDir     string
	serviceURL string
	envFile    string
	logMode    string
	paths      []string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := pflag.NewFlagSet("extract", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.template, "template", "t", string(models.TemplateFundReport), "Extraction template id (1: fund report, 2: portfolio analysis)")
	fs.StringVarP(&opts.outDir, "out", "o", "", "Directory for downloaded spreadsheets (overrides OUTPUT_DIR)")
	fs.StringVar(&opts.serviceURL, "service-url", "", "Extraction service base URL (overrides SERVICE_URL)")
	fs.StringVar(&opts.envFile, "env", ".env", "Env file to load")
	fs.StringVar(&opts.logMode, "log-mode", "", "Log mode: debug or prod (overrides LOG_MODE)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: extract [flags] file.pdf...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.paths = fs.Args()
	if len(opts.paths) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("no input files")
	}

	return opts, nil
}

// applyOverrides exports flag values so config loading sees them.
func (o *options) applyOverrides() {
	overrides := map[string]string{
		"SERVICE_URL": o.serviceURL,
		"OUTPUT_DIR":  o.outDir,
		"LOG_MODE":    o.logMode,
	}
	for name, value := range overrides {
		if value != "" {
			os.Setenv(name, value)
		}
	}
	if os.Getenv("LOG_MODE") == "" {
		os.Setenv("LOG_MODE", "prod")
	}
}

// loadFiles reads the inputs concurrently and keeps their order.
func loadFiles(ctx context.Context, paths []string) ([]models.InputFile, error) {
	files := make([]models.InputFile, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			files[i] = models.InputFile{Name: filepath.Base(path), Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func printSummary(w io.Writer, batch *models.Batch, outDir string) {
	for _, o := range batch.Outcomes {
		if o.Succeeded() {
			fmt.Fprintf(w, "ok      %s -> %s (%d bytes, %d retries)\n", o.File, filepath.Join(outDir, o.SavedAs), o.Size, o.Retries())
			continue
		}
		fmt.Fprintf(w, "failed  %s: %s\n", o.File, o.Reason)
	}
	fmt.Fprintf(w, "%d of %d files extracted\n", batch.Succeeded(), len(batch.Files))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	opts.applyOverrides()

	cfg, err := config.LoadConfig(opts.envFile)
	if err != nil {
		fmt.Fprintf(stderr, "error initializing config: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.LogMode); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := loadFiles(ctx, opts.paths)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	extractionRepo := repository.CreateExtractionRepository(cfg.ServiceURL, &http.Client{Timeout: cfg.RequestTimeout})
	storage := repository.CreateFileStorage(cfg.OutputDir)
	batchUsecase := usecase.CreateBatchUsecase(repository.CreateBatchRepository(), extractionRepo, storage, usecase.OptionsFromConfig(cfg))

	watchCtx, stopWatch := context.WithCancel(ctx)
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		for status := range batchUsecase.Subscribe(watchCtx) {
			printStatus(stdout, status)
		}
	}()

	batch, err := batchUsecase.RunBatch(ctx, models.TemplateID(opts.template), files)
	stopWatch()
	<-watched
	if err != nil {
		logger.Error("batch failed", zap.String("function", "main.run"), zap.Error(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	printSummary(stdout, batch, storage.Dir())
	if batch.Succeeded() != len(batch.Files) {
		return 1
	}
	return 0
}

func printStatus(w io.Writer, status models.BatchStatus) {
	switch status.Kind {
	case models.StatusIdle:
		return
	case models.StatusExtracting:
		fmt.Fprintf(w, "[%d/%d] %s: extracting (attempt %d)\n", status.FileIndex, status.FileCount, status.File, status.Attempt)
	case models.StatusSuccess, models.StatusError:
		if status.File == "" {
			fmt.Fprintf(w, "%s: %s\n", status.Kind, status.Message)
			return
		}
		fmt.Fprintf(w, "[%d/%d] %s: %s\n", status.FileIndex, status.FileCount, status.Kind, status.Message)
	default:
		fmt.Fprintf(w, "[%d/%d] %s: %s\n", status.FileIndex, status.FileCount, status.File, status.Kind)
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
