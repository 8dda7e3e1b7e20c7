// Package pipeline orchestrates the full benchmark: write phase, read
// phase, report generation, and optional artifact archiving.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"time"

	"github.com/formbench/formbench/internal/benchmark"
	"github.com/formbench/formbench/internal/config"
	"github.com/formbench/formbench/internal/format"
	"github.com/formbench/formbench/internal/generator"
	"github.com/formbench/formbench/internal/observability"
	"github.com/formbench/formbench/internal/report"
	"github.com/formbench/formbench/internal/storage"
)

// Pipeline runs the benchmark phases in sequence against one
// configuration.
type Pipeline struct {
	cfg      *config.Config
	handlers []format.Handler
	stats    *observability.RunStats
}

// New creates a pipeline for cfg. The configured format names are
// resolved to handlers up front so an unknown format fails before any
// work starts.
func New(cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	handlers, err := format.NewAll(cfg.Formats)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:      cfg,
		handlers: handlers,
		stats:    observability.NewRunStats(),
	}, nil
}

// RunWrite executes the write phase and persists its results.
func (p *Pipeline) RunWrite(ctx context.Context) ([]benchmark.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	wb, err := benchmark.NewWriteBenchmark(p.cfg.DataDir)
	if err != nil {
		return nil, err
	}

	gen := generator.New(p.cfg.Write.Seed)
	records := gen.EstimateRecordsForSize(p.cfg.Write.TargetSizeGB)

	results, err := wb.RunAllFormats(p.handlers, records, p.cfg.Write.Seed)
	if err != nil {
		return nil, err
	}

	if err := benchmark.SaveWriteResults(results, p.cfg.WriteResultsPath()); err != nil {
		return nil, err
	}
	log.Printf("write results saved to %s", p.cfg.WriteResultsPath())
	return results, nil
}

// RunRead executes the read phase against previously written files and
// persists its results.
func (p *Pipeline) RunRead(ctx context.Context) ([]benchmark.ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rb := benchmark.NewReadBenchmark(
		p.cfg.DataDir,
		p.cfg.Read.Runs,
		p.cfg.Read.FilterCategory,
		time.Duration(p.cfg.Read.TimeoutSeconds)*time.Second,
		p.stats,
	)

	results, err := rb.RunAllFormats(p.handlers)
	if err != nil {
		return nil, err
	}

	if err := benchmark.SaveReadResults(results, p.cfg.ReadResultsPath()); err != nil {
		return nil, err
	}
	log.Printf("read results saved to %s", p.cfg.ReadResultsPath())
	return results, nil
}

// RunReport loads persisted phase results, renders the report, saves
// it, and prints it to stdout.
func (p *Pipeline) RunReport(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	writes, err := benchmark.LoadWriteResults(p.cfg.WriteResultsPath())
	if err != nil {
		return err
	}
	reads, err := benchmark.LoadReadResults(p.cfg.ReadResultsPath())
	if err != nil {
		return err
	}

	gen := report.NewGenerator(benchmark.Combine(writes, reads))
	if err := gen.Save(p.cfg.ReportPath()); err != nil {
		return err
	}
	gen.Print()
	return nil
}

// Run executes the full benchmark: write, read, report, and optional
// artifact archiving.
func (p *Pipeline) Run(ctx context.Context) error {
	if _, err := p.RunWrite(ctx); err != nil {
		return fmt.Errorf("write phase: %w", err)
	}
	if _, err := p.RunRead(ctx); err != nil {
		return fmt.Errorf("read phase: %w", err)
	}
	if err := p.RunReport(ctx); err != nil {
		return fmt.Errorf("report phase: %w", err)
	}

	if len(p.stats.Snapshot()) > 0 {
		log.Printf("run statistics:\n%s", p.stats)
	}

	return p.Archive(ctx)
}

// Archive uploads run artifacts to the configured store. With no store
// configured it does nothing.
func (p *Pipeline) Archive(ctx context.Context) error {
	store, err := storage.New(ctx, p.cfg.Storage)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}

	artifacts := []string{
		p.cfg.WriteResultsPath(),
		p.cfg.ReadResultsPath(),
		p.cfg.ReportPath(),
	}
	if p.cfg.Storage.ArchiveData {
		for _, h := range p.handlers {
			artifacts = append(artifacts, format.FilePath(h, filepath.Join(p.cfg.DataDir, benchmark.BaseFilename)))
		}
	}

	for _, localPath := range artifacts {
		objectPath := path.Join(p.cfg.Storage.Prefix, path.Base(localPath))
		if err := store.Upload(ctx, localPath, objectPath); err != nil {
			return fmt.Errorf("archive %s: %w", localPath, err)
		}
		log.Printf("archived %s to %s", localPath, objectPath)
	}
	return nil
}
