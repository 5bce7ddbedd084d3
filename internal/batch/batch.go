// Package batch applies a rewrite pipeline to a list of site files, writing back
// only the files whose content changed.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/estimation-maison/sitefix/internal/atomicfile"
	"github.com/estimation-maison/sitefix/internal/audit"
	"github.com/estimation-maison/sitefix/internal/logger"
	"github.com/estimation-maison/sitefix/internal/passes"
	"github.com/estimation-maison/sitefix/internal/paths"
)

// Status of one processed file.
type Status string

const (
	StatusModified  Status = "modified"
	StatusUnchanged Status = "unchanged"
	StatusError     Status = "error"
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path        string              `json:"path"`
	Status      Status              `json:"status"`
	Passes      []string            `json:"passes,omitempty"`
	Diagnostics []passes.Diagnostic `json:"diagnostics,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Failure is a file that could not be read, rewritten or written.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report summarizes a batch. Files is in input order.
type Report struct {
	Files       []FileResult        `json:"files"`
	Changed     int                 `json:"changed"`
	Failures    []Failure           `json:"failures,omitempty"`
	Diagnostics []passes.Diagnostic `json:"diagnostics,omitempty"`
	DryRun      bool                `json:"dry_run"`
}

// Mutator rewrites files under Root.
type Mutator struct {
	Root string

	// DryRun computes changes without writing.
	DryRun bool

	// Workers > 1 processes files concurrently. Each file is read and written by
	// the same worker.
	Workers int

	// Audit receives one entry per written file. May be nil.
	Audit *audit.Logger
}

// Process runs pipeline over files (site-root-relative, '/' separated).
//
// Per-file failures are recorded in the report and do not stop the batch. The
// returned error is non-nil only when ctx is cancelled.
func (m *Mutator) Process(ctx context.Context, files []string, pipeline *passes.Pipeline) (*Report, error) {
	results := make([]FileResult, len(files))

	if m.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.Workers)
		for i, rel := range files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = m.processFile(rel, pipeline)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, rel := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = m.processFile(rel, pipeline)
		}
	}

	report := &Report{Files: results, DryRun: m.DryRun}
	for _, r := range results {
		report.Diagnostics = append(report.Diagnostics, r.Diagnostics...)
		switch r.Status {
		case StatusModified:
			report.Changed++
		case StatusError:
			report.Failures = append(report.Failures, Failure{Path: r.Path, Error: r.Error})
		}
	}
	return report, nil
}

func (m *Mutator) processFile(rel string, pipeline *passes.Pipeline) FileResult {
	res := FileResult{Path: rel, Status: StatusUnchanged}

	changed, err := m.rewrite(rel, pipeline, &res)
	if err != nil {
		logger.Warn("%s: %v", rel, err)
		res.Status = StatusError
		res.Error = err.Error()
		return res
	}
	if changed {
		res.Status = StatusModified
	}
	return res
}

func (m *Mutator) rewrite(rel string, pipeline *passes.Pipeline, res *FileResult) (bool, error) {
	abs := filepath.Join(m.Root, filepath.FromSlash(rel))
	if err := paths.ValidateWithinSite(m.Root, abs); err != nil {
		return false, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return false, fmt.Errorf("read: %w", err)
	}

	outcome := pipeline.Run(*passes.NewDocument(rel, string(data)))
	res.Diagnostics = outcome.Diagnostics
	res.Passes = outcome.Applied
	if !outcome.Changed {
		return false, nil
	}

	logger.Debug("%s: %v", rel, outcome.Applied)
	if m.DryRun {
		return true, nil
	}

	if err := atomicfile.ReplaceFile(abs, []byte(outcome.Content)); err != nil {
		return false, fmt.Errorf("write: %w", err)
	}
	if err := m.Audit.LogRewrite(rel, outcome.Applied); err != nil {
		logger.Warn("audit: %v", err)
	}
	return true, nil
}
