package importer

import (
	"context"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
)

// FileResult is the outcome of importing one file.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// BatchSummary aggregates a multi-file import run.
type BatchSummary struct {
	Succeeded int
	Failed    int
	Files     []FileResult
}

// ImportFiles imports each file in its own transaction. A bad file fails
// alone; the rest of the batch proceeds. Only context cancellation stops
// the run early.
func (s *Service) ImportFiles(ctx context.Context, paths []string) (*BatchSummary, error) {
	summary := &BatchSummary{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fileResult := FileResult{Path: path}
		doc, err := canonical.ReadFile(path)
		if err != nil {
			fileResult.Err = &TransformationError{Source: path, Err: err}
		} else {
			fileResult.Result, fileResult.Err = s.Import(ctx, doc)
		}

		if fileResult.Err != nil {
			summary.Failed++
			s.logger.Error("file import failed", "path", path, "error", fileResult.Err)
		} else {
			summary.Succeeded++
		}
		summary.Files = append(summary.Files, fileResult)
	}
	return summary, nil
}
