package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/liftcontrol"
)

// SessionFetcher fetches one session's raw results from the platform.
type SessionFetcher interface {
	FetchSession(ctx context.Context, sessionSlug string) (*liftcontrol.Response, error)
}

// ImportLiftControl fetches every session of a registered competition and
// imports it directly. Sessions run sequentially and each imports in its
// own transaction; because all sessions share the competition's base slug,
// the upserts merge them into one competition.
func (s *Service) ImportLiftControl(ctx context.Context, client SessionFetcher, cfg liftcontrol.CompetitionConfig) (*Result, error) {
	exporter := liftcontrol.NewExporter(cfg)
	logger := s.logger.With("competition_id", cfg.ID)

	var combined *Result
	for _, sessionSlug := range cfg.SubSlugs {
		doc, err := s.fetchSession(ctx, client, exporter, sessionSlug)
		if err != nil {
			return nil, err
		}

		result, err := s.Import(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("import session %s: %w", sessionSlug, err)
		}
		logger.Info("session imported", "session", sessionSlug, "athletes", result.Athletes)

		if combined == nil {
			combined = result
		} else {
			combined.Athletes += result.Athletes
			combined.Lifts += result.Lifts
			combined.Attempts += result.Attempts
			combined.Warnings = append(combined.Warnings, result.Warnings...)
		}
	}
	return combined, nil
}

// ExportLiftControl fetches every session of a registered competition and
// writes one canonical JSON file per session into outDir. Returns the
// written paths.
func (s *Service) ExportLiftControl(ctx context.Context, client SessionFetcher, cfg liftcontrol.CompetitionConfig, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	exporter := liftcontrol.NewExporter(cfg)
	var paths []string
	for _, sessionSlug := range cfg.SubSlugs {
		doc, err := s.fetchSession(ctx, client, exporter, sessionSlug)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(outDir, sessionSlug+".json")
		if err := canonical.WriteFile(path, doc); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		s.logger.Info("session exported", "session", sessionSlug, "path", path)
	}
	return paths, nil
}

func (s *Service) fetchSession(ctx context.Context, client SessionFetcher, exporter *liftcontrol.Exporter, sessionSlug string) (*canonical.Document, error) {
	resp, err := client.FetchSession(ctx, sessionSlug)
	if err != nil {
		return nil, fmt.Errorf("fetch session %s: %w", sessionSlug, err)
	}

	doc, err := exporter.ToCanonical(resp)
	if err != nil {
		return nil, &TransformationError{Source: sessionSlug, Err: err}
	}
	return doc, nil
}
