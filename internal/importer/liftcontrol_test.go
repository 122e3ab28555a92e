package importer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/config"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/liftcontrol"
)

type fakeFetcher struct {
	payloads map[string]string
	err      error
}

func (f *fakeFetcher) FetchSession(ctx context.Context, sessionSlug string) (*liftcontrol.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	payload, ok := f.payloads[sessionSlug]
	if !ok {
		return nil, errors.New("unknown session")
	}
	var resp liftcontrol.Response
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func testService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(nil, config.ImportConfig{CreatedBy: "canonical-importer", Timeout: time.Minute}, logger)
}

const exportSessionPayload = `{
  "contest": {"id": 5, "name": "Test Cup", "slug": "test-cup-2025-session-1", "status": "finished"},
  "results": {
    "categories": {"1": {"id": 1, "name": "Catégorie -73 Groupe A", "genre": "Homme"}},
    "results": {
      "1": {
        "11": {
          "athleteInfo": {"id": 11, "firstName": "jean", "lastName": "dupont", "pesee": 71.5, "isOut": false, "reasonOut": null},
          "results": {
            "1": {"results": {"1": {"id": 1, "noEssai": 1, "charge": 100, "decisionRep": "111"}, "2": null, "3": null}, "max": 100}
          },
          "total": 100, "RIS": 40, "rank": 1
        }
      }
    },
    "movements": {"1": {"id": 1, "name": "Squat", "order": 1}}
  },
  "runningAttemptId": null
}`

func exportTestConfig() liftcontrol.CompetitionConfig {
	return liftcontrol.CompetitionConfig{
		ID:       "test-cup-2025",
		BaseSlug: "test-cup-2025",
		SubSlugs: []string{"test-cup-2025-session-1"},
		Metadata: liftcontrol.CompetitionMetadata{
			Name:       "Test Cup 2025",
			Federation: liftcontrol.FederationInfo{Name: "LiftControl"},
			StartDate:  time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
			Country:    "FR",

			DefaultAthleteCountry: "FR",
		},
	}
}

func TestExportLiftControl_WritesCanonicalFiles(t *testing.T) {
	svc := testService(t)
	fetcher := &fakeFetcher{payloads: map[string]string{"test-cup-2025-session-1": exportSessionPayload}}
	outDir := filepath.Join(t.TempDir(), "export")

	paths, err := svc.ExportLiftControl(context.Background(), fetcher, exportTestConfig(), outDir)
	if err != nil {
		t.Fatalf("ExportLiftControl: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("len(paths) = %d, want 1", len(paths))
	}

	want := filepath.Join(outDir, "test-cup-2025-session-1.json")
	if paths[0] != want {
		t.Errorf("path = %q, want %q", paths[0], want)
	}

	doc, err := canonical.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if doc.FormatVersion != canonical.FormatVersion {
		t.Errorf("FormatVersion = %q, want %q", doc.FormatVersion, canonical.FormatVersion)
	}
	if doc.Competition.Slug != "test-cup-2025" {
		t.Errorf("Competition.Slug = %q, want base slug", doc.Competition.Slug)
	}
	if report := canonical.Validate(doc); !report.Valid() {
		t.Errorf("exported file fails validation: %v", report.Errors)
	}
}

func TestExportLiftControl_FetchErrorStopsRun(t *testing.T) {
	svc := testService(t)
	fetcher := &fakeFetcher{err: errors.New("boom")}

	_, err := svc.ExportLiftControl(context.Background(), fetcher, exportTestConfig(), t.TempDir())
	if err == nil {
		t.Fatal("ExportLiftControl: want error")
	}
}

func TestExportLiftControl_UnknownMovementIsTransformationError(t *testing.T) {
	svc := testService(t)
	// Swap the known movement for one outside the canonical vocabulary.
	payload := strings.ReplaceAll(exportSessionPayload, `"name": "Squat"`, `"name": "Bench Press"`)
	fetcher := &fakeFetcher{payloads: map[string]string{"test-cup-2025-session-1": payload}}

	_, err := svc.ExportLiftControl(context.Background(), fetcher, exportTestConfig(), t.TempDir())

	var transformErr *TransformationError
	if !errors.As(err, &transformErr) {
		t.Fatalf("error = %v, want *TransformationError", err)
	}
	var unknownErr *liftcontrol.UnknownMovementError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want wrapped *UnknownMovementError", err)
	}
}

func TestImportFiles_UnreadableFileFailsAlone(t *testing.T) {
	svc := testService(t)

	dir := t.TempDir()
	badPath := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(badPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.ImportFiles(context.Background(), []string{badPath})
	if err != nil {
		t.Fatalf("ImportFiles: %v", err)
	}
	if summary.Failed != 1 || summary.Succeeded != 0 {
		t.Errorf("summary = %+v, want 1 failed", summary)
	}
	var transformErr *TransformationError
	if !errors.As(summary.Files[0].Err, &transformErr) {
		t.Errorf("file error = %v, want *TransformationError", summary.Files[0].Err)
	}
}
