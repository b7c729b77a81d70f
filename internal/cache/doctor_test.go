package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/archivist/internal/model"
)

func TestDoctorFindsAndFixesCorruptPage(t *testing.T) {
	t.Parallel()
	store := openTestStore(t, false)
	id, _ := store.CreateSession(testSeed())
	if err := store.AppendPage(id, model.PageRecord{URL: "https://example.com/docs/a"}); err != nil {
		t.Fatalf("AppendPage: %v", err)
	}

	pagePath := filepath.Join(store.pagesDir(id), "page_000001.json")
	if err := os.WriteFile(pagePath, []byte("{not valid json"), 0o644); err != nil {
		t.Fatalf("corrupt page file: %v", err)
	}

	report, err := store.Doctor(false, time.Hour)
	if err != nil {
		t.Fatalf("Doctor: %v", err)
	}
	if !hasIssue(report, IssueCorruptPage) {
		t.Error("expected a corrupt-page issue to be reported")
	}

	fixedReport, err := store.Doctor(true, time.Hour)
	if err != nil {
		t.Fatalf("Doctor (fix): %v", err)
	}
	for _, issue := range fixedReport.Issues {
		if issue.Kind == IssueCorruptPage && !issue.Fixed {
			t.Error("expected corrupt-page issue to be marked fixed")
		}
	}
	if _, err := os.Stat(pagePath); !os.IsNotExist(err) {
		t.Error("expected corrupt page file to be removed")
	}
}

func TestDoctorFindsExpiredActiveSession(t *testing.T) {
	t.Parallel()
	store := openTestStore(t, false)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return base }
	id, _ := store.CreateSession(testSeed())

	nowFunc = func() time.Time { return base.Add(48 * time.Hour) }
	t.Cleanup(func() { nowFunc = time.Now })

	report, err := store.Doctor(true, 24*time.Hour)
	if err != nil {
		t.Fatalf("Doctor: %v", err)
	}
	if !hasIssue(report, IssueExpiredActive) {
		t.Error("expected an expired-active issue")
	}

	meta, _ := store.LoadSessionMeta(id)
	if meta.Status != model.StatusFailed {
		t.Errorf("Status = %q, want failed after doctor fix", meta.Status)
	}
}

func TestDoctorFindsOrphanIndexRow(t *testing.T) {
	t.Parallel()
	store := openTestStore(t, false)
	id, _ := store.CreateSession(testSeed())
	if err := store.AppendPage(id, model.PageRecord{URL: "https://example.com/docs/a"}); err != nil {
		t.Fatalf("AppendPage: %v", err)
	}

	pagePath := filepath.Join(store.pagesDir(id), "page_000001.json")
	if err := os.Remove(pagePath); err != nil {
		t.Fatalf("remove page file: %v", err)
	}

	report, err := store.Doctor(false, time.Hour)
	if err != nil {
		t.Fatalf("Doctor: %v", err)
	}
	if !hasIssue(report, IssueOrphanIndexRow) {
		t.Error("expected an orphan-index-row issue when a file backing an index entry is gone")
	}
}

func TestDoctorFindsAndFixesMismatchedCount(t *testing.T) {
	t.Parallel()
	store := openTestStore(t, false)
	id, _ := store.CreateSession(testSeed())
	if err := store.AppendPage(id, model.PageRecord{URL: "https://example.com/docs/a"}); err != nil {
		t.Fatalf("AppendPage: %v", err)
	}

	meta, err := store.LoadSessionMeta(id)
	if err != nil {
		t.Fatalf("LoadSessionMeta: %v", err)
	}
	meta.PagesScraped = 5
	if err := writeJSON(store.sessionFile(id), meta, store.cfg.Compression, store.cfg.CompressionLevel); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	report, err := store.Doctor(false, time.Hour)
	if err != nil {
		t.Fatalf("Doctor: %v", err)
	}
	if !hasIssue(report, IssueMismatchedCount) {
		t.Error("expected a mismatched-count issue when pages_scraped disagrees with files on disk")
	}

	if _, err := store.Doctor(true, time.Hour); err != nil {
		t.Fatalf("Doctor (fix): %v", err)
	}
	fixed, err := store.LoadSessionMeta(id)
	if err != nil {
		t.Fatalf("LoadSessionMeta after fix: %v", err)
	}
	if fixed.PagesScraped != 1 {
		t.Errorf("PagesScraped = %d after fix, want 1", fixed.PagesScraped)
	}
}

func hasIssue(report Report, kind IssueKind) bool {
	for _, issue := range report.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}
