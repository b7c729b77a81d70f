package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/archivist/internal/model"
)

// IssueKind classifies one Doctor finding.
type IssueKind string

const (
	// IssueOrphanIndexRow is a doctor-index page row with no
	// corresponding file on disk.
	IssueOrphanIndexRow IssueKind = "orphan-index-row"

	// IssueCorruptSession is a session.json that failed to parse.
	IssueCorruptSession IssueKind = "corrupt-session"

	// IssueCorruptPage is a page file that failed to parse.
	IssueCorruptPage IssueKind = "corrupt-page"

	// IssueMissingField is a session.json missing a required field.
	IssueMissingField IssueKind = "missing-field"

	// IssueExpiredActive is a session still marked active well past the
	// configured session timeout, almost certainly abandoned by a crash.
	IssueExpiredActive IssueKind = "expired-active"

	// IssueOrphanSessionDir is a directory under sessions/ with no
	// session.json at all.
	IssueOrphanSessionDir IssueKind = "orphan-session-dir"

	// IssueMismatchedCount is a session whose session.json PagesScraped
	// disagrees with the number of page files actually readable on disk.
	// Fixing rewrites PagesScraped to the on-disk count, which is ground
	// truth. The SQLite index's page rows are not part of this check.
	IssueMismatchedCount IssueKind = "mismatched-count"
)

// Issue is one finding from Doctor.
type Issue struct {
	Kind      IssueKind
	SessionID model.SessionId
	Detail    string
	Fixed     bool
}

// Report summarizes a Doctor run.
type Report struct {
	Issues        []Issue
	SessionsSeen  int
	SessionsFixed int
}

// Doctor walks the cache looking for drift between the filesystem, the
// session metadata, and the doctor index, reporting what it finds. When
// fix is true, repairable issues are corrected: orphan index rows are
// deleted, corrupt page files are removed (the page is lost but no
// longer blocks loading the rest of the session), and sessions expired
// past sessionTimeout are marked failed so they stop showing as
// resumable.
func (s *Store) Doctor(fix bool, sessionTimeout time.Duration) (Report, error) {
	if sessionTimeout <= 0 {
		sessionTimeout = 24 * time.Hour
	}

	var report Report
	ctx := context.Background()

	entries, err := os.ReadDir(sessionsDir(s.root))
	if err != nil {
		return report, err
	}

	seenIDs := make(map[model.SessionId]bool)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id := model.SessionId(e.Name())
		seenIDs[id] = true
		report.SessionsSeen++

		meta, err := s.LoadSessionMeta(id)
		if err != nil {
			report.Issues = append(report.Issues, Issue{
				Kind: IssueOrphanSessionDir, SessionID: id,
				Detail: "session.json missing or unreadable: " + err.Error(),
			})
			continue
		}

		if meta.BaseURL == "" || meta.SessionID == "" {
			report.Issues = append(report.Issues, Issue{
				Kind: IssueMissingField, SessionID: id,
				Detail: "session.json is missing base_url or session_id",
			})
		}

		if meta.Status == model.StatusActive && nowFunc().Sub(meta.LastModified) > sessionTimeout {
			issue := Issue{
				Kind: IssueExpiredActive, SessionID: id,
				Detail: "active session has not progressed since " + meta.LastModified.Format(time.RFC3339),
			}
			if fix {
				if err := s.MarkFailed(id, "abandoned: exceeded session timeout"); err == nil {
					issue.Fixed = true
					report.SessionsFixed++
				}
			}
			report.Issues = append(report.Issues, issue)
		}

		names, err := s.pageFileNames(id)
		if err != nil {
			continue
		}
		validNames := make(map[string]bool, len(names))
		corrupt := 0
		for _, n := range names {
			validNames[n] = true
			var record model.PageRecord
			path := filepath.Join(s.pagesDir(id), n)
			if err := readJSON(path, &record); err != nil {
				corrupt++
				issue := Issue{
					Kind: IssueCorruptPage, SessionID: id,
					Detail: n + ": " + err.Error(),
				}
				if fix {
					_ = os.Remove(path)
					_ = os.Remove(path + ".gz")
					issue.Fixed = true
				}
				report.Issues = append(report.Issues, issue)
			}
		}

		if onDisk := len(names) - corrupt; meta.PagesScraped != onDisk {
			issue := Issue{
				Kind: IssueMismatchedCount, SessionID: id,
				Detail: fmt.Sprintf("session.json reports %d pages_scraped, %d page files on disk", meta.PagesScraped, onDisk),
			}
			if fix {
				if err := s.reconcilePageCount(id, onDisk); err == nil {
					issue.Fixed = true
					report.SessionsFixed++
				}
			}
			report.Issues = append(report.Issues, issue)
		}

		indexed, err := s.index.pagesForSession(ctx, id)
		if err != nil {
			continue
		}
		for _, p := range indexed {
			if validNames[p.FileName] {
				continue
			}
			issue := Issue{
				Kind: IssueOrphanIndexRow, SessionID: id,
				Detail: "index references missing file " + p.FileName,
			}
			if fix {
				_ = s.index.deletePage(ctx, id, p.URL)
				issue.Fixed = true
			}
			report.Issues = append(report.Issues, issue)
		}
	}

	// Sessions the index knows about but that no longer have a directory
	// at all are pure index drift; clean them up when fixing.
	indexedSessionIDs, err := s.index.allSessionIDs(ctx)
	if err == nil {
		for _, raw := range indexedSessionIDs {
			id := model.SessionId(raw)
			if seenIDs[id] {
				continue
			}
			issue := Issue{
				Kind: IssueOrphanIndexRow, SessionID: id,
				Detail: "index references a session directory that no longer exists",
			}
			if fix {
				_ = s.index.deleteSession(ctx, id)
				issue.Fixed = true
			}
			report.Issues = append(report.Issues, issue)
		}
	}

	return report, nil
}
