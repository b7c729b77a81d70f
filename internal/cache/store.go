package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
)

const sessionIDTimeLayout = "20060102_150405"

// Store is the session cache: one Store serves every session under a
// single cache root directory, matching cache_manager.py's one
// CacheManager per run.
type Store struct {
	root  string
	cfg   archiveconfig.CacheConfig
	log   *slog.Logger
	index *index
}

// Open creates (if needed) the cache directory layout under root and
// opens the doctor index alongside it. Callers should Close the
// returned Store when done so the index connection is released.
func Open(root string, cfg archiveconfig.CacheConfig, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	for _, dir := range []string{root, sessionsDir(root), previewsDir(root)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
		}
	}

	idx, err := openIndex(filepath.Join(root, "index.sqlite"))
	if err != nil {
		return nil, err
	}

	return &Store{root: root, cfg: cfg, log: log, index: idx}, nil
}

// Close releases the doctor index's database connection.
func (s *Store) Close() error {
	return s.index.Close()
}

func sessionsDir(root string) string { return filepath.Join(root, "sessions") }
func previewsDir(root string) string { return filepath.Join(root, "previews") }

func (s *Store) sessionDir(id model.SessionId) string {
	return filepath.Join(sessionsDir(s.root), string(id))
}

func (s *Store) pagesDir(id model.SessionId) string {
	return filepath.Join(s.sessionDir(id), "pages")
}

func (s *Store) sessionFile(id model.SessionId) string {
	return filepath.Join(s.sessionDir(id), "session.json")
}

func (s *Store) seedFile(id model.SessionId) string {
	return filepath.Join(s.sessionDir(id), "seed.json")
}

// CreateSession starts a new session for seed and returns its ID. The ID
// embeds the seed host, the creation time, and a short slice of the
// config digest, so an operator browsing the sessions directory can tell
// sessions apart without opening session.json, matching
// _generate_session_id's domain_timestamp_confighash shape.
func (s *Store) CreateSession(seed model.SeedContext) (model.SessionId, error) {
	digest := seed.ConfigDigest
	if digest == "" {
		digest = "00000000"
	}
	shortDigest := digest
	if len(shortDigest) > 8 {
		shortDigest = shortDigest[:8]
	}

	id := model.SessionId(fmt.Sprintf("%s_%s_%s_%s",
		hostSlug(seed.BaseURL),
		nowFunc().Format(sessionIDTimeLayout),
		shortDigest,
		uuid.New().String()[:8],
	))

	dir := s.sessionDir(id)
	if err := os.MkdirAll(filepath.Join(dir, "pages"), 0o750); err != nil {
		return "", fmt.Errorf("create session directory: %w", err)
	}

	now := nowFunc()
	meta := model.SessionMetadata{
		SessionID:       id,
		BaseURL:         seed.BaseURL,
		Status:          model.StatusActive,
		CreatedAt:       now,
		LastModified:    now,
		ConfigHash:      digest,
		CacheVersion:    model.CurrentCacheVersion,
		ExcludePatterns: seed.ExcludePatterns,
	}

	if err := writeJSON(s.sessionFile(id), meta, s.cfg.Compression, s.cfg.CompressionLevel); err != nil {
		return "", fmt.Errorf("write session metadata: %w", err)
	}
	if err := writeJSON(s.seedFile(id), seed, s.cfg.Compression, s.cfg.CompressionLevel); err != nil {
		return "", fmt.Errorf("write seed context: %w", err)
	}

	if err := s.index.upsertSession(context.Background(), id, meta.Status, meta.LastModified); err != nil {
		s.log.Warn("doctor index: failed to record session", "session", id, "error", err)
	}

	s.log.Info("created cache session", "session", id, "base_url", seed.BaseURL)
	return id, nil
}

// nowFunc is indirected so tests can pin a deterministic clock.
var nowFunc = time.Now

// LoadSessionMeta reads a session's metadata without its pages, used by
// callers that only need status/progress (list, doctor, find-compatible).
func (s *Store) LoadSessionMeta(id model.SessionId) (model.SessionMetadata, error) {
	var meta model.SessionMetadata
	if err := readJSON(s.sessionFile(id), &meta); err != nil {
		return model.SessionMetadata{}, fmt.Errorf("load session %s: %w", id, err)
	}
	return meta, nil
}

// LoadSeed reads the SeedContext a session was created from.
func (s *Store) LoadSeed(id model.SessionId) (model.SeedContext, error) {
	var seed model.SeedContext
	if err := readJSON(s.seedFile(id), &seed); err != nil {
		return model.SeedContext{}, fmt.Errorf("load seed for %s: %w", id, err)
	}
	return seed, nil
}

// LoadSession reads a session's metadata plus every page recorded so
// far, in the order they were appended. Corrupt page files are skipped
// and logged rather than failing the whole load, so a crash that
// damaged one page doesn't block resuming the rest of the session.
func (s *Store) LoadSession(id model.SessionId) (model.SessionMetadata, []model.PageRecord, error) {
	meta, err := s.LoadSessionMeta(id)
	if err != nil {
		return model.SessionMetadata{}, nil, err
	}

	names, err := s.pageFileNames(id)
	if err != nil {
		return meta, nil, fmt.Errorf("list pages for %s: %w", id, err)
	}

	records := make([]model.PageRecord, 0, len(names))
	for _, name := range names {
		var record model.PageRecord
		path := filepath.Join(s.pagesDir(id), name)
		if err := readJSON(path, &record); err != nil {
			s.log.Warn("skipping corrupt page file", "session", id, "file", name, "error", err)
			continue
		}
		records = append(records, record)
	}

	return meta, records, nil
}

// pageFileNames lists page_NNNNNN.json[.gz] files for a session, sorted
// by index so callers get pages back in fetch order. Both encodings of
// the same index are deduplicated, preferring the compressed file.
func (s *Store) pageFileNames(id model.SessionId) ([]string, error) {
	entries, err := os.ReadDir(s.pagesDir(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".gz")
		if !strings.HasPrefix(name, "page_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// AppendPage writes one page to the session, skipping the write if the
// URL was already recorded so a resumed crawl re-fetching in-flight
// pages doesn't duplicate cache entries. Index position is strictly
// increasing: a new page takes the number after the highest existing
// page file, so the Nth distinct URL appended becomes page_00000N.json
// as long as no page file has been removed.
func (s *Store) AppendPage(id model.SessionId, record model.PageRecord) error {
	names, err := s.pageFileNames(id)
	if err != nil {
		return fmt.Errorf("list existing pages: %w", err)
	}

	if s.pageAlreadyRecorded(id, record.URL) {
		return nil
	}

	nextIndex := len(names) + 1
	if len(names) > 0 {
		var last int
		if _, err := fmt.Sscanf(names[len(names)-1], "page_%d.json", &last); err == nil && last >= nextIndex {
			nextIndex = last + 1
		}
	}
	fileName := fmt.Sprintf("page_%06d.json", nextIndex)
	path := filepath.Join(s.pagesDir(id), fileName)

	if record.Timestamp.IsZero() {
		record.Timestamp = nowFunc()
	}

	if err := writeJSON(path, record, s.cfg.Compression, s.cfg.CompressionLevel); err != nil {
		return fmt.Errorf("write page file: %w", err)
	}

	if err := s.bumpProgress(id); err != nil {
		return fmt.Errorf("update session progress: %w", err)
	}

	if err := s.index.upsertPage(context.Background(), id, record.URL, fileName, record.ContentHash()); err != nil {
		s.log.Warn("doctor index: failed to record page", "session", id, "url", record.URL, "error", err)
	}

	return nil
}

// pageAlreadyRecorded consults the doctor index for a prior page with
// this URL. If the index is unavailable, it fails open (records again)
// rather than reading and hashing every existing page file, matching the
// index's advisory role: a false negative here just means one duplicate
// page write, not data loss.
func (s *Store) pageAlreadyRecorded(id model.SessionId, url string) bool {
	pages, err := s.index.pagesForSession(context.Background(), id)
	if err != nil {
		return false
	}
	for _, p := range pages {
		if p.URL == url {
			return true
		}
	}
	return false
}

func (s *Store) bumpProgress(id model.SessionId) error {
	meta, err := s.LoadSessionMeta(id)
	if err != nil {
		return err
	}
	meta.PagesScraped++
	meta.LastModified = nowFunc()
	meta.CacheSize = s.dirSize(s.sessionDir(id))

	if err := writeJSON(s.sessionFile(id), meta, s.cfg.Compression, s.cfg.CompressionLevel); err != nil {
		return err
	}
	return s.index.upsertSession(context.Background(), id, meta.Status, meta.LastModified)
}

// reconcilePageCount rewrites meta.PagesScraped to match the number of
// page files actually on disk for id. Used by Doctor to fix drift between
// session.json and the filesystem (e.g. after a crash mid-write, or after
// Doctor itself removed corrupt page files).
func (s *Store) reconcilePageCount(id model.SessionId, actual int) error {
	meta, err := s.LoadSessionMeta(id)
	if err != nil {
		return err
	}
	meta.PagesScraped = actual
	meta.LastModified = nowFunc()
	return writeJSON(s.sessionFile(id), meta, s.cfg.Compression, s.cfg.CompressionLevel)
}

// MarkComplete transitions a session to completed.
func (s *Store) MarkComplete(id model.SessionId) error {
	return s.transition(id, model.StatusCompleted, "")
}

// MarkFailed transitions a session to failed, recording reason.
func (s *Store) MarkFailed(id model.SessionId, reason string) error {
	return s.transition(id, model.StatusFailed, reason)
}

func (s *Store) transition(id model.SessionId, status model.SessionStatus, reason string) error {
	meta, err := s.LoadSessionMeta(id)
	if err != nil {
		return err
	}
	meta.Status = status
	meta.Reason = reason
	meta.LastModified = nowFunc()
	if status != model.StatusActive {
		completedAt := meta.LastModified
		meta.CompletedAt = &completedAt
	}

	if err := writeJSON(s.sessionFile(id), meta, s.cfg.Compression, s.cfg.CompressionLevel); err != nil {
		return err
	}
	return s.index.upsertSession(context.Background(), id, meta.Status, meta.LastModified)
}

// Reactivate transitions a non-active session back to active and clears
// its failure reason and completion timestamp, used by Resume to
// continue a session the orchestrator previously marked failed
// (cancelled or otherwise) or completed-with-new-config.
func (s *Store) Reactivate(id model.SessionId) error {
	meta, err := s.LoadSessionMeta(id)
	if err != nil {
		return err
	}
	meta.Status = model.StatusActive
	meta.Reason = ""
	meta.CompletedAt = nil
	meta.LastModified = nowFunc()

	if err := writeJSON(s.sessionFile(id), meta, s.cfg.Compression, s.cfg.CompressionLevel); err != nil {
		return err
	}
	return s.index.upsertSession(context.Background(), id, meta.Status, meta.LastModified)
}

// DeleteSession removes a session's directory and its doctor index rows.
func (s *Store) DeleteSession(id model.SessionId) error {
	if err := os.RemoveAll(s.sessionDir(id)); err != nil {
		return fmt.Errorf("remove session directory: %w", err)
	}
	return s.index.deleteSession(context.Background(), id)
}

// ListSessions returns every session's metadata, newest last-modified
// first.
func (s *Store) ListSessions() ([]model.SessionMetadata, error) {
	entries, err := os.ReadDir(sessionsDir(s.root))
	if err != nil {
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	var metas []model.SessionMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id := model.SessionId(e.Name())
		meta, err := s.LoadSessionMeta(id)
		if err != nil {
			s.log.Warn("skipping unreadable session", "session", id, "error", err)
			continue
		}
		meta.CacheSize = s.dirSize(s.sessionDir(id))
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].LastModified.After(metas[j].LastModified)
	})
	return metas, nil
}

func (s *Store) dirSize(dir string) int64 {
	var total int64
	_ = filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}

// FindCompatibleSession returns the most recently modified active
// session crawling baseURL under the same config digest, if one exists.
func (s *Store) FindCompatibleSession(baseURL, configDigest string) (model.SessionId, bool, error) {
	metas, err := s.ListSessions()
	if err != nil {
		return "", false, err
	}
	for _, meta := range metas {
		if meta.Status == model.StatusActive && meta.BaseURL == baseURL && meta.ConfigHash == configDigest {
			return meta.SessionID, true, nil
		}
	}
	return "", false, nil
}

// CleanupOldSessions removes sessions last modified more than maxAgeDays
// ago, always keeping the keepCompleted most recently modified completed
// sessions regardless of age. It returns the number of sessions removed.
func (s *Store) CleanupOldSessions(maxAgeDays, keepCompleted int) (int, error) {
	metas, err := s.ListSessions()
	if err != nil {
		return 0, err
	}

	var completed []model.SessionMetadata
	for _, m := range metas {
		if m.Status == model.StatusCompleted {
			completed = append(completed, m)
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].LastModified.After(completed[j].LastModified) })

	keep := make(map[model.SessionId]bool)
	for i, m := range completed {
		if i >= keepCompleted {
			break
		}
		keep[m.SessionID] = true
	}

	cutoff := nowFunc().AddDate(0, 0, -maxAgeDays)
	cleaned := 0
	for _, m := range metas {
		if keep[m.SessionID] {
			continue
		}
		if m.LastModified.Before(cutoff) {
			if err := s.DeleteSession(m.SessionID); err != nil {
				s.log.Warn("cleanup: failed to remove session", "session", m.SessionID, "error", err)
				continue
			}
			cleaned++
			s.log.Info("cleaned up old session", "session", m.SessionID)
		}
	}
	return cleaned, nil
}

// Stats summarizes the cache's contents across all sessions.
type Stats struct {
	TotalSessions      int
	ActiveSessions     int
	CompletedSessions  int
	FailedSessions     int
	TotalCacheSize     int64
	CacheDirectory     string
	CompressionEnabled bool
}

// GetCacheStats reports aggregate counts and total on-disk size across
// every session.
func (s *Store) GetCacheStats() (Stats, error) {
	metas, err := s.ListSessions()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		CacheDirectory:     s.root,
		CompressionEnabled: s.cfg.Compression,
	}
	for _, m := range metas {
		stats.TotalSessions++
		stats.TotalCacheSize += m.CacheSize
		switch m.Status {
		case model.StatusActive:
			stats.ActiveSessions++
		case model.StatusCompleted:
			stats.CompletedSessions++
		case model.StatusFailed:
			stats.FailedSessions++
		}
	}
	return stats, nil
}
