package model

import "testing"

func TestPageRecordFlags(t *testing.T) {
	t.Parallel()

	t.Run("AddFlag is idempotent", func(t *testing.T) {
		t.Parallel()

		p := &PageRecord{}
		p.AddFlag("low-quality")
		p.AddFlag("low-quality")

		if len(p.Flags) != 1 {
			t.Fatalf("expected 1 flag, got %d: %v", len(p.Flags), p.Flags)
		}
		if !p.HasFlag("low-quality") {
			t.Fatal("expected HasFlag to find low-quality")
		}
	})

	t.Run("HasFlag false for absent flag", func(t *testing.T) {
		t.Parallel()

		p := &PageRecord{Flags: []string{"parse-error"}}
		if p.HasFlag("low-quality") {
			t.Fatal("expected HasFlag to be false for low-quality")
		}
	})
}

func TestPageRecordContentHash(t *testing.T) {
	t.Parallel()

	a := &PageRecord{URL: "https://example.org/a", Content: "<p>hi</p>"}
	b := &PageRecord{URL: "https://example.org/a", Content: "<p>hi</p>"}
	c := &PageRecord{URL: "https://example.org/b", Content: "<p>hi</p>"}

	if a.ContentHash() != b.ContentHash() {
		t.Fatal("identical records should hash identically")
	}
	if a.ContentHash() == c.ContentHash() {
		t.Fatal("records differing by URL should hash differently")
	}
}

func TestPreviewSessionMembership(t *testing.T) {
	t.Parallel()

	ps := &PreviewSession{
		ApprovedURLs: []string{"https://example.org/a"},
		ExcludedURLs: []string{"https://example.org/b"},
	}

	if !ps.Approved("https://example.org/a") {
		t.Fatal("expected a to be approved")
	}
	if ps.Approved("https://example.org/b") {
		t.Fatal("expected b not to be approved")
	}
	if !ps.Excluded("https://example.org/b") {
		t.Fatal("expected b to be excluded")
	}
}
