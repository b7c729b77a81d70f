package cache

import (
	"testing"

	"github.com/nao1215/archivist/internal/archiveconfig"
)

func TestConfigDigestStableAndSensitiveToRelevantFields(t *testing.T) {
	t.Parallel()

	cfg := archiveconfig.NewConfig()
	d1 := ConfigDigest(cfg)
	d2 := ConfigDigest(cfg)
	if d1 != d2 {
		t.Errorf("digest not stable: %q vs %q", d1, d2)
	}

	cfg.Crawling.MaxDepth++
	d3 := ConfigDigest(cfg)
	if d3 == d1 {
		t.Error("expected digest to change when crawling config changes")
	}
}

func TestConfigDigestIgnoresUnrelatedFields(t *testing.T) {
	t.Parallel()

	cfg := archiveconfig.NewConfig()
	before := ConfigDigest(cfg)

	cfg.PDF.OutputFilename = "custom.pdf"
	cfg.ConfigFilePath = "/tmp/whatever.yaml"
	after := ConfigDigest(cfg)

	if before != after {
		t.Error("expected digest to ignore output/ambient settings")
	}
}

func TestHostSlug(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://www.example.com/docs": "example_com",
		"https://docs.example.org":     "docs_example_org",
		"not a url at all":             "not_a_url_at_all",
	}
	for in, want := range cases {
		if got := hostSlug(in); got != want {
			t.Errorf("hostSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
