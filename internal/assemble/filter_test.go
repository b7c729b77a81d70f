package assemble

import (
	"testing"

	"github.com/nao1215/archivist/internal/model"
)

func TestSelectForAssemblyDropsTechnicalAndExcluded(t *testing.T) {
	records := []*model.PageRecord{
		{URL: "a", ContentType: "documentation"},
		{URL: "b", ContentType: "technical"},
		{URL: "c", ContentType: "content"},
		{URL: "d", ContentType: "excluded"},
		{URL: "e", ContentType: "low-quality"},
		{URL: "f", ContentType: "navigation"},
	}

	selected := SelectForAssembly(records)

	var urls []string
	for _, r := range selected {
		urls = append(urls, r.URL)
	}
	want := []string{"a", "c", "e", "f"}
	if len(urls) != len(want) {
		t.Fatalf("got %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}
