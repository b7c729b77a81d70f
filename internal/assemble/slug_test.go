package assemble

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Getting Started":  "getting-started",
		"Café Île de Ré":   "cafe-ile-de-re",
		"API v2.0 (Beta)!!": "api-v2-0-beta",
		"":                 "page",
		"---":               "page",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlugDeduperAppendsSuffix(t *testing.T) {
	d := NewSlugDeduper()
	first := d.Unique("Guide")
	second := d.Unique("Guide")
	third := d.Unique("Guide")

	if first != "guide" {
		t.Errorf("first = %q, want guide", first)
	}
	if second != "guide-2" {
		t.Errorf("second = %q, want guide-2", second)
	}
	if third != "guide-3" {
		t.Errorf("third = %q, want guide-3", third)
	}
}

func TestSlugDeduperDistinctBasesUnaffected(t *testing.T) {
	d := NewSlugDeduper()
	a := d.Unique("Alpha")
	b := d.Unique("Beta")
	if a == b {
		t.Errorf("distinct titles produced identical slugs: %q", a)
	}
}
