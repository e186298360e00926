package browse

import (
	"strings"
	"testing"
)

func TestSplitBodiesSeparatesLabels(t *testing.T) {
	rendered := strings.Join([]string{
		"glabel func_80000000",
		"/* 000000 80000000 00000000 */  nop",
		".size func_80000000, . - func_80000000",
		"glabel func_80000010",
		"/* 000010 80000010 03E00008 */  jr $ra",
		".size func_80000010, . - func_80000010",
	}, "\n")

	bodies := SplitBodies(rendered)
	if len(bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d: %v", len(bodies), bodies)
	}
	if !strings.Contains(bodies["func_80000000"], "nop") {
		t.Fatalf("expected first body to contain nop, got:\n%s", bodies["func_80000000"])
	}
	if !strings.Contains(bodies["func_80000010"], "jr $ra") {
		t.Fatalf("expected second body to contain jr, got:\n%s", bodies["func_80000010"])
	}
	if strings.Contains(bodies["func_80000000"], "func_80000010") {
		t.Fatalf("first body leaked into second:\n%s", bodies["func_80000000"])
	}
}

func TestEntriesFromBodiesSkipsMissing(t *testing.T) {
	names := []Entry{
		{Name: "a", Address: 0x1000, Section: ".text"},
		{Name: "b", Address: 0x1010, Section: ".text"},
	}
	bodies := map[string]string{"a": "nop"}

	entries := EntriesFromBodies(names, bodies)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Name != "a" || entries[0].Body != "nop" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestHighlightPassthroughWhenDisabled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	body := "glabel foo\nnop\n"
	if got := Highlight(body); got != body {
		t.Fatalf("expected passthrough under NO_COLOR, got %q", got)
	}
}

func TestHighlightEmptyBody(t *testing.T) {
	if got := Highlight(""); got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
}
