package context

import (
	"bytes"
	"strings"
	"testing"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
)

func TestContextRunIDUnique(t *testing.T) {
	a := NewContext()
	b := NewContext()
	if a.RunID == b.RunID {
		t.Fatalf("expected distinct RunIDs across contexts")
	}
}

func TestFindSegmentOverlayDisambiguation(t *testing.T) {
	c := NewContext()
	c.AddSegment(0x80000000, 0x80010000, "overlay_a")
	c.AddSegment(0x80000000, 0x80010000, "overlay_b")

	a := c.FindSegment(0x80000100, "overlay_a")
	b := c.FindSegment(0x80000100, "overlay_b")
	if a == nil || b == nil || a == b {
		t.Fatalf("expected two distinct segments disambiguated by overlay category")
	}
}

func TestWriteCSVHeaderAndRow(t *testing.T) {
	c := NewContext()
	seg := c.AddSegment(0x80000000, 0x80001000, "")
	sym := seg.AddSymbol(0x80000100, SectionData, true)
	sym.SetName("foo")

	cfg := config.Default()
	var buf bytes.Buffer
	if err := c.WriteCSV(&buf, func(s *ContextSymbol) string { return s.GetName(cfg) }); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, strings.Join(csvHeader, ",")) {
		t.Fatalf("expected CSV header first, got %q", out)
	}
	if !strings.Contains(out, "foo") {
		t.Fatalf("expected symbol name in CSV output, got %q", out)
	}
}

func TestWriteCSVDeterministic(t *testing.T) {
	build := func() *Context {
		c := NewContext()
		seg := c.AddSegment(0x80000000, 0x80001000, "")
		seg.AddSymbol(0x80000200, SectionData, true)
		seg.AddSymbol(0x80000100, SectionData, true)
		return c
	}
	cfg := config.Default()
	namer := func(s *ContextSymbol) string { return s.GetName(cfg) }

	var a, b bytes.Buffer
	if err := build().WriteCSV(&a, namer); err != nil {
		t.Fatal(err)
	}
	if err := build().WriteCSV(&b, namer); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Fatalf("expected deterministic CSV output across independent builds")
	}
}
