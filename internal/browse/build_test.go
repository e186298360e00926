package browse

import (
	"strings"
	"testing"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/script"
)

// TestBuildBssEntry exercises the full FixtureLayout -> Build -> Entry
// path with no script engine, confirming a bss span round-trips into one
// Entry whose body contains a dlabel and .space directive.
func TestBuildBssEntry(t *testing.T) {
	layout := FixtureLayout{
		BssVram: 0x80002000, BssVramEnd: 0x80002100,
		SegmentStart: 0x80000000, SegmentEnd: 0x80010000,
	}

	entries, events := Build(config.Default(), layout, nil)
	if len(events) != 0 {
		t.Fatalf("expected no diagnostics, got %v", events)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Address != 0x80002000 {
		t.Fatalf("expected address 0x80002000, got 0x%X", entries[0].Address)
	}
	if !strings.Contains(entries[0].Body, ".space 0x100") {
		t.Fatalf("expected .space 0x100 in body, got:\n%s", entries[0].Body)
	}
}

// TestBuildAppliesScriptNameHook confirms a script engine's nameSymbol
// hook actually changes the rendered label, not just the Entry.Name
// reported to the browser UI — the hook is applied before emission.
func TestBuildAppliesScriptNameHook(t *testing.T) {
	eng, err := script.New(`function nameSymbol(address, sectionType, typeName) {
		return "renamed_" + address.toString(16);
	}`)
	if err != nil {
		t.Fatalf("script.New: %v", err)
	}

	layout := FixtureLayout{
		BssVram: 0x80002000, BssVramEnd: 0x80002100,
		SegmentStart: 0x80000000, SegmentEnd: 0x80010000,
	}

	entries, _ := Build(config.Default(), layout, eng)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Name != "renamed_80002000" {
		t.Fatalf("expected renamed_80002000, got %q", entries[0].Name)
	}
	if !strings.Contains(entries[0].Body, "renamed_80002000") {
		t.Fatalf("expected rendered body to use the overridden name, got:\n%s", entries[0].Body)
	}
}

// TestBuildAppliesScriptGuesserOverride confirms overrideGuesserLevel
// actually reaches the rodata string guesser through Build, not just
// internal/script's own unit tests.
func TestBuildAppliesScriptGuesserOverride(t *testing.T) {
	eng, err := script.New(`function overrideGuesserLevel(address, defaultLevel) { return 0; }`)
	if err != nil {
		t.Fatalf("script.New: %v", err)
	}

	layout := FixtureLayout{
		RodataBytes: []byte("hi\x00\x00"), RodataVram: 0x80003000,
		SegmentStart: 0x80000000, SegmentEnd: 0x80010000,
	}

	entries, _ := Build(config.Default(), layout, eng)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Body, ".word 0x68690000") {
		t.Fatalf("expected guesser-disabled .word fallback, got:\n%s", entries[0].Body)
	}
}
