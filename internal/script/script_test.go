package script

import (
	"testing"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
)

func TestNameCallbackOverridesDefaultName(t *testing.T) {
	eng, err := New(`function nameSymbol(address, sectionType, typeName) {
		return "custom_" + address.toString(16);
	}`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !eng.HasNameHook() {
		t.Fatalf("expected nameSymbol hook to be detected")
	}

	sym := context.NewContextSymbol(0x80001000, context.SectionData)
	sym.SetNameCallback(eng.NameCallback())

	if got := sym.GetName(config.Default()); got != "custom_80001000" {
		t.Fatalf("expected custom_80001000, got %q", got)
	}
}

func TestNameCallbackAbsentLeavesDefaultName(t *testing.T) {
	eng, err := New(`var x = 1;`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if eng.HasNameHook() {
		t.Fatalf("expected no nameSymbol hook")
	}
	if eng.NameCallback() != nil {
		t.Fatalf("expected nil callback when script defines no hook")
	}
}

func TestOverrideGuesserLevel(t *testing.T) {
	eng, err := New(`function overrideGuesserLevel(address, defaultLevel) {
		if (address == 0x80003000) { return 3; }
		return defaultLevel;
	}`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := eng.OverrideGuesserLevel(0x80003000, config.GuesserOff); got != config.GuesserAllowEmpty {
		t.Fatalf("expected override to level 3, got %v", got)
	}
	if got := eng.OverrideGuesserLevel(0x80004000, config.GuesserUniqueNonEmpty); got != config.GuesserUniqueNonEmpty {
		t.Fatalf("expected default level preserved for unmatched address, got %v", got)
	}
}

func TestOverrideGuesserLevelOutOfRangeFallsBack(t *testing.T) {
	eng, err := New(`function overrideGuesserLevel(address, defaultLevel) { return 99; }`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := eng.OverrideGuesserLevel(0x80003000, config.GuesserAllowDuplicates); got != config.GuesserAllowDuplicates {
		t.Fatalf("expected fallback to default on out-of-range result, got %v", got)
	}
}
