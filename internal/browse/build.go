package browse

import (
	"encoding/binary"
	"sort"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
	"github.com/decomp-toolkit/spimdisasm/internal/diag"
	"github.com/decomp-toolkit/spimdisasm/internal/emit"
	"github.com/decomp-toolkit/spimdisasm/internal/mips"
	"github.com/decomp-toolkit/spimdisasm/internal/script"
	"github.com/decomp-toolkit/spimdisasm/internal/section"
)

// FixtureLayout is the byte-slices-plus-vrams wiring cmd/spimdis and
// cmd/spimbrowse both build from; any section may be nil/zero-length if
// not present in the fixture.
type FixtureLayout struct {
	TextBytes   []byte
	TextVram    uint32
	DataBytes   []byte
	DataVram    uint32
	RodataBytes []byte
	RodataVram  uint32
	BssVram     uint32
	BssVramEnd  uint32

	SegmentStart uint32
	SegmentEnd   uint32
}

// wordsFromBytes decodes a section's raw bytes into big-endian 32-bit
// words. Config.Endian is not consulted here, so little- and
// middle-endian fixtures are read as big-endian.
func wordsFromBytes(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[i*4 : i*4+4])
	}
	return words
}

// applyNameHook registers eng's nameSymbol hook (spec.md §4.2) on every
// symbol a section just produced, before that section is rendered, so the
// rendered text reflects the override rather than the default name.
func applyNameHook(seg *context.Segment, eng *script.Engine, vramStart, vramEnd uint32) {
	if eng == nil || !eng.HasNameHook() {
		return
	}
	cb := eng.NameCallback()
	for _, sym := range seg.GetSymbolsRange(vramStart, vramEnd) {
		sym.SetNameCallback(cb)
	}
}

// sectionConfig applies eng's overrideGuesserLevel hook (spec.md §4.2) to
// the string-guesser levels a whole fixture section will use, keyed by
// that section's starting vram. A nil eng leaves cfg untouched.
func sectionConfig(cfg config.Config, eng *script.Engine, vram uint32) config.Config {
	if eng == nil {
		return cfg
	}
	cfg.RodataStringGuesserLevel = eng.OverrideGuesserLevel(vram, cfg.RodataStringGuesserLevel)
	cfg.DataStringGuesserLevel = eng.OverrideGuesserLevel(vram, cfg.DataStringGuesserLevel)
	return cfg
}

// Build runs the text/data/rodata/bss analyzers over a FixtureLayout and
// renders every recovered symbol's assembly body, ready to hand to
// NewModel. This is the shared wiring behind `spimdis analyze`, `spimdis
// browse`, and cmd/spimbrowse's standalone entry point. eng may be nil,
// in which case the naming/guesser-override hooks are simply not
// consulted. Diagnostics raised during analysis are returned alongside
// the entries so a caller can drain them into internal/log.
func Build(cfg config.Config, layout FixtureLayout, eng *script.Engine) ([]Entry, []*diag.Event) {
	ctx := context.NewContext()
	seg := ctx.AddSegment(layout.SegmentStart, layout.SegmentEnd, "")
	collector := diag.NewCollector()
	emitter := emit.NewEmitter(cfg)

	var entries []Entry

	if len(layout.TextBytes) > 0 {
		textCfg := sectionConfig(cfg, eng, layout.TextVram)
		sec := &section.TextSection{Base: section.Base{
			Context: ctx, Segment: seg, Config: textCfg, Diag: collector,
			Vram: layout.TextVram, Words: wordsFromBytes(layout.TextBytes), Bytes: layout.TextBytes,
		}}
		sec.Analyze(mips.NewRefDecoder())
		vramEnd := layout.TextVram + uint32(len(layout.TextBytes))
		applyNameHook(seg, eng, layout.TextVram, vramEnd)
		entries = append(entries, entriesFromSection(textCfg, seg, ".text", layout.TextVram, vramEnd, emitter.EmitText(sec))...)
	}

	if len(layout.DataBytes) > 0 {
		dataCfg := sectionConfig(cfg, eng, layout.DataVram)
		sec := &section.DataSection{Base: section.Base{
			Context: ctx, Segment: seg, Config: dataCfg, Diag: collector,
			Vram: layout.DataVram, Words: wordsFromBytes(layout.DataBytes), Bytes: layout.DataBytes,
		}}
		sec.Analyze()
		vramEnd := layout.DataVram + uint32(len(layout.DataBytes))
		applyNameHook(seg, eng, layout.DataVram, vramEnd)
		entries = append(entries, entriesFromSection(dataCfg, seg, ".data", layout.DataVram, vramEnd, emit.NewEmitter(dataCfg).EmitData(sec))...)
	}

	if len(layout.RodataBytes) > 0 {
		rodataCfg := sectionConfig(cfg, eng, layout.RodataVram)
		sec := &section.DataSection{IsRodata: true, Base: section.Base{
			Context: ctx, Segment: seg, Config: rodataCfg, Diag: collector,
			Vram: layout.RodataVram, Words: wordsFromBytes(layout.RodataBytes), Bytes: layout.RodataBytes,
		}}
		sec.Analyze()
		vramEnd := layout.RodataVram + uint32(len(layout.RodataBytes))
		applyNameHook(seg, eng, layout.RodataVram, vramEnd)
		entries = append(entries, entriesFromSection(rodataCfg, seg, ".rodata", layout.RodataVram, vramEnd, emit.NewEmitter(rodataCfg).EmitRodata(sec))...)
	}

	if layout.BssVramEnd > layout.BssVram {
		sec := &section.BssSection{Base: section.Base{
			Context: ctx, Segment: seg, Config: cfg, Diag: collector, Vram: layout.BssVram,
		}, VramEnd: layout.BssVramEnd}
		sec.Analyze()
		applyNameHook(seg, eng, layout.BssVram, layout.BssVramEnd)
		entries = append(entries, entriesFromSection(cfg, seg, ".bss", layout.BssVram, layout.BssVramEnd, emitter.EmitBss(sec))...)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Address < entries[j].Address })
	return entries, collector.Events()
}

// entriesFromSection splits one section's full rendering into per-symbol
// Entry values, pairing each body (keyed by label name) with the matching
// ContextSymbol's real vram from the segment rather than re-parsing
// addresses out of rendered text.
func entriesFromSection(cfg config.Config, seg *context.Segment, sectionName string, vramStart, vramEnd uint32, rendered string) []Entry {
	bodies := SplitBodies(rendered)

	entries := make([]Entry, 0, len(bodies))
	for _, sym := range seg.GetSymbolsRange(vramStart, vramEnd) {
		name := sym.GetName(cfg)
		body, ok := bodies[name]
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Name:    name,
			Address: sym.Address,
			Section: sectionName,
			Body:    body,
		})
	}
	return entries
}
