package context

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
)

// Context is the top-level owner of one or more Segments, shared across
// every section analyzer in a run (spec.md §3.1, §4.1). Each Context
// carries a freshly minted RunID (see SPEC_FULL.md's DOMAIN STACK entry
// for google/uuid); diag.Events and log lines are not tagged with it.
type Context struct {
	RunID uuid.UUID

	segments []*Segment
}

// NewContext returns an empty Context with a freshly minted RunID.
func NewContext() *Context {
	return &Context{RunID: uuid.New()}
}

// AddSegment registers a new Segment with the context and returns it.
func (c *Context) AddSegment(vramStart, vramEnd uint32, overlayCategory string) *Segment {
	seg := NewSegment(vramStart, vramEnd, overlayCategory)
	c.segments = append(c.segments, seg)
	return seg
}

// Segments returns every registered segment.
func (c *Context) Segments() []*Segment {
	return c.segments
}

// FindSegment returns the (first) segment whose [VramStart, VramEnd)
// contains vram and whose OverlayCategory matches category, or nil. An
// empty category matches any segment (spec.md §3.2: overlapping vram
// ranges are disambiguated by overlay category).
func (c *Context) FindSegment(vram uint32, category string) *Segment {
	for _, seg := range c.segments {
		if !seg.IsVramInRange(vram) {
			continue
		}
		if category == "" || seg.OverlayCategory == category {
			return seg
		}
	}
	return nil
}

// DeclareUserSymbol registers a user-provided symbol (spec.md §3.3,
// lifecycle (a)): name/type/size may be nil/zero-value to leave that
// slot unset. The user slot, once declared, is never overwritten by
// analysis.
func (c *Context) DeclareUserSymbol(seg *Segment, address uint32, section SectionType, name string, typ *TypeSlot, size *uint32) *ContextSymbol {
	sym := seg.AddSymbol(address, section, false)
	sym.IsUserDeclared = true
	sym.IsDefined = true
	if name != "" {
		sym.SetName(name)
	}
	if typ != nil {
		sym.SetUserDeclaredType(*typ)
	}
	if size != nil {
		sym.SetUserDeclaredSize(*size)
	}
	return sym
}

// csvHeader is the schema documented by spec.md §6.3's CSV dump.
var csvHeader = []string{
	"address", "vrom", "section", "name", "type", "size",
	"is_defined", "is_user_declared", "is_autogenerated",
	"overlay_category", "reference_counter",
}

// SymbolNamer resolves a symbol's display name, typically a closure over
// ContextSymbol.GetName with a fixed config.Config.
type SymbolNamer func(sym *ContextSymbol) string

// WriteCSV dumps every symbol across every segment with its full field
// set, per spec.md §6.3.
func (c *Context) WriteCSV(w io.Writer, name SymbolNamer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, seg := range c.segments {
		for _, sym := range seg.AllSymbolsSorted() {
			vrom := ""
			if sym.VromAddress != nil {
				vrom = fmt.Sprintf("0x%X", *sym.VromAddress)
			}
			typ := ""
			if t := sym.EffectiveType(); t.IsSet() {
				if t.Special().isSet() {
					typ = t.Special().String()
				} else {
					typ = t.Name()
				}
			}
			row := []string{
				fmt.Sprintf("0x%X", sym.Address),
				vrom,
				sym.SectionType.String(),
				name(sym),
				typ,
				strconv.FormatUint(uint64(sym.GetSize()), 10),
				strconv.FormatBool(sym.IsDefined),
				strconv.FormatBool(sym.IsUserDeclared),
				strconv.FormatBool(sym.IsAutogenerated),
				sym.OverlayCategory,
				strconv.Itoa(sym.ReferenceCounter),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row for 0x%X: %w", sym.Address, err)
			}
		}
	}
	return cw.Error()
}
