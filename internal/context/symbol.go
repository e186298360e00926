// Package context implements the Segment/Context layer of spec.md §4.1
// and the ContextSymbol descriptor of spec.md §4.2: the authoritative,
// shared symbol registry every section analyzer reads from and writes
// into. Grounded on the teacher's internal/emulator (ELF segment/symbol
// bookkeeping, internal/emulator/elf.go) and internal/emulator/vtable.go
// (sorted-range lookups), generalized from "symbols found while loading
// one ELF" to "symbols discovered across a whole analysis run".
package context

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
)

// SectionType identifies which section (if any) a symbol belongs to.
type SectionType int

const (
	SectionUnknown SectionType = iota
	SectionText
	SectionData
	SectionRodata
	SectionBss
	SectionReloc
	SectionGccExceptTable
)

func (s SectionType) String() string {
	switch s {
	case SectionText:
		return "text"
	case SectionData:
		return "data"
	case SectionRodata:
		return "rodata"
	case SectionBss:
		return "bss"
	case SectionReloc:
		return "reloc"
	case SectionGccExceptTable:
		return "gccexcepttable"
	default:
		return "unknown"
	}
}

// SpecialType is the closed set of "special" type tags a symbol can carry
// instead of a free-form type name (spec.md §3.1).
type SpecialType int

const (
	SpecialNone SpecialType = iota
	SpecialFunction
	SpecialBranchLabel
	SpecialJumpTable
	SpecialJumpTableLabel
	SpecialHardwareReg
	SpecialConstant
	SpecialGccExceptTable
	SpecialGccExceptTableLabel
)

func (s SpecialType) String() string {
	switch s {
	case SpecialFunction:
		return "function"
	case SpecialBranchLabel:
		return "branchlabel"
	case SpecialJumpTable:
		return "jumptable"
	case SpecialJumpTableLabel:
		return "jumptablelabel"
	case SpecialHardwareReg:
		return "hardwarereg"
	case SpecialConstant:
		return "constant"
	case SpecialGccExceptTable:
		return "gccexcepttable"
	case SpecialGccExceptTableLabel:
		return "gccexcepttablelabel"
	default:
		return ""
	}
}

// specialRank implements the precedence lattice of spec.md §4.1:
// function > jumptablelabel > branchlabel, and function > jumptable.
// Higher rank wins; unrelated tags (e.g. hardwarereg vs function) are
// never compared by this lattice, callers only consult it when upgrading
// within the branch-label/jumptable-label/function family.
func specialRank(s SpecialType) int {
	switch s {
	case SpecialFunction:
		return 3
	case SpecialJumpTableLabel:
		return 2
	case SpecialBranchLabel:
		return 1
	case SpecialJumpTable:
		return 1
	default:
		return 0
	}
}

// TypeSlot is one slot of the two-slot type lattice (user vs autodetected
// described in spec.md §3.1): either a special tag or a free-form,
// interned type name such as "u32", "f32", "char*", "Vec3f".
type TypeSlot struct {
	set     bool
	special SpecialType
	name    string
}

// IsSet reports whether this slot has been written.
func (t TypeSlot) IsSet() bool { return t.set }

// Special returns the special tag held by this slot, if any.
func (t TypeSlot) Special() SpecialType { return t.special }

// Name returns the free-form type name held by this slot, if any.
func (t TypeSlot) Name() string { return t.name }

// SpecialSlot returns a TypeSlot holding a special tag.
func SpecialSlot(s SpecialType) TypeSlot { return TypeSlot{set: true, special: s} }

// NamedSlot returns a TypeSlot holding a free-form type name.
func NamedSlot(name string) TypeSlot { return TypeSlot{set: true, name: name} }

// AccessType is the widest memory-access instruction kind that has been
// observed referencing a symbol.
type AccessType int

const (
	AccessNone AccessType = iota
	AccessByte
	AccessShort
	AccessWord
	AccessDoubleword
	AccessFloat
	AccessDoubleFloat
)

// accessKind describes one row of the access-kind table in spec.md §4.2.
type accessKind struct {
	size      uint32
	align     uint32
	isFloat   bool
	isDouble  bool
}

var accessKindTable = map[AccessType]accessKind{
	AccessByte:        {size: 1, align: 1},
	AccessShort:       {size: 2, align: 2},
	AccessWord:        {size: 4, align: 4},
	AccessDoubleword:  {size: 8, align: 8},
	AccessFloat:       {size: 4, align: 4, isFloat: true},
	AccessDoubleFloat: {size: 8, align: 8, isDouble: true},
}

// namedTypeSizes resolves a handful of well-known free-form type names to
// their size/alignment/float-ness, used by getSize()'s third precedence
// tier and by the isFloat/isDouble/isByte/isShort predicates.
var namedTypeSizes = map[string]accessKind{
	"s8": {size: 1, align: 1}, "u8": {size: 1, align: 1},
	"s16": {size: 2, align: 2}, "u16": {size: 2, align: 2},
	"s32": {size: 4, align: 4}, "u32": {size: 4, align: 4},
	"s64": {size: 8, align: 8}, "u64": {size: 8, align: 8},
	"f32":   {size: 4, align: 4, isFloat: true},
	"f64":   {size: 8, align: 8, isDouble: true},
	"Vec3f": {size: 4, align: 4, isFloat: true},
	"char*": {size: 4, align: 4},
}

// NameCallback lets a caller override default name synthesis (spec.md
// §4.2's "if a callback is registered, call it"). See internal/script for
// a goja-backed implementation.
type NameCallback func(sym *ContextSymbol) string

// ContextSymbol is the central record of spec.md §3.1.
type ContextSymbol struct {
	Address     uint32
	VromAddress *uint32
	SectionType SectionType

	name         *string
	nameCallback NameCallback

	userDeclaredType TypeSlot
	autodetectedType TypeSlot

	AccessType         AccessType
	UnsignedAccessType bool

	userDeclaredSize *uint32
	autodetectedSize *uint32

	IsDefined                          bool
	IsUserDeclared                      bool
	IsAutogenerated                    bool
	IsMaybeString                       bool
	FailedStringDecoding                bool
	IsMaybePascalString                 bool
	IsAutoCreatedPad                    bool
	IsElfNotype                         bool
	IsGot                               bool
	IsGotGlobal                         bool
	IsGotLocal                          bool
	AccessedAsGpRel                     bool
	IsMips1Double                       bool
	IsAutocreatedSymFromOtherSizedSym   bool

	ReferenceCounter  int
	ReferenceFunctions []*ContextSymbol
	ReferenceSymbols   []*ContextSymbol

	ParentFunction *ContextSymbol

	// BranchLabels and JumpTables are ordered address->symbol maps, valid
	// only on function symbols (spec.md §3.1). Order of insertion is
	// preserved for sequential-label-name derivation (spec.md §4.2).
	BranchLabels *OrderedSymbolMap
	JumpTables   *OrderedSymbolMap

	OverlayCategory string

	ForceMigration              bool
	ForceNotMigration           bool
	AllowedToReferenceAddends   bool

	Visibility *string
}

// NewContextSymbol constructs a bare symbol; callers normally go through
// Segment.addSymbol instead of calling this directly.
func NewContextSymbol(addr uint32, section SectionType) *ContextSymbol {
	return &ContextSymbol{
		Address:     addr,
		SectionType: section,
	}
}

// Key returns the (address, vromAddress) equality key required by
// spec.md §3.2's hash contract.
type Key struct {
	Address     uint32
	VromAddress uint32
	HasVrom     bool
}

// SymbolKey returns sym's equality key.
func (s *ContextSymbol) SymbolKey() Key {
	if s.VromAddress != nil {
		return Key{Address: s.Address, VromAddress: *s.VromAddress, HasVrom: true}
	}
	return Key{Address: s.Address}
}

// SetNameCallback registers a naming callback (spec.md §4.2).
func (s *ContextSymbol) SetNameCallback(cb NameCallback) { s.nameCallback = cb }

// RawName returns the user/auto-assigned name, ignoring the callback and
// default synthesis. Nil means unset.
func (s *ContextSymbol) RawName() *string { return s.name }

// SetName sets the symbol's name exactly once semantics are enforced by
// callers (spec.md §3.3: "the user slot is written at most once"); this
// setter itself is unconditional, mirroring setNameIfUnset's *intended*
// contract (spec.md §9 open question): it must only ever touch the name
// field, never a type field.
func (s *ContextSymbol) SetName(name string) { s.name = &name }

// SetNameIfUnset sets the name only if it has not been set yet. This
// resolves spec.md §9's open question about an early revision of the
// reference implementation that mistakenly wrote to the type field
// instead: here it is a pure name setter, nothing else.
func (s *ContextSymbol) SetNameIfUnset(name string) {
	if s.name == nil {
		s.name = &name
	}
}

// UserDeclaredType returns the user-declared type slot.
func (s *ContextSymbol) UserDeclaredType() TypeSlot { return s.userDeclaredType }

// SetUserDeclaredType sets the user-declared type slot. Per spec.md
// §3.3, callers must only invoke this once (from the user loader); the
// type is the "wins" slot and is never overwritten by analysis.
func (s *ContextSymbol) SetUserDeclaredType(t TypeSlot) { s.userDeclaredType = t }

// AutodetectedType returns the autodetected type slot.
func (s *ContextSymbol) AutodetectedType() TypeSlot { return s.autodetectedType }

// SetAutodetectedType overwrites the autodetected slot; later, more
// specific analysis passes may call this repeatedly (spec.md §3.3).
func (s *ContextSymbol) SetAutodetectedType(t TypeSlot) { s.autodetectedType = t }

// EffectiveType returns the user type if set, else the autodetected type.
func (s *ContextSymbol) EffectiveType() TypeSlot {
	if s.userDeclaredType.IsSet() {
		return s.userDeclaredType
	}
	return s.autodetectedType
}

// UserDeclaredSize returns the user-declared size, if any.
func (s *ContextSymbol) UserDeclaredSize() *uint32 { return s.userDeclaredSize }

// SetUserDeclaredSize sets the user-declared size slot.
func (s *ContextSymbol) SetUserDeclaredSize(size uint32) { s.userDeclaredSize = &size }

// AutodetectedSize returns the autodetected size, if any.
func (s *ContextSymbol) AutodetectedSize() *uint32 { return s.autodetectedSize }

// SetAutodetectedSize sets the autodetected size slot, even when a user
// size is already present. The autodetected slot may still be populated
// for diagnostics even when it won't be used by getSize(), so this setter
// never refuses the write; it is GetSize() that enforces precedence, so a
// user-sized symbol never reports conflicting size data (spec.md §3.2).
func (s *ContextSymbol) SetAutodetectedSize(size uint32) { s.autodetectedSize = &size }

// GetSize implements the precedence chain of spec.md §4.2: user size ->
// autodetected size -> size of userDeclaredType -> size of AccessType ->
// alignment-based fallback.
func (s *ContextSymbol) GetSize() uint32 {
	if s.userDeclaredSize != nil {
		return *s.userDeclaredSize
	}
	if s.autodetectedSize != nil {
		return *s.autodetectedSize
	}
	if s.userDeclaredType.IsSet() && !s.userDeclaredType.special.isSet() {
		if k, ok := namedTypeSizes[s.userDeclaredType.name]; ok {
			return k.size
		}
	}
	if k, ok := accessKindTable[s.AccessType]; ok {
		return k.size
	}
	// Alignment-based fallback: 4/2/1 depending on vram alignment.
	if s.Address%4 == 0 {
		return 4
	}
	if s.Address%2 == 0 {
		return 2
	}
	return 1
}

func (s SpecialType) isSet() bool { return s != SpecialNone }

// isAligned is a small helper used by the type predicates below.
func (s *ContextSymbol) isAligned(n uint32) bool { return s.Address%n == 0 }

// typeNameKind resolves the effective declared type name (if the
// effective slot holds a free-form name, not a special tag) to its
// accessKind row.
func (s *ContextSymbol) typeNameKind() (accessKind, bool) {
	t := s.EffectiveType()
	if !t.IsSet() || t.special.isSet() {
		return accessKind{}, false
	}
	k, ok := namedTypeSizes[t.name]
	return k, ok
}

// IsFloat reports whether this symbol should be treated as a 32-bit
// float: 4-byte aligned, and either the declared type says f32/Vec3f or
// the widest access seen is AccessFloat (spec.md §4.2).
func (s *ContextSymbol) IsFloat() bool {
	if !s.isAligned(4) {
		return false
	}
	if k, ok := s.typeNameKind(); ok && k.isFloat {
		return true
	}
	return s.AccessType == AccessFloat
}

// IsDouble reports whether this symbol should be treated as a 64-bit
// double: 8-byte aligned, declared f64 or widest access AccessDoubleFloat.
func (s *ContextSymbol) IsDouble() bool {
	if !s.isAligned(8) {
		return false
	}
	if k, ok := s.typeNameKind(); ok && k.isDouble {
		return true
	}
	return s.AccessType == AccessDoubleFloat
}

// IsByte reports whether the effective declared type or widest access is
// byte-sized.
func (s *ContextSymbol) IsByte() bool {
	if k, ok := s.typeNameKind(); ok {
		return k.size == 1
	}
	return s.AccessType == AccessByte
}

// IsShort reports whether the effective declared type or widest access is
// half-word sized and 2-byte aligned.
func (s *ContextSymbol) IsShort() bool {
	if !s.isAligned(2) {
		return false
	}
	if k, ok := s.typeNameKind(); ok {
		return k.size == 2
	}
	return s.AccessType == AccessShort
}

// IsString reports whether guesser heuristics (driven by the string
// guesser level, evaluated by the data analyzer, recorded here via
// IsMaybeString) currently classify this symbol as an ASCII string.
func (s *ContextSymbol) IsString() bool { return s.IsMaybeString && !s.FailedStringDecoding }

// IsPascalString reports the Pascal-string counterpart of IsString.
func (s *ContextSymbol) IsPascalString() bool {
	return s.IsMaybePascalString && !s.FailedStringDecoding
}

// GetName implements spec.md §4.2's getName(): callback first, else the
// stored name (quoted if it needs it), else a synthesized default name.
func (s *ContextSymbol) GetName(cfg config.Config) string {
	if s.nameCallback != nil {
		if n := s.nameCallback(s); n != "" {
			return quoteIfNeeded(n)
		}
	}
	if s.name != nil {
		return quoteIfNeeded(*s.name)
	}
	return quoteIfNeeded(s.getDefaultName(cfg))
}

func quoteIfNeeded(name string) string {
	if strings.ContainsAny(name, "@<\\-+") {
		return strconv.Quote(name)
	}
	return name
}

// getDefaultName composes <sectionPrefix><typePrefix><uniqueIdentifier>
// per spec.md §4.2.
func (s *ContextSymbol) getDefaultName(cfg config.Config) string {
	special := s.EffectiveType().special

	sectionPrefix := ""
	switch special {
	case SpecialFunction, SpecialBranchLabel, SpecialJumpTable, SpecialJumpTableLabel,
		SpecialGccExceptTable, SpecialGccExceptTableLabel:
		sectionPrefix = ""
	default:
		if cfg.AutogeneratedNamesBasedOnSectionType {
			switch s.SectionType {
			case SectionRodata:
				sectionPrefix = "RO_"
			case SectionBss:
				sectionPrefix = "B_"
			case SectionText:
				sectionPrefix = "T_"
			case SectionReloc:
				sectionPrefix = "REL_"
			case SectionGccExceptTable:
				sectionPrefix = "EHTBL_"
			default:
				sectionPrefix = "D_"
			}
		} else {
			sectionPrefix = "D_"
		}
	}

	typePrefix := ""
	switch special {
	case SpecialFunction:
		typePrefix = "func_"
	case SpecialBranchLabel:
		typePrefix = ".L"
	case SpecialJumpTable:
		typePrefix = "jtbl_"
	case SpecialJumpTableLabel:
		typePrefix = ".L"
	case SpecialGccExceptTable:
		typePrefix = "ehtbl_"
	case SpecialGccExceptTableLabel:
		typePrefix = "$LEH_"
	default:
		if cfg.AutogeneratedNamesBasedOnDataType {
			switch {
			case s.IsFloat():
				typePrefix = "FLT_"
			case s.IsDouble():
				typePrefix = "DBL_"
			case s.IsPascalString():
				typePrefix = "PSTR_"
			case s.IsString():
				typePrefix = "STR_"
			}
		}
	}

	uniqueIdentifier := s.uniqueIdentifier(cfg, special)

	return sectionPrefix + typePrefix + uniqueIdentifier
}

// uniqueIdentifier implements the two branches of spec.md §4.2's
// uniqueIdentifier derivation.
func (s *ContextSymbol) uniqueIdentifier(cfg config.Config, special SpecialType) string {
	isLabelLike := special == SpecialBranchLabel || special == SpecialJumpTableLabel || special == SpecialJumpTable
	if s.ParentFunction != nil && cfg.SequentialLabelNames && isLabelLike {
		parentName := s.ParentFunction.GetName(cfg)
		var ordered *OrderedSymbolMap
		if special == SpecialJumpTable {
			ordered = s.ParentFunction.JumpTables
		} else {
			ordered = s.ParentFunction.BranchLabels
		}
		if ordered != nil {
			if idx, ok := ordered.IndexOf(s.Address); ok {
				return fmt.Sprintf("%s_%d", parentName, idx+1)
			}
		}
	}

	addrWidth := 8
	if cfg.LegacySymAddrZeroPadding {
		addrWidth = 8
	}
	suffix := s.OverlayCategory
	if s.VromAddress != nil {
		suffix += fmt.Sprintf("_%06X", *s.VromAddress)
	}
	suffix += cfg.CustomSuffix

	return fmt.Sprintf("%0*X%s", addrWidth, s.Address, suffix)
}
