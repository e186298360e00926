// Package config defines the immutable configuration surface consumed by
// every analyzer and by the emitter. A Config value is built once (via
// Default or FromEnv) and copied into each section's Base before its
// analyze() call; nothing in this package mutates global state.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Compiler identifies the toolchain that produced the binary being
// analyzed. It gates late-rodata handling, redundant-function-end
// detection and a handful of alignment quirks.
type Compiler int

const (
	CompilerUnknown Compiler = iota
	CompilerIDO
	CompilerGCC
	CompilerSN64
	CompilerPSYQ
	CompilerEGCS
	CompilerMWCC
	CompilerEEGCC
)

func (c Compiler) String() string {
	switch c {
	case CompilerIDO:
		return "IDO"
	case CompilerGCC:
		return "GCC"
	case CompilerSN64:
		return "SN64"
	case CompilerPSYQ:
		return "PSYQ"
	case CompilerEGCS:
		return "EGCS"
	case CompilerMWCC:
		return "MWCC"
	case CompilerEEGCC:
		return "EEGCC"
	default:
		return "UNKNOWN"
	}
}

func parseCompiler(s string) Compiler {
	switch strings.ToUpper(s) {
	case "IDO":
		return CompilerIDO
	case "GCC":
		return CompilerGCC
	case "SN64":
		return CompilerSN64
	case "PSYQ":
		return CompilerPSYQ
	case "EGCS":
		return CompilerEGCS
	case "MWCC":
		return CompilerMWCC
	case "EEGCC":
		return CompilerEEGCC
	default:
		return CompilerUnknown
	}
}

// Endian selects the byte order used to decode 32-bit words.
type Endian int

const (
	EndianBig Endian = iota
	EndianLittle
	EndianMiddle // byte-swapped 16-bit halves ("middle" endian, PSYQ carts)
)

func parseEndian(s string) Endian {
	switch strings.ToLower(s) {
	case "little":
		return EndianLittle
	case "middle":
		return EndianMiddle
	default:
		return EndianBig
	}
}

// ArchLevel is the MIPS ISA level, gating .set gp=64 and instruction
// legality checks performed by the (external) decoder.
type ArchLevel int

const (
	ArchMIPS1 ArchLevel = iota
	ArchMIPS2
	ArchMIPS3
	ArchMIPS4
	ArchMIPS32
	ArchMIPS32R2
	ArchMIPS64
	ArchMIPS64R2
)

// ABI selects register-name conventions.
type ABI int

const (
	ABIO32 ABI = iota
	ABIN32
	ABIO64
	ABIN64
	ABIEABI32
	ABIEABI64
)

// GuesserLevel is the aggressiveness at which autodetected data may be
// reclassified as a string/pascal-string.
//
//	0 = off
//	1 = only unique references, non-empty
//	2 = allow duplicate references
//	3 = allow empty strings
//	4 = override the autodetected type with the guess outright
type GuesserLevel int

const (
	GuesserOff GuesserLevel = iota
	GuesserUniqueNonEmpty
	GuesserAllowDuplicates
	GuesserAllowEmpty
	GuesserOverrideType
)

// Config is the full configuration surface of spec.md §6.2. It is passed
// by value (small, copy-friendly) or by pointer when callers want shared
// overrides; nothing in the analyzers mutates it.
type Config struct {
	Compiler  Compiler
	Endian    Endian
	ArchLevel ArchLevel
	ABI       ABI

	PIC         bool
	GPValue     uint32
	EmitCPLoad  bool

	RodataStringGuesserLevel       GuesserLevel
	DataStringGuesserLevel         GuesserLevel
	PascalRodataStringGuesserLevel GuesserLevel
	PascalDataStringGuesserLevel   GuesserLevel

	TrustUserFunctions         bool
	TrustJALFunctions          bool
	DetectRedundantFunctionEnd bool

	SymbolFinderFilterLowAddresses  uint32
	SymbolFinderFilterHighAddresses uint32
	FilterLowAddresses              bool
	FilterHighAddresses              bool

	AutogeneratedNamesBasedOnSectionType bool
	AutogeneratedNamesBasedOnDataType    bool
	AutogeneratedNamesBasedOnFileName    bool
	SequentialLabelNames                 bool
	CustomSuffix                         string
	LegacySymAddrZeroPadding             bool

	UseDotByte  bool
	UseDotShort bool

	RemovePointers   bool
	IgnoreBranches   bool
	IgnoreWordList   bool

	AllowUnknownSegment bool
	PanicRangeCheck     bool

	// GlabelMacro, DlabelMacro and JlabelMacro are the label-emission
	// macros (spec.md §6.1); overridable per assembler dialect.
	GlabelMacro string
	DlabelMacro string
	JlabelMacro string

	LineEnding string

	EmitSizeDirective bool

	// ASM_COMMENT_OFFSET_WIDTH and friends (spec.md §6.1 per-word comment
	// field widths).
	CommentOffsetWidth int
	CommentVramWidth   int
	CommentWordWidth   int

	ToolchainTreatJAsUnconditionalBranch bool

	// PointerFilterLowThreshold / PointerFilterHighThreshold are not read
	// by the data analyzer; its pointer-candidate filter (spec.md §4.4.1)
	// uses FilterLowAddresses/FilterHighAddresses with the
	// SymbolFinderFilter* thresholds above.
	PointerFilterLowThreshold  uint32
	PointerFilterHighThreshold uint32
}

// Default returns the engine's baked-in defaults, matching the teacher's
// convention of safe, permissive defaults (TrustJALFunctions / fallback
// install defaulting true in internal/stubs/registry.go) generalized to
// this domain.
func Default() Config {
	return Config{
		Compiler:  CompilerIDO,
		Endian:    EndianBig,
		ArchLevel: ArchMIPS1,
		ABI:       ABIO32,

		PIC:        false,
		GPValue:    0,
		EmitCPLoad: false,

		RodataStringGuesserLevel:       GuesserUniqueNonEmpty,
		DataStringGuesserLevel:         GuesserOff,
		PascalRodataStringGuesserLevel: GuesserOff,
		PascalDataStringGuesserLevel:   GuesserOff,

		TrustUserFunctions:         true,
		TrustJALFunctions:          true,
		DetectRedundantFunctionEnd: true,

		SymbolFinderFilterLowAddresses:  0x1000,
		SymbolFinderFilterHighAddresses: 0,
		FilterLowAddresses:              true,
		FilterHighAddresses:              false,

		AutogeneratedNamesBasedOnSectionType: true,
		AutogeneratedNamesBasedOnDataType:    true,
		AutogeneratedNamesBasedOnFileName:    false,
		SequentialLabelNames:                 true,
		CustomSuffix:                         "",
		LegacySymAddrZeroPadding:             false,

		UseDotByte:  true,
		UseDotShort: true,

		RemovePointers: false,
		IgnoreBranches: false,
		IgnoreWordList: false,

		AllowUnknownSegment: true,
		PanicRangeCheck:     false,

		GlabelMacro: "glabel",
		DlabelMacro: "dlabel",
		JlabelMacro: "jlabel",

		LineEnding: "\n",

		EmitSizeDirective: true,

		CommentOffsetWidth: 6,
		CommentVramWidth:   8,
		CommentWordWidth:   8,

		ToolchainTreatJAsUnconditionalBranch: false,

		PointerFilterLowThreshold:  0,
		PointerFilterHighThreshold: 0,
	}
}

// FromEnv overlays environment variables of the form "<prefix>_<NAME>"
// onto Default(), e.g. prefix "SPIM" reads SPIM_COMPILER, SPIM_ENDIAN,
// SPIM_TRUST_JAL_FUNCTIONS, etc. It is a pure function over the given
// environment lookup so it is unit-testable without touching process
// state; callers needing real process env pass os.LookupEnv.
func FromEnv(prefix string, lookup func(string) (string, bool)) Config {
	cfg := Default()
	get := func(name string) (string, bool) {
		return lookup(prefix + "_" + name)
	}

	if v, ok := get("COMPILER"); ok {
		cfg.Compiler = parseCompiler(v)
	}
	if v, ok := get("ENDIAN"); ok {
		cfg.Endian = parseEndian(v)
	}
	if v, ok := get("PIC"); ok {
		cfg.PIC = parseBool(v, cfg.PIC)
	}
	if v, ok := get("GP_VALUE"); ok {
		if n, err := strconv.ParseUint(strings.TrimPrefix(v, "0x"), 16, 32); err == nil {
			cfg.GPValue = uint32(n)
		}
	}
	if v, ok := get("EMIT_CPLOAD"); ok {
		cfg.EmitCPLoad = parseBool(v, cfg.EmitCPLoad)
	}
	if v, ok := get("RODATA_STRING_GUESSER_LEVEL"); ok {
		cfg.RodataStringGuesserLevel = parseGuesserLevel(v, cfg.RodataStringGuesserLevel)
	}
	if v, ok := get("DATA_STRING_GUESSER_LEVEL"); ok {
		cfg.DataStringGuesserLevel = parseGuesserLevel(v, cfg.DataStringGuesserLevel)
	}
	if v, ok := get("PASCAL_RODATA_STRING_GUESSER_LEVEL"); ok {
		cfg.PascalRodataStringGuesserLevel = parseGuesserLevel(v, cfg.PascalRodataStringGuesserLevel)
	}
	if v, ok := get("PASCAL_DATA_STRING_GUESSER_LEVEL"); ok {
		cfg.PascalDataStringGuesserLevel = parseGuesserLevel(v, cfg.PascalDataStringGuesserLevel)
	}
	if v, ok := get("TRUST_USER_FUNCTIONS"); ok {
		cfg.TrustUserFunctions = parseBool(v, cfg.TrustUserFunctions)
	}
	if v, ok := get("TRUST_JAL_FUNCTIONS"); ok {
		cfg.TrustJALFunctions = parseBool(v, cfg.TrustJALFunctions)
	}
	if v, ok := get("DETECT_REDUNDANT_FUNCTION_END"); ok {
		cfg.DetectRedundantFunctionEnd = parseBool(v, cfg.DetectRedundantFunctionEnd)
	}
	if v, ok := get("SEQUENTIAL_LABEL_NAMES"); ok {
		cfg.SequentialLabelNames = parseBool(v, cfg.SequentialLabelNames)
	}
	if v, ok := get("CUSTOM_SUFFIX"); ok {
		cfg.CustomSuffix = v
	}
	if v, ok := get("USE_DOT_BYTE"); ok {
		cfg.UseDotByte = parseBool(v, cfg.UseDotByte)
	}
	if v, ok := get("USE_DOT_SHORT"); ok {
		cfg.UseDotShort = parseBool(v, cfg.UseDotShort)
	}
	if v, ok := get("REMOVE_POINTERS"); ok {
		cfg.RemovePointers = parseBool(v, cfg.RemovePointers)
	}
	if v, ok := get("IGNORE_BRANCHES"); ok {
		cfg.IgnoreBranches = parseBool(v, cfg.IgnoreBranches)
	}
	if v, ok := get("ALLOW_UNKSEGMENT"); ok {
		cfg.AllowUnknownSegment = parseBool(v, cfg.AllowUnknownSegment)
	}
	if v, ok := get("PANIC_RANGE_CHECK"); ok {
		cfg.PanicRangeCheck = parseBool(v, cfg.PanicRangeCheck)
	}
	return cfg
}

// FromProcessEnv is a convenience wrapper around FromEnv using the real
// process environment.
func FromProcessEnv(prefix string) Config {
	return FromEnv(prefix, os.LookupEnv)
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseGuesserLevel(s string, fallback GuesserLevel) GuesserLevel {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 4 {
		return fallback
	}
	return GuesserLevel(n)
}
