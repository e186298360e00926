// Command spimdis is a thin demonstrator for the analysis engine in
// internal/context, internal/section and internal/emit. Real argument
// parsing against a ROM/ELF image, symbol-CSV loading and the assembler
// prelude are explicitly out of scope (spec.md §1); this wires fixture
// byte files straight into a Context and either prints the emitted
// assembly or launches the symbol browser.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/decomp-toolkit/spimdisasm/internal/browse"
	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/diag"
	glog "github.com/decomp-toolkit/spimdisasm/internal/log"
	"github.com/decomp-toolkit/spimdisasm/internal/script"
)

var (
	textPath, dataPath, rodataPath string
	textVram, dataVram, rodataVram uint32
	bssVram, bssVramEnd            uint32
	segStart, segEnd               uint32
	guesserOff                     bool
	scriptPath                     string
	verbose                        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spimdis",
		Short: "Recover functions, labels and typed data from a MIPS ROM image",
		Long: `spimdis wires raw .text/.data/.rodata/.bss byte fixtures into the
analysis core and either prints the recovered, reassemblable assembly
or opens an interactive symbol browser.

Examples:
  spimdis analyze --text func.bin --text-vram 0x80000400
  spimdis browse --data data.bin --rodata rodata.bin --script naming.js`,
		DisableFlagsInUseLine: true,
	}

	registerFixtureFlags(rootCmd.PersistentFlags())

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the recovered assembly for the given fixture sections",
		RunE:  runAnalyze,
	}
	rootCmd.AddCommand(analyzeCmd)

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive symbol browser",
		RunE:  runBrowse,
	}
	rootCmd.AddCommand(browseCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func registerFixtureFlags(flags interface {
	StringVar(*string, string, string, string)
	Uint32Var(*uint32, string, uint32, string)
	BoolVar(*bool, string, bool, string)
}) {
	flags.StringVar(&textPath, "text", "", "path to raw .text bytes")
	flags.StringVar(&dataPath, "data", "", "path to raw .data bytes")
	flags.StringVar(&rodataPath, "rodata", "", "path to raw .rodata bytes")
	flags.Uint32Var(&textVram, "text-vram", 0x80000000, "vram of .text")
	flags.Uint32Var(&dataVram, "data-vram", 0x80010000, "vram of .data")
	flags.Uint32Var(&rodataVram, "rodata-vram", 0x80020000, "vram of .rodata")
	flags.Uint32Var(&bssVram, "bss-vram", 0x80030000, "vram of .bss start")
	flags.Uint32Var(&bssVramEnd, "bss-vram-end", 0x80030000, "vram of .bss end")
	flags.Uint32Var(&segStart, "segment-start", 0x80000000, "segment vram start")
	flags.Uint32Var(&segEnd, "segment-end", 0x80040000, "segment vram end")
	flags.BoolVar(&guesserOff, "no-guesser", false, "disable the rodata/data string guessers")
	flags.StringVar(&scriptPath, "script", "", "path to a naming/guesser-override script (internal/script)")
	flags.BoolVar(&verbose, "verbose", false, "log every analysis diagnostic at debug level")
}

func buildLayout() (browse.FixtureLayout, error) {
	read := func(path string) ([]byte, error) {
		if path == "" {
			return nil, nil
		}
		return os.ReadFile(path)
	}

	layout := browse.FixtureLayout{
		TextVram: textVram, DataVram: dataVram, RodataVram: rodataVram,
		BssVram: bssVram, BssVramEnd: bssVramEnd,
		SegmentStart: segStart, SegmentEnd: segEnd,
	}

	var err error
	if layout.TextBytes, err = read(textPath); err != nil {
		return layout, fmt.Errorf("reading text fixture: %w", err)
	}
	if layout.DataBytes, err = read(dataPath); err != nil {
		return layout, fmt.Errorf("reading data fixture: %w", err)
	}
	if layout.RodataBytes, err = read(rodataPath); err != nil {
		return layout, fmt.Errorf("reading rodata fixture: %w", err)
	}
	return layout, nil
}

func buildConfig() config.Config {
	cfg := config.Default()
	if guesserOff {
		cfg.RodataStringGuesserLevel = config.GuesserOff
		cfg.DataStringGuesserLevel = config.GuesserOff
	}
	return cfg
}

// buildScriptEngine loads the --script file, if given; a missing flag is
// not an error, it just means no naming/guesser-override hooks apply.
func buildScriptEngine() (*script.Engine, error) {
	if scriptPath == "" {
		return nil, nil
	}
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	eng, err := script.New(string(src))
	if err != nil {
		return nil, fmt.Errorf("loading script: %w", err)
	}
	return eng, nil
}

// drainDiagnostics logs every collected diag.Event through the global
// logger (DESIGN.md's "CLI/TUI front ends drain diag.Events and forward
// them to log.L" wiring). The lines carry no run id.
func drainDiagnostics(events []*diag.Event) {
	glog.Init(verbose)
	for _, ev := range events {
		glog.L.Event(ev)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	layout, err := buildLayout()
	if err != nil {
		return err
	}
	eng, err := buildScriptEngine()
	if err != nil {
		return err
	}

	entries, events := browse.Build(buildConfig(), layout, eng)
	drainDiagnostics(events)
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", e.Body)
	}
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	layout, err := buildLayout()
	if err != nil {
		return err
	}
	eng, err := buildScriptEngine()
	if err != nil {
		return err
	}

	entries, events := browse.Build(buildConfig(), layout, eng)
	drainDiagnostics(events)
	_, err = tea.NewProgram(browse.NewModel(entries), tea.WithAltScreen()).Run()
	return err
}
