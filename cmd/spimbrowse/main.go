// Command spimbrowse is a standalone launcher for the symbol browser TUI
// (internal/browse). It reads raw fixture byte files rather than a real
// ROM/ELF image — file-format loading is explicitly out of scope for this
// engine (spec.md §1), so like cmd/spimdis this is a wiring demonstrator,
// not a production front end. `spimdis browse` reaches the same TUI
// through its own buildLayout + browse.Build.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/decomp-toolkit/spimdisasm/internal/browse"
	"github.com/decomp-toolkit/spimdisasm/internal/config"
	glog "github.com/decomp-toolkit/spimdisasm/internal/log"
	"github.com/decomp-toolkit/spimdisasm/internal/script"
)

func main() {
	var (
		textPath, dataPath, rodataPath string
		textVram, dataVram, rodataVram uint
		bssVram, bssVramEnd            uint
		segStart, segEnd               uint
		scriptPath                     string
		verbose                        bool
	)

	flag.StringVar(&textPath, "text", "", "path to raw .text bytes")
	flag.StringVar(&dataPath, "data", "", "path to raw .data bytes")
	flag.StringVar(&rodataPath, "rodata", "", "path to raw .rodata bytes")
	flag.UintVar(&textVram, "text-vram", 0x80000000, "vram of .text")
	flag.UintVar(&dataVram, "data-vram", 0x80010000, "vram of .data")
	flag.UintVar(&rodataVram, "rodata-vram", 0x80020000, "vram of .rodata")
	flag.UintVar(&bssVram, "bss-vram", 0x80030000, "vram of .bss start")
	flag.UintVar(&bssVramEnd, "bss-vram-end", 0x80030000, "vram of .bss end")
	flag.UintVar(&segStart, "segment-start", 0x80000000, "segment vram start")
	flag.UintVar(&segEnd, "segment-end", 0x80040000, "segment vram end")
	flag.StringVar(&scriptPath, "script", "", "path to a naming/guesser-override script (internal/script)")
	flag.BoolVar(&verbose, "verbose", false, "log every analysis diagnostic at debug level")
	flag.Parse()

	layout, err := BuildLayout(textPath, dataPath, rodataPath,
		uint32(textVram), uint32(dataVram), uint32(rodataVram),
		uint32(bssVram), uint32(bssVramEnd), uint32(segStart), uint32(segEnd))
	if err != nil {
		fmt.Fprintln(os.Stderr, "spimbrowse:", err)
		os.Exit(1)
	}

	var eng *script.Engine
	if scriptPath != "" {
		src, err := os.ReadFile(scriptPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "spimbrowse:", err)
			os.Exit(1)
		}
		if eng, err = script.New(string(src)); err != nil {
			fmt.Fprintln(os.Stderr, "spimbrowse:", err)
			os.Exit(1)
		}
	}

	entries, events := browse.Build(config.Default(), layout, eng)
	glog.Init(verbose)
	for _, ev := range events {
		glog.L.Event(ev)
	}

	if _, err := tea.NewProgram(browse.NewModel(entries), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "spimbrowse:", err)
		os.Exit(1)
	}
}

// BuildLayout reads whichever fixture files are non-empty into a
// browse.FixtureLayout; an empty path skips that section.
func BuildLayout(textPath, dataPath, rodataPath string,
	textVram, dataVram, rodataVram, bssVram, bssVramEnd, segStart, segEnd uint32) (browse.FixtureLayout, error) {
	layout := browse.FixtureLayout{
		TextVram: textVram, DataVram: dataVram, RodataVram: rodataVram,
		BssVram: bssVram, BssVramEnd: bssVramEnd,
		SegmentStart: segStart, SegmentEnd: segEnd,
	}

	read := func(path string) ([]byte, error) {
		if path == "" {
			return nil, nil
		}
		return os.ReadFile(path)
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
