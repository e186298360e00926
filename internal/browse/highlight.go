package browse

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// getAssemblyLexer mirrors the teacher's colorize.getAssemblyLexer
// fallback chain, swapping the ARM64-biased candidate order for a
// GAS-first one since everything this package highlights is MIPS GAS
// text emitted by internal/emit.
func getAssemblyLexer() chroma.Lexer {
	candidates := []string{"gas", "GAS", "Gas", "nasm", "armasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func getDisasmStyle() *chroma.Style {
	candidates := []string{"disasm-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// colorDisabled mirrors the teacher's colorize.IsDisabled, generalized
// from the teacher's own env var to this project's name.
func colorDisabled() bool {
	return os.Getenv("SPIMDIS_NO_COLOR") != "" || os.Getenv("NO_COLOR") != ""
}

// Highlight colorizes a block of emitted assembly text for display in
// the viewport pane. Unlike the teacher's single-instruction
// colorize.Instruction, this tokenizes a whole multi-line symbol body at
// once.
func Highlight(body string) string {
	if colorDisabled() || body == "" {
		return body
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return body
	}

	iterator, err := lexer.Tokenise(nil, body)
	if err != nil {
		return body
	}

	style := getDisasmStyle()
	formatter := getTerminalFormatter()

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return body
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
