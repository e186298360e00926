package section

import (
	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
)

// isTrustableFunction implements spec.md §4.3.1's trust predicate: "a
// symbol is trustable if it is autogenerated-of-type-function and
// TRUST_JAL_FUNCTIONS, or user-declared-and-non-branchlabel and
// TRUST_USER_FUNCTIONS, or the category is RSP".
func isTrustableFunction(sym *context.ContextSymbol, isRSP bool, cfg config.Config) bool {
	if sym == nil {
		return false
	}
	if isRSP {
		return true
	}
	special := sym.EffectiveType().Special()
	if sym.IsAutogenerated && special == context.SpecialFunction && cfg.TrustJALFunctions {
		return true
	}
	if sym.IsUserDeclared && special != context.SpecialBranchLabel && cfg.TrustUserFunctions {
		return true
	}
	return false
}
