// Package script backs spec.md §4.2's "if a callback is registered, call
// it" naming hook and a per-symbol guesser-level override with a small
// embedded JavaScript runtime, so a caller can customize symbol naming
// or string-guesser aggressiveness without recompiling the engine.
// Grounded directly on goja's own public API (no teacher precedent:
// galago has no scripting layer) — see DESIGN.md.
package script

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
)

// Engine wraps one loaded script and the optional hook functions it
// defines: `nameSymbol(address, sectionType, typeName) -> string` and
// `overrideGuesserLevel(address, defaultLevel) -> number`. Either, both,
// or neither may be present; an absent hook leaves the engine's default
// behavior untouched.
type Engine struct {
	vm *goja.Runtime

	nameFn    goja.Callable
	guesserFn goja.Callable
}

// New compiles and runs src once, capturing whichever of the two hook
// functions it defines.
func New(src string) (*Engine, error) {
	vm := goja.New()
	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	e := &Engine{vm: vm}
	if fn, ok := goja.AssertFunction(vm.Get("nameSymbol")); ok {
		e.nameFn = fn
	}
	if fn, ok := goja.AssertFunction(vm.Get("overrideGuesserLevel")); ok {
		e.guesserFn = fn
	}
	return e, nil
}

// HasNameHook reports whether the script defined nameSymbol.
func (e *Engine) HasNameHook() bool { return e.nameFn != nil }

// NameCallback adapts the script's nameSymbol function to spec.md §4.2's
// context.NameCallback contract, or nil if the script didn't define one.
// A thrown exception or non-string return is treated as "no override"
// (empty string), which context.ContextSymbol.GetName falls through on.
func (e *Engine) NameCallback() context.NameCallback {
	if e.nameFn == nil {
		return nil
	}
	return func(sym *context.ContextSymbol) string {
		v, err := e.nameFn(goja.Undefined(),
			e.vm.ToValue(sym.Address),
			e.vm.ToValue(sym.SectionType.String()),
			e.vm.ToValue(sym.EffectiveType().Name()))
		if err != nil {
			return ""
		}
		s, ok := v.Export().(string)
		if !ok {
			return ""
		}
		return s
	}
}

// OverrideGuesserLevel consults the script's overrideGuesserLevel
// function, if present, for a per-symbol guesser-level override;
// returns defaultLevel unchanged on any error, missing hook, or
// out-of-range result.
func (e *Engine) OverrideGuesserLevel(addr uint32, defaultLevel config.GuesserLevel) config.GuesserLevel {
	if e.guesserFn == nil {
		return defaultLevel
	}
	v, err := e.guesserFn(goja.Undefined(), e.vm.ToValue(addr), e.vm.ToValue(int64(defaultLevel)))
	if err != nil {
		return defaultLevel
	}
	var level int64
	switch n := v.Export().(type) {
	case int64:
		level = n
	case float64:
		level = int64(n)
	default:
		return defaultLevel
	}
	if level < int64(config.GuesserOff) || level > int64(config.GuesserOverrideType) {
		return defaultLevel
	}
	return config.GuesserLevel(level)
}
