package section

import (
	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
)

// decodeASCII implements spec.md §4.4.5: bytes starting at a 4-aligned
// address, terminating at NUL; returns the decoded string (without the
// terminator) and the padded-to-4 total byte length, or ok=false if the
// run never terminates within the section or contains a non-printable
// byte.
func decodeASCII(data []byte, start uint32) (s string, totalLen uint32, ok bool) {
	i := start
	for {
		if int(i) >= len(data) {
			return "", 0, false
		}
		b := data[i]
		if b == 0 {
			break
		}
		if b < 0x09 || (b > 0x0D && b < 0x20) || b >= 0x7F {
			return "", 0, false
		}
		s += string(b)
		i++
	}
	length := i - start + 1 // include the terminator
	if pad := length % 4; pad != 0 {
		length += 4 - pad
	}
	return s, length, true
}

// decodePascal implements the Pascal-string counterpart: a length-prefix
// byte followed by that many bytes. The padding bytes after the string, up
// to the 4-byte boundary, are not inspected; no terminator byte is checked.
func decodePascal(data []byte, start uint32) (s string, totalLen uint32, ok bool) {
	if int(start) >= len(data) {
		return "", 0, false
	}
	n := uint32(data[start])
	if int(start+1+n) > len(data) {
		return "", 0, false
	}
	for i := uint32(0); i < n; i++ {
		b := data[start+1+i]
		if b >= 0x7F {
			return "", 0, false
		}
		s += string(b)
	}
	length := 1 + n
	if pad := length % 4; pad != 0 {
		length += 4 - pad
	}
	return s, length, true
}

// guesserAllows implements spec.md §4.2's guesser levels (0-4) against a
// candidate decode of a given reference count and emptiness.
func guesserAllows(level config.GuesserLevel, refCount int, empty bool) bool {
	switch level {
	case config.GuesserOff:
		return false
	case config.GuesserUniqueNonEmpty:
		return refCount <= 1 && !empty
	case config.GuesserAllowDuplicates:
		return !empty
	case config.GuesserAllowEmpty, config.GuesserOverrideType:
		return true
	default:
		return false
	}
}

// DecodeASCIIAt exposes decodeASCII for the emitter, which needs the same
// byte-level decode to render the final `.asciz` text once a symbol has
// already been classified as a string by TryStrings.
func DecodeASCIIAt(data []byte, start uint32) (string, uint32, bool) { return decodeASCII(data, start) }

// DecodePascalAt exposes decodePascal for the emitter.
func DecodePascalAt(data []byte, start uint32) (string, uint32, bool) { return decodePascal(data, start) }

// TryStrings implements spec.md §4.4.5 over every word-aligned, not
// already-classified address in this section, for both the ASCII and
// Pascal guesser families.
func (d *DataSection) TryStrings() {
	strLevel := d.stringGuesserLevel()
	pasLevel := d.pascalGuesserLevel()
	if strLevel == config.GuesserOff && pasLevel == config.GuesserOff {
		return
	}

	for i := 0; i < len(d.Words); i++ {
		localOffset := uint32(i) * 4
		if d.consumedDoubleLo[localOffset] {
			continue
		}
		vram := d.VramOffset(localOffset)
		owner := d.Segment.GetSymbol(vram, false, false)
		if owner == nil {
			continue
		}
		isFloatOwner := owner.AccessType == context.AccessFloat || owner.AccessType == context.AccessDoubleFloat
		if isFloatOwner && strLevel != config.GuesserOverrideType {
			continue
		}
		if owner.EffectiveType().Special() != context.SpecialNone {
			continue
		}

		d.tryStringAt(owner, localOffset, strLevel, pasLevel)
	}
}

func (d *DataSection) tryStringAt(owner *context.ContextSymbol, localOffset uint32, strLevel, pasLevel config.GuesserLevel) {
	asciiOK := false
	if strLevel != config.GuesserOff {
		s, _, ok := decodeASCII(d.Bytes, localOffset)
		asciiOK = ok
		if ok && guesserAllows(strLevel, owner.ReferenceCounter, s == "") {
			owner.IsMaybeString = true
			if strLevel == config.GuesserOverrideType {
				owner.SetAutodetectedType(context.NamedSlot("char*"))
			}
			return
		}
	}
	pascalOK := false
	if pasLevel != config.GuesserOff {
		s, _, ok := decodePascal(d.Bytes, localOffset)
		pascalOK = ok
		if ok && guesserAllows(pasLevel, owner.ReferenceCounter, s == "") {
			owner.IsMaybePascalString = true
			return
		}
	}
	if !asciiOK && !pascalOK {
		owner.FailedStringDecoding = true
	}
}
