package mips

import (
	"fmt"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
)

// DecodeWords splits data into big/little/middle-endian 32-bit words, per
// spec.md §3.1's "decoded 32-bit words (byte-order-aware)". data's length
// must be a multiple of 4.
func DecodeWords(data []byte, endian config.Endian) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("mips: section length %d is not word-aligned", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		b := data[i*4 : i*4+4]
		switch endian {
		case config.EndianLittle:
			words[i] = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		case config.EndianMiddle:
			words[i] = uint32(b[1]) | uint32(b[0])<<8 | uint32(b[3])<<16 | uint32(b[2])<<24
		default: // EndianBig
			words[i] = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
		}
	}
	return words, nil
}
