package barcode

import (
	"fmt"
	"strings"
)

const ccittPoly = 0x1021

// Checksum fingerprints the joined barcode fields with CRC-16/CCITT-FALSE
// (seed 0xFFFF) and renders the low 12 bits as three uppercase hex digits.
// Keeping only three digits is how every barcode in circulation was minted,
// so the truncation must not change.
func Checksum(data string) string {
	crc := uint16(0xFFFF)
	for _, b := range []byte(data) {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ ccittPoly
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%03X", crc&0x0FFF)
}

// Verify reports whether code is structurally well-formed and its embedded
// checksum matches a recomputation over the first seven fields. It never
// panics; any malformed input is simply false.
func Verify(code string) bool {
	fields := Parse(code)
	if fields == nil {
		return false
	}

	// Everything before the trailing "-XXX".
	trimmed := strings.TrimSpace(code)
	return Checksum(trimmed[:len(trimmed)-4]) == fields.Checksum
}
