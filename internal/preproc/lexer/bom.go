package lexer

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

// stripBOMAndDecode detects a UTF-8, UTF-16LE, or UTF-16BE byte-order mark at
// the start of data and returns UTF-8 text with the BOM removed. Files with
// no BOM are assumed to already be UTF-8/ASCII and are returned unchanged,
// matching simplecpp.cpp's getAndSkipBOM, which only special-cases an
// explicit BOM and otherwise trusts the input.
func stripBOMAndDecode(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeUTF16(data, unicode.BigEndian)
	default:
		return data, nil
	}
}

func decodeUTF16(data []byte, order unicode.Endianness) ([]byte, error) {
	dec := unicode.UTF16(order, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return nil, err
	}
	return out, nil
}
