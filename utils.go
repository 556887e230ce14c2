package bincode

import (
	"encoding/hex"
	"log"
	"strings"
)

// Takes strings like "11 22 aa bb", returns byte buffer.
// For making the tests more readable, basically. Newlines are stripped too
// so the long fixtures can wrap.

func SBytes(bytesStr string) []byte {
	bytesStr = strings.Join(strings.Fields(bytesStr), "") // chop all whitespace
	buf, err := hex.DecodeString(bytesStr)
	if err != nil {
		log.Fatal(err)
	}
	return buf
}
