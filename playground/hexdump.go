package main

import (
	"fmt"
	"strings"
)

// ANSI-colorized hexdump for eyeballing codec output. Color per byte
// class: printable green, whitespace blue-ish, everything else plain.

const dumpWidth = 16

// flipped on by the per-platform init in ansi_*.go
var colorOK = false

var cols = map[string]string{
	"rst": "\x1b[0m", "gry": "\x1b[2;37m", "red": "\x1b[31m", "yel": "\x1b[0;33m",
	"grn": "\x1b[0;32m", "bgrn": "\x1b[1;32m", "blu": "\x1b[0;34m", "bblu": "\x1b[34;1m",
}

func byteColor(x byte) string {
	switch x {
	case 13, 10: // CR LF
		return cols["bgrn"]
	case 32: // space
		return cols["bblu"]
	default:
		if x > 32 && x < 127 {
			return cols["grn"]
		}
		return cols["rst"]
	}
}

func dotStr(src []byte) string {
	var out strings.Builder
	for _, c := range src {
		if c > 31 && c < 127 {
			out.WriteByte(c)
		} else {
			out.WriteString(".")
		}
	}
	return out.String()
}

func Hexdump(src []byte) string {
	if len(src) == 0 {
		return "(empty)"
	}

	var lines []string
	for offset := 0; offset < len(src); offset += dumpWidth {
		end := offset + dumpWidth
		if end > len(src) {
			end = len(src)
		}
		chunk := src[offset:end]

		var line strings.Builder
		line.WriteString(fmt.Sprintf("%04X ", offset))

		oldCol := ""
		for _, x := range chunk {
			if colorOK {
				if col := byteColor(x); col != oldCol {
					line.WriteString(col)
					oldCol = col
				}
			}
			line.WriteString(fmt.Sprintf(" %02x", x))
		}
		if colorOK {
			line.WriteString(cols["rst"])
		}

		line.WriteString(strings.Repeat("   ", dumpWidth-len(chunk)))
		line.WriteString("  ")
		line.WriteString(dotStr(chunk))
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
