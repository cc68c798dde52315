package ym2149

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const measuredSize = 16 * 16 * 16

// MeasuredTable holds the output level measured on real hardware for the
// 16x16x16 fixed volume combinations, indexed by i + 16*j + 256*k.
type MeasuredTable [measuredSize]uint16

// at returns the measured value, an index of 16 reads the last value.
func (mt *MeasuredTable) at(i, j, k int) int {
	i, j, k = min(i, 15), min(j, 15), min(k, 15)
	return int(mt[i+16*j+256*k])
}

// LoadMeasuredTable reads a measured table, that is 4096 unsigned integers
// (decimal or 0x-prefixed hexadecimal). The input can be plain text or a C
// header declaring an array, in which case only the values between braces
// are read. C comments are ignored.
func LoadMeasuredTable(r io.Reader) (*MeasuredTable, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read volume table: %w", err)
	}

	buf = stripComments(buf)
	if open := bytes.IndexByte(buf, '{'); open >= 0 {
		end := bytes.IndexByte(buf[open:], '}')
		if end < 0 {
			return nil, errors.New("volume table: unterminated array")
		}
		buf = buf[open+1 : open+end]
	}

	var mt MeasuredTable
	n := 0
	fields := strings.FieldsFunc(string(buf), func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	for _, f := range fields {
		f = strings.TrimRight(f, "uUlL")
		v, err := strconv.ParseUint(f, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("volume table: value #%d: %w", n, err)
		}
		if n == measuredSize {
			return nil, fmt.Errorf("volume table: more than %d values", measuredSize)
		}
		mt[n] = uint16(v)
		n++
	}
	if n != measuredSize {
		return nil, fmt.Errorf("volume table: got %d values, want %d", n, measuredSize)
	}

	var nonzero bool
	for _, v := range mt {
		if v != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		return nil, errors.New("volume table: all values are zero")
	}
	return &mt, nil
}

// LoadMeasuredTableFile reads a measured table from a file.
func LoadMeasuredTableFile(path string) (*MeasuredTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mt, err := LoadMeasuredTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mt, nil
}

// stripComments removes C block and line comments.
func stripComments(src []byte) []byte {
	var out []byte
	for len(src) > 0 {
		switch {
		case bytes.HasPrefix(src, []byte("/*")):
			end := bytes.Index(src[2:], []byte("*/"))
			if end < 0 {
				return out
			}
			src = src[2+end+2:]
			out = append(out, ' ')
		case bytes.HasPrefix(src, []byte("//")):
			end := bytes.IndexByte(src, '\n')
			if end < 0 {
				return out
			}
			src = src[end:]
		default:
			out = append(out, src[0])
			src = src[1:]
		}
	}
	return out
}
