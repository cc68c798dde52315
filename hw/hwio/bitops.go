package hwio

// 8-bit operations
func GetBit8(v uint8, n uint) bool {
	return GetBiti8(v, n) != 0
}

func GetBiti8(v uint8, n uint) uint8 {
	return v >> (n) & 0x01
}

// 16-bit operations

// Field16 extracts the width-bit field starting at bit n.
func Field16(v uint16, n, width uint) uint16 {
	return (v >> n) & (1<<width - 1)
}

// SetField16 replaces the width-bit field starting at bit n with f.
func SetField16(v *uint16, n, width uint, f uint16) {
	mask := uint16(1<<width-1) << n
	*v = (*v &^ mask) | (f<<n)&mask
}
