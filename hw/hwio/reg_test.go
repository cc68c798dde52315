package hwio

import "testing"

func TestReg8(t *testing.T) {
	var calls int
	r := Reg8{Name: "R1", Value: 0x01, Mask: 0x0F}
	r.WriteCb = func(old, val uint8) {
		calls++
		if old != 0x01 || val != 0x07 {
			t.Errorf("WriteCb(%02x, %02x), want (01, 07)", old, val)
		}
	}

	if got := r.Read8(); got != 0x01 {
		t.Errorf("invalid read: %x", got)
	}

	r.Write8(0x77)
	if r.Value != 0x07 {
		t.Errorf("mask not respected: %x", r.Value)
	}
	if calls != 1 {
		t.Errorf("WriteCb called %d times, want 1", calls)
	}
}

func TestReg8ReadOnly(t *testing.T) {
	r := Reg8{Value: 0x11, Mask: 0xFF, Flags: ReadOnlyFlag}
	r.Write8(0x22)
	if r.Value != 0x11 {
		t.Errorf("readonly reg written: %x", r.Value)
	}
}

func TestDeviceWraps(t *testing.T) {
	var lastAddr uint16
	var lastVal uint8
	d := Device{
		Name:    "dev",
		Size:    4,
		ReadCb:  func(addr uint16) uint8 { return uint8(addr) | 0x80 },
		WriteCb: func(addr uint16, val uint8) { lastAddr, lastVal = addr, val },
	}

	d.Write8(0x8802, 0x42)
	if lastAddr != 2 || lastVal != 0x42 {
		t.Errorf("Write8 forwarded (%x, %x), want (2, 42)", lastAddr, lastVal)
	}
	if got := d.Read8(0x8801); got != 0x81 {
		t.Errorf("Read8 = %02X, want 81", got)
	}
	if got := d.Peek8(0x8801); got != 0 {
		t.Errorf("Peek8 without callback = %02X, want 0", got)
	}
}

func TestField16(t *testing.T) {
	v := uint16(0x7FFF)
	SetField16(&v, 5, 5, 0)
	if v != 0x7C1F {
		t.Errorf("SetField16 = %04X, want 7C1F", v)
	}
	if got := Field16(v, 10, 5); got != 0x1F {
		t.Errorf("Field16 = %02X, want 1F", got)
	}
	SetField16(&v, 5, 5, 0x3F) // extra bits dropped
	if v != 0x7FFF {
		t.Errorf("SetField16 = %04X, want 7FFF", v)
	}
}
