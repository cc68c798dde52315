package hwio

import "ymsound/emu/log"

// Device allows manual management of an entire range of addresses. Accesses
// are forwarded to the callbacks with the address relative to the start of
// the device, wrapped to its size (which must be a power of 2).
type Device struct {
	Name  string // name of the device (for debugging)
	Size  int    // size of the address range
	Flags RWFlags

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) offset(addr uint16) uint16 {
	if d.Size&(d.Size-1) != 0 {
		panic("device size is not pow2")
	}
	return addr & uint16(d.Size-1)
}

func (d *Device) Read8(addr uint16) uint8 {
	switch {
	case d.Flags&WriteOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid Read8 from writeonly device").
			String("name", d.Name).
			Hex16("addr", addr).
			End()
		fallthrough
	case d.ReadCb == nil:
		return 0
	}
	return d.ReadCb(d.offset(addr))
}

func (d *Device) Peek8(addr uint16) uint8 {
	if d.PeekCb != nil {
		return d.PeekCb(d.offset(addr))
	}
	return 0
}

func (d *Device) Write8(addr uint16, val uint8) {
	switch {
	case d.Flags&ReadOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid Write8 to readonly device").
			String("name", d.Name).
			Hex16("addr", addr).
			End()
		fallthrough
	case d.WriteCb == nil:
		return
	}

	d.WriteCb(d.offset(addr), val)
}
