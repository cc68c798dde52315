package ym2149

import (
	"ymsound/hw/hwdefs"
	"ymsound/hw/hwio"
)

// Port is the chip interface as seen by the ST bus at $FF8800:
//
//	$FF8800  write: select register, read: read selected register
//	$FF8802  write: write selected register
//
// Registers 14 and 15 (I/O ports) are not emulated.
type Port struct {
	Bus hwio.Device `hwio:"size=4,rcb,pcb,wcb"`

	chip *Chip
	sel  uint8

	// sync is called before a register write, so that the samples covering
	// the time before the write are generated with the old register values.
	sync func()
}

func NewPort(chip *Chip, sync func()) *Port {
	p := &Port{chip: chip, sync: sync}
	hwio.MustInitRegs(p)
	return p
}

// Selected returns the currently selected register.
func (p *Port) Selected() uint8 { return p.sel }

func (p *Port) ReadBUS(addr uint16) uint8 {
	if addr != 0 {
		return 0xFF
	}
	return p.chip.Register(p.sel)
}

func (p *Port) PeekBUS(addr uint16) uint8 {
	return p.ReadBUS(addr)
}

func (p *Port) WriteBUS(addr uint16, val uint8) {
	switch addr {
	case 0:
		p.sel = val & 0x0F
	case 2:
		if int(p.sel) >= hwdefs.NumRegs {
			modYM.DebugZ("write to io port").
				Uint8("reg", p.sel).
				Hex8("val", val).
				End()
			return
		}
		if p.sync != nil {
			p.sync()
		}
		p.chip.WriteRegister(p.sel, val)
	}
}
