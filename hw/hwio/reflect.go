package hwio

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// RegInfo describes a register (or device) found in a register bank.
type RegInfo struct {
	Offset uint16
	Bank   int
	Reg    any // *Reg8 or *Device
}

// InitRegs initializes all the registers of a register bank, that is a
// pointer to a structure containing Reg8 or Device fields. Fields are
// configured with a "hwio" struct tag made of comma-separated options:
//
//	offset=0x12     Offset of the register within the bank. Registers without
//	                an offset are initialized but not part of any bank.
//	bank=NN         Ordinal bank number (default 0).
//	reset=0x34      Initial value of a Reg8.
//	mask=0x0F       Significant bits of a Reg8 (default 0xFF).
//	size=0x100      Size of a Device address range.
//	readonly        Writes are ignored (and logged).
//	writeonly       Reads return 0 (and are logged).
//	rcb[=Name]      Read callback, default name is Read + upper-cased field name.
//	wcb[=Name]      Write callback, default name is Write + upper-cased field name.
//	pcb[=Name]      Peek callback (Device only), default name is Peek + ...
func InitRegs(data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("hwio: InitRegs wants a pointer to a struct, got %T", data)
	}

	s := v.Elem()
	t := s.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		if !f.IsExported() {
			return fmt.Errorf("hwio: field %s must be exported", f.Name)
		}
		opts, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("hwio: field %s: %w", f.Name, err)
		}

		switch ptr := s.Field(i).Addr().Interface().(type) {
		case *Reg8:
			err = initReg8(v, f.Name, ptr, opts)
		case *Device:
			err = initDevice(v, f.Name, ptr, opts)
		default:
			err = fmt.Errorf("unsupported type %T", ptr)
		}
		if err != nil {
			return fmt.Errorf("hwio: field %s: %w", f.Name, err)
		}
	}
	return nil
}

// MustInitRegs is like InitRegs but panics on error.
func MustInitRegs(data any) {
	if err := InitRegs(data); err != nil {
		panic(err)
	}
}

// BankRegs returns the registers belonging to the given bank, sorted by
// offset. Registers must have been initialized with InitRegs first.
func BankRegs(data any, bank int) ([]RegInfo, error) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("hwio: BankRegs wants a pointer to a struct, got %T", data)
	}

	var regs []RegInfo
	s := v.Elem()
	t := s.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("hwio")
		if !ok || !f.IsExported() {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("hwio: field %s: %w", f.Name, err)
		}
		soff, ok := opts["offset"]
		if !ok {
			continue
		}
		num := 0
		if sbank, ok := opts["bank"]; ok {
			n, err := strconv.ParseUint(sbank, 0, 8)
			if err != nil {
				return nil, fmt.Errorf("hwio: field %s: invalid bank: %w", f.Name, err)
			}
			num = int(n)
		}
		if num != bank {
			continue
		}
		off, err := strconv.ParseUint(soff, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("hwio: field %s: invalid offset: %w", f.Name, err)
		}
		regs = append(regs, RegInfo{
			Offset: uint16(off),
			Bank:   num,
			Reg:    s.Field(i).Addr().Interface(),
		})
	}

	sort.Slice(regs, func(i, j int) bool { return regs[i].Offset < regs[j].Offset })
	return regs, nil
}

func parseTag(tag string) (map[string]string, error) {
	opts := make(map[string]string)
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		key, val, _ := strings.Cut(opt, "=")
		if _, dup := opts[key]; dup {
			return nil, fmt.Errorf("duplicated option %q", key)
		}
		opts[key] = val
	}
	return opts, nil
}

func parseUint8(opts map[string]string, key string, def uint8) (uint8, error) {
	s, ok := opts[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return uint8(v), nil
}

func rwflags(opts map[string]string) (RWFlags, error) {
	_, ro := opts["readonly"]
	_, wo := opts["writeonly"]
	switch {
	case ro && wo:
		return 0, fmt.Errorf("readonly and writeonly are exclusive")
	case ro:
		return ReadOnlyFlag, nil
	case wo:
		return WriteOnlyFlag, nil
	}
	return ReadWriteFlag, nil
}

// method returns the method implementing callback kind (Read, Write, Peek)
// for the given field, or an invalid value if the option is absent.
func method(bank reflect.Value, opts map[string]string, opt, kind, field string) (reflect.Value, error) {
	name, ok := opts[opt]
	if !ok {
		return reflect.Value{}, nil
	}
	if name == "" {
		name = kind + strings.ToUpper(field)
	}
	m := bank.MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, fmt.Errorf("missing method %s on %s", name, bank.Type())
	}
	return m, nil
}

func initReg8(bank reflect.Value, name string, reg *Reg8, opts map[string]string) error {
	mask, err := parseUint8(opts, "mask", 0xFF)
	if err != nil {
		return err
	}
	reset, err := parseUint8(opts, "reset", 0)
	if err != nil {
		return err
	}
	flags, err := rwflags(opts)
	if err != nil {
		return err
	}

	reg.Name = name
	reg.Mask = mask
	reg.Value = reset & mask
	reg.Flags = flags

	rcb, err := method(bank, opts, "rcb", "Read", name)
	if err != nil {
		return err
	}
	if rcb.IsValid() {
		fn, ok := rcb.Interface().(func(uint8) uint8)
		if !ok {
			return fmt.Errorf("invalid read callback signature %s", rcb.Type())
		}
		reg.ReadCb = fn
	}

	wcb, err := method(bank, opts, "wcb", "Write", name)
	if err != nil {
		return err
	}
	if wcb.IsValid() {
		fn, ok := wcb.Interface().(func(uint8, uint8))
		if !ok {
			return fmt.Errorf("invalid write callback signature %s", wcb.Type())
		}
		reg.WriteCb = fn
	}
	return nil
}

func initDevice(bank reflect.Value, name string, dev *Device, opts map[string]string) error {
	flags, err := rwflags(opts)
	if err != nil {
		return err
	}
	size := uint64(1)
	if s, ok := opts["size"]; ok {
		if size, err = strconv.ParseUint(s, 0, 17); err != nil {
			return fmt.Errorf("invalid size: %w", err)
		}
	}
	if size == 0 || size&(size-1) != 0 {
		return fmt.Errorf("device size %#x is not pow2", size)
	}

	dev.Name = name
	dev.Size = int(size)
	dev.Flags = flags

	for _, cb := range []struct{ opt, kind string }{{"rcb", "Read"}, {"pcb", "Peek"}} {
		m, err := method(bank, opts, cb.opt, cb.kind, name)
		if err != nil {
			return err
		}
		if !m.IsValid() {
			continue
		}
		fn, ok := m.Interface().(func(uint16) uint8)
		if !ok {
			return fmt.Errorf("invalid %s callback signature %s", cb.kind, m.Type())
		}
		if cb.opt == "rcb" {
			dev.ReadCb = fn
		} else {
			dev.PeekCb = fn
		}
	}

	wcb, err := method(bank, opts, "wcb", "Write", name)
	if err != nil {
		return err
	}
	if wcb.IsValid() {
		fn, ok := wcb.Interface().(func(uint16, uint8))
		if !ok {
			return fmt.Errorf("invalid write callback signature %s", wcb.Type())
		}
		dev.WriteCb = fn
	}
	return nil
}
