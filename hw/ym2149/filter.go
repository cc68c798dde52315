package ym2149

import "math"

const dcBufLen = 512 // must be a power of 2

// dcAdjuster estimates the DC level as the mean of the last dcBufLen samples.
type dcAdjuster struct {
	buf [dcBufLen]int16
	pos int
	sum int32
}

func (dc *dcAdjuster) reset() {
	*dc = dcAdjuster{}
}

func (dc *dcAdjuster) add(s int16) {
	dc.sum -= int32(dc.buf[dc.pos])
	dc.sum += int32(s)
	dc.buf[dc.pos] = s
	dc.pos = (dc.pos + 1) & (dcBufLen - 1)
}

func (dc *dcAdjuster) level() int32 {
	return dc.sum / dcBufLen
}

// lowPass is a 3-tap FIR: 1/4 x[n-2] + 1/2 x[n-1] + 1/4 x[n].
type lowPass struct {
	prev [2]int32
}

func (lp *lowPass) reset() {
	lp.prev = [2]int32{}
}

func (lp *lowPass) filter(in int32) int32 {
	out := lp.prev[0]>>2 + lp.prev[1]>>1 + in>>2
	lp.prev[0] = lp.prev[1]
	lp.prev[1] = in
	return out
}

// Filter removes the DC offset of the signal and smoothes it.
type Filter struct {
	dc dcAdjuster
	lp lowPass
}

func (f *Filter) Reset() {
	f.dc.reset()
	f.lp.reset()
}

func (f *Filter) Process(s int16) int16 {
	f.dc.add(s)
	in := clamp16(int32(s) - f.dc.level())
	return int16(f.lp.filter(int32(in)))
}

func clamp16(v int32) int16 {
	return int16(min(max(v, math.MinInt16), math.MaxInt16))
}
