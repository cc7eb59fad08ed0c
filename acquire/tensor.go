// Package acquire implements the Acquisition & Demultiplexer (C5): the
// open/run/close trigger lifecycle and the raw per-OEM buffer to
// canonical RF tensor reshape.
package acquire

// RFTensor is the canonical output of a run(): a dense
// [nSamp, nChannels, nTx, nRep] int16 array, column-major (nSamp
// fastest). The driver's raw buffers are channel-fastest; Demux
// transposes them into this layout.
type RFTensor struct {
	NSamp int
	NChannels int
	NTx int
	NRep int
	Data []int16
}

func newTensor(nSamp, nChannels, nTx, nRep int) *RFTensor {
	return &RFTensor{
		NSamp: nSamp, NChannels: nChannels, NTx: nTx, NRep: nRep,
		Data: make([]int16, nSamp*nChannels*nTx*nRep),
	}
}

func (r *RFTensor) index(samp, c, t, rep int) int {
	return samp + r.NSamp*(c+r.NChannels*(t+r.NTx*rep))
}

// At returns the sample at [samp, c, t, rep].
func (r *RFTensor) At(samp, c, t, rep int) int16 {
	return r.Data[r.index(samp, c, t, rep)]
}

func (r *RFTensor) set(samp, c, t, rep int, v int16) {
	r.Data[r.index(samp, c, t, rep)] = v
}
