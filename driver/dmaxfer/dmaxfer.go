// Package dmaxfer implements the bulk host transfer of an OEM's DDR
// RX buffer: TransferAllRXBuffersToHost reads nWords int16 samples off
// a raw device node. The real read loop is platform-specific (Linux
// uses tuned pipe/FIFO reads via golang.org/x/sys/unix; Windows has no
// equivalent device path and returns an error), so it is split by
// build tag.
package dmaxfer

import "time"

// Config describes the device-backed transfer for one OEM.
type Config struct {
	DevicePath string
	NWords int // number of int16 samples to read
}

// Result carries the transferred samples plus timing.
type Result struct {
	Samples []int16
	Duration time.Duration
	Throughput float64 // MB/s
}
