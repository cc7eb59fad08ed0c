//go:build linux

package dmaxfer

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Transfer reads cfg.NWords int16 samples from cfg.DevicePath,
// tuning the pipe buffer to 1 MB and reading in large chunks to
// minimize syscall overhead.
func Transfer(cfg Config) (*Result, error) {
	fd, err := unix.Open(cfg.DevicePath, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open device %s: %w", cfg.DevicePath, err)
	}
	defer unix.Close(fd)

	const maxPipeSize = 1024 * 1024
	_, _ = unix.FcntlInt(uintptr(fd), unix.F_SETPIPE_SZ, maxPipeSize)

	byteLen := cfg.NWords * 2
	data := make([]byte, byteLen)

	for i := 0; i < len(data); i += 4096 {
		data[i] = 0
	}

	start := time.Now()
	totalRead := 0
	const chunkSize = 4 * 1024 * 1024
	for totalRead < byteLen {
		remaining := byteLen - totalRead
		readSize := remaining
		if readSize > chunkSize {
			readSize = chunkSize
		}
		n, err := unix.Read(fd, data[totalRead:totalRead+readSize])
		if n > 0 {
			totalRead += n
		}
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("read failed after %d bytes: %w", totalRead, err)
		}
		if n == 0 {
			break
		}
	}
	elapsed := time.Since(start)
	data = data[:totalRead]

	samples := make([]int16, totalRead/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	mb := float64(totalRead) / (1024 * 1024)
	mbps := 0.0
	if elapsed.Seconds() > 0 {
		mbps = mb / elapsed.Seconds()
	}

	return &Result{Samples: samples, Duration: elapsed, Throughput: mbps}, nil
}
