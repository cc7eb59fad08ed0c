//go:build windows

package dmaxfer

import "fmt"

// Transfer is unimplemented on Windows: the OEM device nodes this
// package reads are Linux-only character devices.
func Transfer(cfg Config) (*Result, error) {
	return nil, fmt.Errorf("dmaxfer: bulk transfer not supported on Windows")
}
