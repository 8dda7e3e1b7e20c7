//go:build unix

package benchmark

import "syscall"

// clearCache asks the kernel to flush dirty buffers before a timed
// run. Best effort only: failure never surfaces and never affects
// results.
func clearCache() {
	defer func() { _ = recover() }()
	syscall.Sync()
}
