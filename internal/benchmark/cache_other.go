//go:build !unix

package benchmark

// clearCache is a no-op on platforms without sync(2).
func clearCache() {}
