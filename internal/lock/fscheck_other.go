//go:build !darwin && !linux

package lock

// detectFilesystemType reports an empty type where statfs is unavailable,
// which validateLocalFilesystem treats as local.
func detectFilesystemType(path string) (string, error) {
	return "", nil
}
