package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var networkFilesystems = map[string]struct{}{
	"afpfs":  {},
	"cifs":   {},
	"nfs":    {},
	"smbfs":  {},
	"smb2":   {},
	"webdav": {},
}

// ErrNetworkFilesystem is returned for lock paths where flock(2) is not
// reliable.
var ErrNetworkFilesystem = errors.New("lock path is on a network filesystem")

// CheckPath reports ErrNetworkFilesystem when path, or its nearest existing
// parent, lives on a network mount. Acquire runs the same check.
func CheckPath(path string) error {
	return validateLocalFilesystem(path)
}

func validateLocalFilesystem(path string) error {
	return validateLocalFilesystemWithDetector(path, detectFilesystemType)
}

func validateLocalFilesystemWithDetector(path string, detector func(string) (string, error)) error {
	inspectPath, err := nearestExistingPath(path)
	if err != nil {
		return fmt.Errorf("resolve lock path %q: %w", path, err)
	}

	fsType, err := detector(inspectPath)
	if err != nil {
		return fmt.Errorf("detect filesystem for %q: %w", inspectPath, err)
	}

	if isNetworkFilesystem(fsType) {
		return fmt.Errorf("%w: %q is on %q; set host.lock_path to a local path such as $XDG_RUNTIME_DIR/pmlaunch.lock",
			ErrNetworkFilesystem, path, fsType)
	}

	return nil
}

func nearestExistingPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}

	candidate := absPath
	for {
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %q: %w", candidate, err)
		}

		parent := filepath.Dir(candidate)
		if parent == candidate {
			return "", fmt.Errorf("no existing parent for %q", absPath)
		}
		candidate = parent
	}
}

func isNetworkFilesystem(fsType string) bool {
	normalized := strings.TrimSpace(strings.ToLower(fsType))
	_, found := networkFilesystems[normalized]
	return found
}
