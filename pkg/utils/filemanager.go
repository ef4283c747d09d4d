// =============================================================================
// World Cities Converter - File Manager Utility
// =============================================================================
//
// This module provides the small file helpers shared by the converter and the
// CLI commands.
//
// =============================================================================

package utils

import (
	"errors"
	"io/fs"
	"os"
)

// FileExists checks if a file exists. Errors other than "does not exist"
// (permissions, for example) count as existing so the caller's open reports
// the real cause.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
