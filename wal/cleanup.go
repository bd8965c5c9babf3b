package wal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultRetentionDays is how long old run journals are kept.
const DefaultRetentionDays = 30

// Cleanup removes journal files older than the retention period and
// returns how many were deleted.
func Cleanup(dir string, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := filepath.Glob(filepath.Join(dir, filePrefix+"-*.wal"))
	if err != nil {
		return 0, fmt.Errorf("failed to list journal files: %w", err)
	}

	removed := 0
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(file); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", file, err)
		}
		removed++
	}
	return removed, nil
}
