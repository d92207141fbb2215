//go:build !windows

package util

// StartedFromGUI is always false outside Windows.
func StartedFromGUI() bool { return false }
