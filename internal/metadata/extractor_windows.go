//go:build windows

package metadata

import (
	"os"
	"time"

	"golang.org/x/sys/windows"
)

func platformCreatedAt(info os.FileInfo) (time.Time, bool) {
	d, ok := info.Sys().(*windows.Win32FileAttributeData)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(0, d.CreationTime.Nanoseconds()), true
}

func platformAccessedAt(info os.FileInfo) (time.Time, bool) {
	d, ok := info.Sys().(*windows.Win32FileAttributeData)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(0, d.LastAccessTime.Nanoseconds()), true
}

// platformHiddenAttribute checks the Windows FILE_ATTRIBUTE_HIDDEN bit.
func platformHiddenAttribute(info os.FileInfo) bool {
	d, ok := info.Sys().(*windows.Win32FileAttributeData)
	if !ok {
		return false
	}
	return d.FileAttributes&windows.FILE_ATTRIBUTE_HIDDEN != 0
}
