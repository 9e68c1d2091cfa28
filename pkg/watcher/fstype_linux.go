//go:build linux

package watcher

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// statfs f_type magic numbers, see statfs(2).
const (
	magicNFS  = 0x6969
	magicSMB  = 0x517b
	magicCIFS = 0xff534d42
	magicSMB2 = 0xfe534d42
	magicFUSE = 0x65735546
	magic9P   = 0x01021997
)

// DetectFilesystemType classifies the filesystem holding path. The file
// may not exist yet, so its directory is inspected.
func DetectFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(filepath.Dir(path), &st); err != nil {
		return FSTypeUnknown
	}
	return classifyMagic(int64(st.Type))
}

func classifyMagic(magic int64) FilesystemType {
	switch uint32(magic) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicCIFS, magicSMB2:
		return FSTypeSMB
	case magicFUSE:
		return FSTypeFUSE
	case magic9P:
		return FSType9P
	}
	return FSTypeLocal
}
