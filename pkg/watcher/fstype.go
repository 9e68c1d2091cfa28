package watcher

// FilesystemType is a coarse classification of the filesystem holding the
// watched file. Network and FUSE mounts do not deliver inotify events for
// remote writers, so the watcher polls on them.
type FilesystemType string

const (
	FSTypeUnknown FilesystemType = "unknown"
	FSTypeLocal   FilesystemType = "local"
	FSTypeNFS     FilesystemType = "nfs"
	FSTypeSMB     FilesystemType = "smb"
	FSTypeFUSE    FilesystemType = "fuse"
	FSType9P      FilesystemType = "9p"
)

func isRemoteFilesystem(t FilesystemType) bool {
	switch t {
	case FSTypeNFS, FSTypeSMB, FSTypeFUSE, FSType9P:
		return true
	}
	return false
}
