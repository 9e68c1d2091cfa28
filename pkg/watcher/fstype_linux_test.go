//go:build linux

package watcher

import "testing"

func TestClassifyMagic(t *testing.T) {
	tests := []struct {
		magic int64
		want  FilesystemType
	}{
		{0x6969, FSTypeNFS},
		{0xff534d42, FSTypeSMB},
		{0xfe534d42, FSTypeSMB},
		{0x517b, FSTypeSMB},
		{0x65735546, FSTypeFUSE},
		{0x01021997, FSType9P},
		{0xef53, FSTypeLocal}, // ext4
	}
	for _, tt := range tests {
		if got := classifyMagic(tt.magic); got != tt.want {
			t.Errorf("classifyMagic(%#x) = %s, want %s", tt.magic, got, tt.want)
		}
	}
}

func TestDetectFilesystemType_TempDir(t *testing.T) {
	if got := DetectFilesystemType(t.TempDir() + "/x.csv"); got == FSTypeUnknown {
		t.Error("expected a classification for the temp dir")
	}
}
