package diskmanager

import (
	"bytes"
	"path/filepath"
	"testing"

	"wickerdb/types"
)

func TestReadUnwrittenPageIsZeroed(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "data.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	buf := make([]byte, types.PageSize)
	if err := m.ReadPage(3, buf); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if !bytes.Equal(buf, make([]byte, types.PageSize)) {
		t.Fatalf("unwritten page should read back as all zeros")
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "data.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	want := make([]byte, types.PageSize)
	copy(want, []byte("hello page"))

	if err := m.WritePage(0, want); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	got := make([]byte, types.PageSize)
	if err := m.ReadPage(0, got); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("read back data does not match what was written")
	}
}

func TestWrongBufferSizeRejected(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "data.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if err := m.WritePage(0, make([]byte, 10)); err == nil {
		t.Fatalf("WritePage with wrong buffer size should fail")
	}
	if err := m.ReadPage(0, make([]byte, 10)); err == nil {
		t.Fatalf("ReadPage with wrong buffer size should fail")
	}
}
