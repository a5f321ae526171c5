package wal

import (
	"testing"
)

func TestNoOpAlwaysCoversAFlush(t *testing.T) {
	var sink Sink = NoOp{}
	if sink.GetFlushedLSN() == 0 {
		t.Fatalf("NoOp should report a watermark that covers any real LSN")
	}
}

func TestAppendAssignsIncreasingLSNs(t *testing.T) {
	m, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	var last uint64
	for i := 0; i < 5; i++ {
		lsn, err := m.Append([]byte("record"))
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if lsn <= last {
			t.Fatalf("lsn %d should be greater than previous %d", lsn, last)
		}
		last = lsn
	}
}

func TestSyncAdvancesFlushedLSN(t *testing.T) {
	m, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if m.GetFlushedLSN() != 0 {
		t.Fatalf("flushed LSN should start at 0")
	}

	lsn, err := m.Append([]byte("record"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := m.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := m.GetFlushedLSN(); got != lsn {
		t.Fatalf("GetFlushedLSN() = %d; want %d", got, lsn)
	}
}
