package wal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const recordHeaderSize = 16 // LSN(8) + LEN(4) + CRC(4)

// Manager is a minimal, segment-rolling append-only log, adapted from the
// teacher's wal_manager with recovery/replay of table operations trimmed
// out — that machinery belongs to the execution layer this core does not
// implement. What survives is exactly the durability watermark bufferpool
// needs: Append assigns an LSN, Sync makes everything up to the highest
// appended LSN durable and visible via GetFlushedLSN.
type Manager struct {
	mu         sync.Mutex
	dir        string
	current    *segment
	nextID     uint64
	currentLSN uint64
	flushedLSN uint64
	log        *logrus.Entry
}

// Open creates dir if needed and starts a fresh segment.
func Open(dir string, log *logrus.Logger) (*Manager, error) {
	if log == nil {
		log = logrus.New()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("wal: mkdir %s: %w", dir, err)
	}
	m := &Manager{dir: dir, log: log.WithField("component", "wal")}
	if err := m.rollSegment(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) rollSegment() error {
	if m.current != nil {
		if err := m.current.sync(); err != nil {
			return fmt.Errorf("wal: sync segment %d before roll: %w", m.current.id, err)
		}
	}
	seg := newSegment(m.nextID, m.dir)
	if err := seg.open(); err != nil {
		return fmt.Errorf("wal: open segment %d: %w", m.nextID, err)
	}
	m.nextID++
	m.current = seg
	return nil
}

// Append assigns the next LSN to data, writes the framed record to the
// current segment (rolling to a new segment first if the current one is
// full), and returns the assigned LSN. The record is not yet durable until
// a subsequent Sync.
func (m *Manager) Append(data []byte) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.full() {
		if err := m.rollSegment(); err != nil {
			return 0, err
		}
	}

	m.currentLSN++
	lsn := m.currentLSN
	record := encodeRecord(lsn, data)
	if _, err := m.current.append(record); err != nil {
		return 0, fmt.Errorf("wal: append lsn %d: %w", lsn, err)
	}
	m.log.WithField("lsn", lsn).Debug("appended record")
	return lsn, nil
}

// Sync forces the current segment to disk and advances the durable
// watermark to the highest LSN appended so far.
func (m *Manager) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.current.sync(); err != nil {
		return fmt.Errorf("wal: sync: %w", err)
	}
	m.flushedLSN = m.currentLSN
	return nil
}

// GetFlushedLSN implements Sink.
func (m *Manager) GetFlushedLSN() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushedLSN
}

// Close closes the current segment.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.close()
}

func encodeRecord(lsn uint64, data []byte) []byte {
	buf := make([]byte, recordHeaderSize+len(data))
	binary.BigEndian.PutUint64(buf[0:8], lsn)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(data)))
	binary.BigEndian.PutUint32(buf[12:16], recordCRC(lsn, data))
	copy(buf[16:], data)
	return buf
}

func recordCRC(lsn uint64, data []byte) uint32 {
	hasher := crc32.NewIEEE()
	lsnBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(lsnBytes, lsn)
	hasher.Write(lsnBytes)
	hasher.Write(data)
	return hasher.Sum32()
}
