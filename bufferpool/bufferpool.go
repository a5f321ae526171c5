// Package bufferpool ties the frame array, page table, LRU-K replacer, and
// disk scheduler together behind a page-oriented interface, adapted from the
// teacher's storage_engine/bufferpool. Table and index code sat above this
// layer in the teacher and is out of scope here: what remains is the pooling
// and eviction contract itself, generalized so any caller (a trie store, a
// future table layer) can pin and dirty pages of a flat, unbounded logical
// page space.
package bufferpool

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"wickerdb/diskscheduler"
	"wickerdb/replacer"
	"wickerdb/types"
	"wickerdb/wal"
)

// Manager is the buffer pool. It owns a fixed number of frames; pages are
// resident only while some frame holds them, and a global latch protects the
// free list, page table, and replacer bookkeeping. The latch is released
// around every disk wait so no I/O ever happens while other goroutines are
// blocked from touching the pool.
type Manager struct {
	latch      sync.Mutex
	frames     []*Frame
	freeList   []int
	pageTable  map[int64]int
	replacer   *replacer.LRUK
	scheduler  *diskscheduler.Scheduler
	log        wal.Sink
	nextPageID atomic.Int64
	logger     *logrus.Entry
}

// New builds a pool of poolSize frames, an LRU-K replacer with history depth
// k, and a disk scheduler in front of dm. logSink gates the explicit flush
// path (see Design Notes); a nil logSink defaults to wal.NoOp, under which
// every page is always considered flushable.
func New(poolSize, k int, dm diskscheduler.DiskManager, logSink wal.Sink, logger *logrus.Logger) *Manager {
	if poolSize <= 0 {
		panic("bufferpool: poolSize must be positive")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if logSink == nil {
		logSink = wal.NoOp{}
	}

	frames := make([]*Frame, poolSize)
	freeList := make([]int, poolSize)
	for i := range frames {
		frames[i] = newFrame()
		freeList[i] = i
	}

	return &Manager{
		frames:    frames,
		freeList:  freeList,
		pageTable: make(map[int64]int),
		replacer:  replacer.New(k),
		scheduler: diskscheduler.New(dm, logger),
		log:       logSink,
		logger:    logger.WithField("component", "bufferpool"),
	}
}

// Stop stops the underlying disk scheduler, draining in-flight requests.
func (m *Manager) Stop() {
	m.scheduler.Stop()
}

// acquireFrame returns a frame id ready to hold a new page, assuming latch
// is held. It prefers the free list; failing that it evicts, writing back a
// dirty victim if one is chosen. The victim's page table entry is dropped
// before the latch is released for the write-back wait, so a concurrent
// FetchPage for that page id sees a miss and never observes the frame mid
// repurpose.
func (m *Manager) acquireFrame() (int, bool) {
	if n := len(m.freeList); n > 0 {
		id := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		return id, true
	}

	victimID, ok := m.replacer.Evict()
	if !ok {
		return 0, false
	}

	frame := m.frames[victimID]
	frame.Lock()
	oldPageID := frame.PageID
	dirty := frame.Dirty
	data := frame.Data
	frame.Unlock()

	delete(m.pageTable, oldPageID)

	if dirty {
		req := diskscheduler.NewRequest(diskscheduler.OpWrite, oldPageID, data)
		m.scheduler.Schedule(req)
		m.latch.Unlock()
		<-req.Done
		m.latch.Lock()

		frame.Lock()
		frame.Dirty = false
		frame.Unlock()
	}

	return victimID, true
}

// NewPage allocates a fresh, all-zero page, pins it in a frame, and returns
// its id. ok is false if the pool is exhausted (every frame pinned).
func (m *Manager) NewPage() (int64, *Frame, bool) {
	m.latch.Lock()
	defer m.latch.Unlock()

	frameID, ok := m.acquireFrame()
	if !ok {
		return 0, nil, false
	}

	pageID := m.nextPageID.Add(1) - 1
	if pageID < 0 {
		panic("bufferpool: page id counter overflowed")
	}
	frame := m.frames[frameID]

	frame.Lock()
	frame.PageID = pageID
	for i := range frame.Data {
		frame.Data[i] = 0
	}
	frame.PinCount = 1
	frame.Dirty = false
	frame.LSN = 0
	frame.Unlock()

	m.replacer.RecordAccess(frameID, replacer.AccessUnknown)
	m.replacer.SetEvictable(frameID, false)
	m.pageTable[pageID] = frameID

	m.logger.WithField("page_id", pageID).Debug("allocated page")
	return pageID, frame, true
}

// FetchPage pins pageID, reading it from disk into a frame first if it is
// not already resident. ok is false if the page must be read in and no frame
// is available, or if that read fails.
func (m *Manager) FetchPage(pageID int64, accessType replacer.AccessType) (*Frame, bool) {
	m.latch.Lock()

	if frameID, ok := m.pageTable[pageID]; ok {
		frame := m.frames[frameID]
		frame.Lock()
		frame.PinCount++
		frame.Unlock()

		m.replacer.RecordAccess(frameID, accessType)
		m.replacer.SetEvictable(frameID, false)
		m.latch.Unlock()
		return frame, true
	}

	frameID, ok := m.acquireFrame()
	if !ok {
		m.latch.Unlock()
		return nil, false
	}

	frame := m.frames[frameID]
	req := diskscheduler.NewRequest(diskscheduler.OpRead, pageID, frame.Data)
	m.scheduler.Schedule(req)
	m.latch.Unlock()
	err := <-req.Done
	m.latch.Lock()
	defer m.latch.Unlock()

	if err != nil {
		frame.Lock()
		frame.PageID = types.InvalidPageID
		frame.LSN = 0
		frame.Unlock()
		m.freeList = append(m.freeList, frameID)
		m.logger.WithField("page_id", pageID).WithError(err).Warn("read failed, frame returned to free list")
		return nil, false
	}

	if existingID, ok := m.pageTable[pageID]; ok {
		// A concurrent FetchPage installed pageID while this read was in
		// flight: pin its frame and return this one to the free list.
		frame.Lock()
		frame.PageID = types.InvalidPageID
		frame.Unlock()
		m.freeList = append(m.freeList, frameID)
		existing := m.frames[existingID]
		existing.Lock()
		existing.PinCount++
		existing.Unlock()
		m.replacer.RecordAccess(existingID, accessType)
		m.replacer.SetEvictable(existingID, false)
		return existing, true
	}

	frame.Lock()
	frame.PageID = pageID
	frame.PinCount = 1
	frame.Dirty = false
	if len(frame.Data) >= types.PageLSNOffset+8 {
		frame.LSN = binary.LittleEndian.Uint64(frame.Data[types.PageLSNOffset:])
	}
	frame.Unlock()

	m.replacer.RecordAccess(frameID, accessType)
	m.replacer.SetEvictable(frameID, false)
	m.pageTable[pageID] = frameID

	return frame, true
}

// UnpinPage decrements pageID's pin count and, if isDirty, marks it dirty.
// When the pin count reaches zero the frame becomes eligible for eviction.
// Returns false if pageID is not resident or is not currently pinned.
func (m *Manager) UnpinPage(pageID int64, isDirty bool, _ replacer.AccessType) bool {
	m.latch.Lock()
	defer m.latch.Unlock()

	frameID, ok := m.pageTable[pageID]
	if !ok {
		return false
	}

	frame := m.frames[frameID]
	frame.Lock()
	if frame.PinCount == 0 {
		frame.Unlock()
		return false
	}
	frame.PinCount--
	if isDirty {
		frame.Dirty = true
	}
	pinCount := frame.PinCount
	frame.Unlock()

	if pinCount == 0 {
		m.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes pageID back to disk unconditionally, gated by log: a
// dirty page whose LSN exceeds log.GetFlushedLSN() is left dirty and this
// returns false, since flushing it would violate write-ahead-logging.
//
// The frame is pinned (and marked non-evictable) for the duration of the
// write: otherwise a concurrent NewPage/FetchPage could pick this same, ordinarily-unpinned
// frame as an eviction victim while the write is in flight, repurposing and
// re-zeroing its backing array out from under the scheduler and corrupting
// this call's write.
func (m *Manager) FlushPage(pageID int64) bool {
	m.latch.Lock()

	frameID, ok := m.pageTable[pageID]
	if !ok {
		m.latch.Unlock()
		return false
	}

	frame := m.frames[frameID]
	frame.Lock()
	if frame.LSN > m.log.GetFlushedLSN() {
		frame.Unlock()
		m.latch.Unlock()
		return false
	}
	data := frame.Data
	frame.PinCount++
	frame.Unlock()
	m.replacer.SetEvictable(frameID, false)

	req := diskscheduler.NewRequest(diskscheduler.OpWrite, pageID, data)
	m.scheduler.Schedule(req)
	m.latch.Unlock()
	err := <-req.Done
	m.latch.Lock()
	defer m.latch.Unlock()

	frame.Lock()
	flushed := err == nil && frame.PageID == pageID
	if flushed {
		frame.Dirty = false
	}
	frame.PinCount--
	pinCount := frame.PinCount
	frame.Unlock()

	if pinCount == 0 {
		m.replacer.SetEvictable(frameID, true)
	}

	return flushed
}

// FlushAllPages flushes every resident page, skipping any whose LSN is not
// yet covered by log.GetFlushedLSN().
func (m *Manager) FlushAllPages() {
	m.latch.Lock()
	pageIDs := make([]int64, 0, len(m.pageTable))
	for pageID := range m.pageTable {
		pageIDs = append(pageIDs, pageID)
	}
	m.latch.Unlock()

	for _, pageID := range pageIDs {
		m.FlushPage(pageID)
	}
}

// DeletePage removes pageID from the pool, returning its frame to the free
// list. Returns false, refusing the delete, if the page is pinned.
func (m *Manager) DeletePage(pageID int64) bool {
	m.latch.Lock()
	defer m.latch.Unlock()

	frameID, ok := m.pageTable[pageID]
	if !ok {
		return true
	}

	frame := m.frames[frameID]
	frame.Lock()
	pinned := frame.PinCount > 0
	frame.Unlock()
	if pinned {
		return false
	}

	m.replacer.SetEvictable(frameID, true)
	m.replacer.Remove(frameID)
	delete(m.pageTable, pageID)

	frame.Lock()
	frame.PageID = types.InvalidPageID
	for i := range frame.Data {
		frame.Data[i] = 0
	}
	frame.Dirty = false
	frame.LSN = 0
	frame.Unlock()

	m.freeList = append(m.freeList, frameID)
	return true
}
