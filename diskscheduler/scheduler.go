// Package diskscheduler serialises page-sized read/write requests against a
// disk manager on a single background worker, so the buffer pool never
// blocks on disk I/O while holding its latch.
package diskscheduler

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Op discriminates a Request's direction.
type Op int

const (
	OpRead Op = iota
	OpWrite
)

// DiskManager is the synchronous, infallible-at-this-layer contract the
// scheduler drives. A real implementation lives in package diskmanager.
type DiskManager interface {
	ReadPage(pageID int64, buf []byte) error
	WritePage(pageID int64, buf []byte) error
}

// Request carries one read or write and a completion signal. Done is
// buffered with capacity 1 so the worker never blocks handing off the
// result, even if the caller stops waiting.
type Request struct {
	Op     Op
	PageID int64
	Data   []byte
	Done   chan error
}

// NewRequest builds a Request with an already-buffered Done channel.
func NewRequest(op Op, pageID int64, data []byte) *Request {
	return &Request{Op: op, PageID: pageID, Data: data, Done: make(chan error, 1)}
}

// Scheduler owns exclusive access to a DiskManager via a single worker
// goroutine draining a FIFO queue. Requests submitted by the same caller
// complete in submission order; no ordering is promised across callers
// beyond FIFO of the single queue.
type Scheduler struct {
	dm    DiskManager
	queue chan *Request
	wg    sync.WaitGroup
	log   *logrus.Entry
}

// New starts the scheduler's worker goroutine immediately.
func New(dm DiskManager, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	s := &Scheduler{
		dm:    dm,
		queue: make(chan *Request, 256),
		log:   log.WithField("component", "diskscheduler"),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Schedule enqueues req for the worker. It never blocks on I/O itself.
func (s *Scheduler) Schedule(req *Request) {
	s.queue <- req
}

// Stop closes the request queue and blocks until the worker has drained
// every already-enqueued request and exited.
func (s *Scheduler) Stop() {
	close(s.queue)
	s.wg.Wait()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for req := range s.queue {
		var err error
		switch req.Op {
		case OpRead:
			err = s.dm.ReadPage(req.PageID, req.Data)
			s.log.WithFields(logrus.Fields{"page_id": req.PageID, "err": err}).Debug("scheduled read completed")
		case OpWrite:
			err = s.dm.WritePage(req.PageID, req.Data)
			s.log.WithFields(logrus.Fields{"page_id": req.PageID, "err": err}).Debug("scheduled write completed")
		}
		req.Done <- err
		close(req.Done)
	}
}
