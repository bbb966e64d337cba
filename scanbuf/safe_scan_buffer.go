package scanbuf

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// SafeScanBuffer guards a ScanBuffer with a mutex and counts the operations
// made on it.
type SafeScanBuffer struct {
	buffer   *ScanBuffer
	mutex    sync.Mutex
	pushed   atomic.Int64
	popped   atomic.Int64
	evicted  atomic.Int64
	cleared  atomic.Int64
	queries  atomic.Int64
	lastPush atomic.Int64 // unix nanoseconds
}

// Stats is a point in time copy of the SafeScanBuffer counters.
type Stats struct {
	Pushed   int64
	Popped   int64
	Evicted  int64
	Cleared  int64
	Queries  int64
	LastPush time.Time
}

func NewSafeScanBuffer(buffer *ScanBuffer) *SafeScanBuffer {
	return &SafeScanBuffer{buffer: buffer}
}

func (this *SafeScanBuffer) NewScan(scan []float64) bool {
	this.mutex.Lock()
	evicted := this.buffer.NewScan(scan)
	this.mutex.Unlock()

	this.pushed.Add(1)
	if evicted {
		this.evicted.Add(1)
	}
	this.lastPush.Store(time.Now().UnixNano())
	return evicted
}

func (this *SafeScanBuffer) GetScan() []float64 {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	scan := this.buffer.GetScan()
	if len(scan) > 0 {
		this.popped.Add(1)
	}
	return scan
}

func (this *SafeScanBuffer) Clear() {
	this.mutex.Lock()
	this.buffer.Clear()
	this.mutex.Unlock()
	this.cleared.Add(1)
}

func (this *SafeScanBuffer) GetDistance(angle float64) (float64, error) {
	this.queries.Add(1)
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.buffer.GetDistance(angle)
}

func (this *SafeScanBuffer) LatestScan() []float64 {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.buffer.LatestScan()
}

// WriteTo writes the latest scan in the ScanBuffer text format. Only the
// latest scan is copied under the lock, w is written without holding it.
func (this *SafeScanBuffer) WriteTo(w io.Writer) (int64, error) {
	return WriteScan(w, this.LatestScan())
}

func (this *SafeScanBuffer) Len() int {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.buffer.Len()
}

// Cap, ScanLength and Resolution are fixed at construction and need no lock.
func (this *SafeScanBuffer) Cap() int { return this.buffer.Cap() }
func (this *SafeScanBuffer) ScanLength() int { return this.buffer.ScanLength() }
func (this *SafeScanBuffer) Resolution() float64 { return this.buffer.Resolution() }

func (this *SafeScanBuffer) Stats() Stats {
	stats := Stats{
		Pushed:  this.pushed.Load(),
		Popped:  this.popped.Load(),
		Evicted: this.evicted.Load(),
		Cleared: this.cleared.Load(),
		Queries: this.queries.Load(),
	}
	if last := this.lastPush.Load(); last != 0 {
		stats.LastPush = time.Unix(0, last)
	}
	return stats
}
