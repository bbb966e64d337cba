// Package scanbuf stores LIDAR scans in a fixed pool of reusable slots.
//
// A scan is the set of distances measured over one 180 degree sweep, one
// value every res degrees. The buffer holds up to Cap() scans, evicting the
// oldest when a new one arrives and it is full.
package scanbuf

import (
	"math"
)

const (
	// DefaultCapacity is the number of scan slots used by New.
	DefaultCapacity = 10

	// NoData is returned by GetDistance when the buffer holds no scans.
	NoData = -1.0

	// MaxAngle is the sweep of a single scan in degrees.
	MaxAngle = 180.0

	// MaxValues bounds capacity * scan length, 1 GiB of float64 slots.
	MaxValues = 1 << 27
)

// ScanBuffer is a ring of fixed length scans. It is not safe for concurrent
// use, see SafeScanBuffer.
type ScanBuffer struct {
	resolution float64
	scanLength int
	capacity   int
	data       []float64 // capacity * scanLength values, slot i is data[i*scanLength:(i+1)*scanLength]
	head       int       // oldest scan
	count      int
}

// New creates a buffer with DefaultCapacity slots for the given angular
// resolution in degrees. res must be in (0, 1].
func New(res float64) (*ScanBuffer, error) {
	return NewWithCapacity(res, DefaultCapacity)
}

func NewWithCapacity(res float64, capacity int) (*ScanBuffer, error) {
	// written so that NaN fails
	if !(res > 0 && res <= 1) {
		return nil, &InvalidArgumentError{Argument: "resolution", Value: res}
	}
	if capacity <= 0 {
		return nil, &InvalidArgumentError{Argument: "capacity", Value: float64(capacity)}
	}

	// checked in float64 so a tiny res cannot overflow the int conversion
	length := math.Floor(MaxAngle/res) + 1
	if length > MaxValues {
		return nil, &InvalidArgumentError{Argument: "resolution", Value: res}
	}
	if length*float64(capacity) > MaxValues {
		return nil, &InvalidArgumentError{Argument: "capacity", Value: float64(capacity)}
	}

	scanLength := int(length)
	return &ScanBuffer{
		resolution: res,
		scanLength: scanLength,
		capacity:   capacity,
		data:       make([]float64, capacity*scanLength),
	}, nil
}

// ScanLengthFor returns the number of measurements in a scan taken at res
// degrees, or 0 when res is out of range or the scan would exceed MaxValues.
func ScanLengthFor(res float64) int {
	if !(res > 0 && res <= 1) {
		return 0
	}
	length := math.Floor(MaxAngle/res) + 1
	if length > MaxValues {
		return 0
	}
	return int(length)
}

func (this *ScanBuffer) slot(i int) []float64 {
	return this.data[i*this.scanLength : (i+1)*this.scanLength]
}

func (this *ScanBuffer) next(p int) int {
	return (p + 1) % this.capacity
}

func (this *ScanBuffer) prev(p int) int {
	return (p + this.capacity - 1) % this.capacity
}

// tail is the slot the next scan is written to.
func (this *ScanBuffer) tail() int {
	return (this.head + this.count) % this.capacity
}

// NewScan stores scan as the most recent scan. Short scans are padded with
// zeros and long scans are truncated to ScanLength. When the buffer is full
// the oldest scan is discarded and evicted is true.
func (this *ScanBuffer) NewScan(scan []float64) (evicted bool) {
	dst := this.slot(this.tail())
	n := copy(dst, scan)
	clear(dst[n:])

	if this.count == this.capacity {
		this.head = this.next(this.head)
		return true
	}
	this.count += 1
	return false
}

// GetScan removes the oldest scan and returns a copy of it. An empty slice is
// returned when the buffer is empty.
func (this *ScanBuffer) GetScan() []float64 {
	if this.count == 0 {
		return []float64{}
	}

	scan := make([]float64, this.scanLength)
	copy(scan, this.slot(this.head))

	// tail is derived from head and count, so emptying the buffer leaves
	// head == tail without special casing the last scan
	this.head = this.next(this.head)
	this.count -= 1
	return scan
}

// Clear drops every scan. Slot memory is kept and overwritten by later scans.
func (this *ScanBuffer) Clear() {
	this.head = 0
	this.count = 0
}

// GetDistance returns the distance measured at angle degrees in the most
// recent scan. The angle is mapped to the nearest sample with math.Round, so
// exact halves round away from zero. NoData is returned when the buffer is
// empty.
func (this *ScanBuffer) GetDistance(angle float64) (float64, error) {
	if !(angle >= 0 && angle <= MaxAngle) {
		return 0, &InvalidArgumentError{Argument: "angle", Value: angle}
	}
	if this.count == 0 {
		return NoData, nil
	}
	return this.slot(this.prev(this.tail()))[this.AngleIndex(angle)], nil
}

// AngleIndex maps an angle in [0, 180] to a measurement index.
func (this *ScanBuffer) AngleIndex(angle float64) int {
	return int(math.Round(angle * float64(this.scanLength-1) / MaxAngle))
}

// LatestScan returns a copy of the most recent scan without removing it.
func (this *ScanBuffer) LatestScan() []float64 {
	if this.count == 0 {
		return []float64{}
	}
	scan := make([]float64, this.scanLength)
	copy(scan, this.slot(this.prev(this.tail())))
	return scan
}

// Clone returns a deep copy sharing no storage with this buffer.
func (this *ScanBuffer) Clone() *ScanBuffer {
	clone := *this
	clone.data = make([]float64, len(this.data))
	copy(clone.data, this.data)
	return &clone
}

func (this *ScanBuffer) Len() int { return this.count }
func (this *ScanBuffer) Cap() int { return this.capacity }
func (this *ScanBuffer) ScanLength() int { return this.scanLength }
func (this *ScanBuffer) Resolution() float64 { return this.resolution }
func (this *ScanBuffer) Empty() bool { return this.count == 0 }
func (this *ScanBuffer) Full() bool { return this.count == this.capacity }
