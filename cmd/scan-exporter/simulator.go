package main

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/claytonsingh/golib/syncsignal"
	"github.com/claytonsingh/scan-exporter/scanbuf"
	log "github.com/sirupsen/logrus"
)

// Simulator stands in for a real sensor. Produce pushes a generated scan every
// interval and Consume removes scans at random, so the buffer sees both
// evictions and FIFO reads.
type Simulator struct {
	name     string
	buffer   *scanbuf.SafeScanBuffer
	interval time.Duration
	maxRange float64
	popRatio float64
	wakeup   *syncsignal.Signal
	random   *rand.Rand
	mutex    sync.Mutex
	rotation float64
}

func NewSimulator(sensor SensorConfig, buffer *scanbuf.SafeScanBuffer, wakeup *syncsignal.Signal, popRatio float64, seed int64) *Simulator {
	return &Simulator{
		name:     sensor.Name,
		buffer:   buffer,
		interval: sensor.Interval,
		maxRange: sensor.MaxRange,
		popRatio: popRatio,
		wakeup:   wakeup,
		random:   rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
	}
}

// GenerateScan returns one sweep of a room shaped distance profile with some
// noise. The profile turns a little every call. Real sensors drop or repeat
// returns, so the sweep is between 3/4 and 5/4 of the buffer's scan length and
// the buffer has to pad or truncate it.
func (this *Simulator) GenerateScan() []float64 {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	length := this.buffer.ScanLength()
	step := 0.0
	if length > 1 {
		step = scanbuf.MaxAngle / float64(length-1)
	}
	scan := make([]float64, length*3/4+this.random.IntN(length/2+1))
	for i := range scan {
		theta := (float64(i)*step + this.rotation) * math.Pi / 180
		d := this.maxRange * (0.6 + 0.3*math.Sin(2*theta))
		d += this.random.NormFloat64() * 0.01 * this.maxRange
		scan[i] = math.Min(math.Max(d, 0), this.maxRange)
	}
	this.rotation = math.Mod(this.rotation+1, 360)
	return scan
}

func (this *Simulator) roll() float64 {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.random.Float64()
}

// Produce pushes a scan every interval until ctx is done.
func (this *Simulator) Produce(ctx context.Context) {
	ticker := time.NewTicker(this.interval)
	defer ticker.Stop()
	// wake any consumer blocked on the signal so it can observe ctx
	defer this.wakeup.Signal()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if this.buffer.NewScan(this.GenerateScan()) {
				log.WithField("sensor", this.name).Trace("buffer full, oldest scan evicted")
			}
			this.wakeup.Signal()
		}
	}
}

// Consume waits for produced scans and removes one with probability popRatio.
func (this *Simulator) Consume(ctx context.Context) {
	Wait := this.wakeup.GetWaiter(false)
	for {
		Wait()
		if ctx.Err() != nil {
			return
		}
		this.ConsumeOnce()
	}
}

// ConsumeOnce makes a single pop decision and returns the scan removed, if any.
func (this *Simulator) ConsumeOnce() []float64 {
	if this.roll() >= this.popRatio {
		return nil
	}
	scan := this.buffer.GetScan()
	if len(scan) > 0 {
		log.WithFields(log.Fields{
			"sensor":    this.name,
			"remaining": this.buffer.Len(),
		}).Debug("scan consumed")
	}
	return scan
}
