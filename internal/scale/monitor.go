// Package scale maintains the last known weight reading. One background
// goroutine samples the hardware on a fixed interval; readers get the last
// sample immediately and never block.
package scale

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reader is the opaque weight source capability, e.g. a serial scale
// framing reader. Read may block; the monitor absorbs that on its own
// goroutine.
type Reader interface {
	Read() (float64, error)
}

// Monitor polls a Reader and keeps the latest sample in a mutex-guarded
// slot. Only the latest value matters, so there is no queue.
type Monitor struct {
	mu      sync.RWMutex
	current float64

	reader   Reader
	ticker   *time.Ticker
	stopChan chan struct{}
	started  bool
}

func NewMonitor(reader Reader) *Monitor {
	return &Monitor{
		reader:   reader,
		stopChan: make(chan struct{}),
	}
}

// Start begins background sampling. interval defaults to 500ms.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	if m.started {
		return
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	m.started = true
	m.ticker = time.NewTicker(interval)
	go m.sampleLoop(ctx)

	zap.L().Info("weight monitor started",
		zap.Duration("interval", interval),
	)
}

// Stop halts background sampling. The last sample stays readable.
func (m *Monitor) Stop() {
	if !m.started {
		return
	}
	m.ticker.Stop()
	close(m.stopChan)
	m.started = false
	zap.L().Info("weight monitor stopped")
}

func (m *Monitor) sampleLoop(ctx context.Context) {
	for {
		select {
		case <-m.ticker.C:
			m.sample()
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) sample() {
	w, err := m.reader.Read()
	if err != nil {
		// keep the last known value; the scale drops out routinely
		zap.L().Debug("weight read failed", zap.Error(err))
		return
	}
	m.mu.Lock()
	m.current = w
	m.mu.Unlock()
}

// Current returns the last known sample immediately, or 0 before the
// first successful read.
func (m *Monitor) Current() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SimReader produces plausible random weights for installs without scale
// hardware.
type SimReader struct{}

func (SimReader) Read() (float64, error) {
	w := 1.0 + rand.Float64()*9.0
	return math.Round(w*1000) / 1000, nil
}
