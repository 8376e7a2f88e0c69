package scale

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	mu    sync.Mutex
	value float64
	err   error
	reads int32
}

func (s *stubReader) Read() (float64, error) {
	atomic.AddInt32(&s.reads, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.err
}

func (s *stubReader) set(v float64, err error) {
	s.mu.Lock()
	s.value, s.err = v, err
	s.mu.Unlock()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCurrentIsZeroBeforeFirstSample(t *testing.T) {
	m := NewMonitor(&stubReader{value: 3.5})
	assert.Zero(t, m.Current())
}

func TestMonitorTracksLatestSample(t *testing.T) {
	r := &stubReader{value: 1.5}
	m := NewMonitor(r)
	m.Start(context.Background(), 10*time.Millisecond)
	defer m.Stop()

	waitFor(t, func() bool { return m.Current() == 1.5 })

	r.set(2.75, nil)
	waitFor(t, func() bool { return m.Current() == 2.75 })
}

func TestReadFailureKeepsLastSample(t *testing.T) {
	r := &stubReader{value: 4.2}
	m := NewMonitor(r)
	m.Start(context.Background(), 10*time.Millisecond)
	defer m.Stop()

	waitFor(t, func() bool { return m.Current() == 4.2 })

	r.set(0, errors.New("scale unplugged"))
	before := atomic.LoadInt32(&r.reads)
	waitFor(t, func() bool { return atomic.LoadInt32(&r.reads) > before+2 })

	assert.Equal(t, 4.2, m.Current())
}

func TestStopHaltsSampling(t *testing.T) {
	r := &stubReader{value: 1}
	m := NewMonitor(r)
	m.Start(context.Background(), 10*time.Millisecond)
	waitFor(t, func() bool { return atomic.LoadInt32(&r.reads) > 0 })
	m.Stop()

	after := atomic.LoadInt32(&r.reads)
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&r.reads), after+1)
	assert.Equal(t, 1.0, m.Current())
}

func TestConcurrentReadersDoNotBlockWriter(t *testing.T) {
	r := &stubReader{value: 2}
	m := NewMonitor(r)
	m.Start(context.Background(), time.Millisecond)
	defer m.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = m.Current()
			}
		}()
	}
	wg.Wait()

	waitFor(t, func() bool { return m.Current() == 2 })
}

func TestSimReaderStaysInRange(t *testing.T) {
	var r SimReader
	for i := 0; i < 100; i++ {
		w, err := r.Read()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, w, 1.0)
		assert.LessOrEqual(t, w, 10.0)
	}
}
