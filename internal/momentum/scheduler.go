package momentum

import (
	"sync"
	"time"
)

// Scheduler runs a callback at a fixed rate until stopped
type Scheduler interface {
	// Every calls fn every interval. The returned stop function never blocks and may
	// be called from inside fn or more than once.
	Every(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler runs callbacks on a time.Ticker goroutine
type TickerScheduler struct{}

// Every implements Scheduler
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// ManualScheduler runs callbacks only when Tick is called. It is used by tests and
// by hosts that drive animation from their own frame loop.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	fn      func()
	stopped bool
}

// Every implements Scheduler
func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	task := &manualTask{fn: fn}

	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		task.stopped = true
		m.mu.Unlock()
	}
}

// Tick runs every live task once and returns how many ran
func (m *ManualScheduler) Tick() int {
	m.mu.Lock()
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.tasks = live
	run := make([]*manualTask, len(live))
	copy(run, live)
	m.mu.Unlock()

	ran := 0
	for _, t := range run {
		m.mu.Lock()
		stopped := t.stopped
		m.mu.Unlock()
		if stopped {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

// Active returns the number of tasks that have not been stopped
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}
