// Package worldstage tracks the lifecycle stage of a game loop.
package worldstage

import (
	"sync"
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // The loop has been created but not started
	Running      Stage = "Running"      // The loop is ticking
	ShuttingDown Stage = "ShuttingDown" // The loop received a shutdown request or a tick failed
	ShutDown     Stage = "ShutDown"     // The loop has exited
)

// Manager holds the current stage and lets goroutines wait for a stage to be reached.
type Manager struct {
	current atomic.Value

	mu      sync.Mutex
	waiters map[Stage]chan struct{}
}

func NewManager() *Manager {
	m := &Manager{
		waiters: make(map[Stage]chan struct{}),
	}
	m.current.Store(Init)
	return m
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

// CompareAndSwap moves to newStage only if the current stage is oldStage.
func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current.CompareAndSwap(oldStage, newStage) {
		return false
	}
	m.notify(newStage)
	return true
}

func (m *Manager) Store(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.Store(stage)
	m.notify(stage)
}

// NotifyOnStage returns a channel that is closed once the given stage is reached. If the stage is the
// current one, the channel is already closed.
func (m *Manager) NotifyOnStage(stage Stage) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.waiters[stage]
	if !ok {
		ch = make(chan struct{})
		m.waiters[stage] = ch
	}
	if m.Current() == stage {
		closeOnce(ch)
	}
	return ch
}

func (m *Manager) notify(stage Stage) {
	if ch, ok := m.waiters[stage]; ok {
		closeOnce(ch)
	}
}

func closeOnce(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}
