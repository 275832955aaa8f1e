package worker

import (
	"sync"
	"time"
)

// Gate приостанавливает циклы сверки на время ручных правок таблицы,
// чтобы цикл не прочитал наполовину сдвинутые строки.
type Gate struct {
	mu        sync.Mutex
	suspended bool
	resumeAt  *time.Timer
}

func NewGate() *Gate {
	return &Gate{}
}

// Suspend останавливает запуск новых циклов. Уже идущий цикл дорабатывает.
func (g *Gate) Suspend() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimerLocked()
	g.suspended = true
	gateSuspended.Set(1)
}

// Resume снимает приостановку немедленно.
func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimerLocked()
	g.suspended = false
	gateSuspended.Set(0)
}

// ResumeAfter снимает приостановку по истечении паузы. Повторный вызов
// перезапускает отсчёт.
func (g *Gate) ResumeAfter(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimerLocked()
	g.suspended = true
	gateSuspended.Set(1)

	g.resumeAt = time.AfterFunc(d, func() {
		g.Resume()
	})
}

func (g *Gate) IsSuspended() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suspended
}

func (g *Gate) stopTimerLocked() {
	if g.resumeAt != nil {
		g.resumeAt.Stop()
		g.resumeAt = nil
	}
}
