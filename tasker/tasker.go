// Package tasker runs periodic callbacks from a single loop. Each task keeps
// a countdown that is reduced by the time elapsed between ticks; a task runs
// when its countdown reaches zero and is then rearmed by its period.
package tasker

import (
	"context"
	"time"
)

type Task struct {
	Name   string
	Period time.Duration
	Run    func()

	countdown time.Duration
}

// Countdown returns the time left until the task runs next.
func (t *Task) Countdown() time.Duration {
	return t.countdown
}

type Manager struct {
	tasks []*Task
	now   func() time.Time
}

func New(tasks ...*Task) *Manager {
	for _, t := range tasks {
		t.countdown = t.Period
	}

	return &Manager{
		tasks: tasks,
		now:   time.Now,
	}
}

// Step accounts elapsed time to every task before running any of them, so a
// slow task does not shift the schedule of the tasks after it.
func (m *Manager) Step(elapsed time.Duration) {
	for _, t := range m.tasks {
		t.countdown -= elapsed
	}

	for _, t := range m.tasks {
		if t.countdown > 0 {
			continue
		}

		t.Run()
		t.countdown += t.Period

		/* Don't try to catch up after a long stall */
		if t.countdown <= 0 {
			t.countdown = t.Period
		}
	}
}

// Run calls Step every tick until ctx is done.
func (m *Manager) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := m.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		now := m.now()
		m.Step(now.Sub(last))
		last = now
	}
}
