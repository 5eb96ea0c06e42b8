// Package schedule runs recurring maintenance tasks inside the API
// process.
//
//	schedule.Every(4).Minutes().Name("catalog-cache-warm").Run(warm)
//	schedule.Cron("30 3 * * *").Name("log-purge").Run(purge)
//	schedule.Start(ctx)
//
// Interval tasks fire once immediately and then on their interval; cron
// tasks follow a 5-field expression (minute hour dom month dow) checked
// once per ticked minute.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/changyuyeo/fitbody/pkg/logger"
)

// job is one registered recurring task.
type job struct {
	name      string
	every     time.Duration // 0 when cron-driven
	cron      string
	fn        func()
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	busy    bool
}

var (
	regMu sync.Mutex
	jobs  []*job
)

// Builder configures a job before Run registers it.
type Builder struct {
	j *job
}

// Every starts an interval job definition: Every(4).Minutes().
func Every(n int) *Interval { return &Interval{n: n} }

// Interval picks the unit for an Every(n) job.
type Interval struct{ n int }

func (i *Interval) Minutes() *Builder {
	return &Builder{j: &job{every: time.Duration(i.n) * time.Minute}}
}

// Cron starts a job driven by a 5-field cron expression.
func Cron(expr string) *Builder {
	return &Builder{j: &job{cron: expr}}
}

// Name labels the job in logs.
func (b *Builder) Name(name string) *Builder {
	b.j.name = name
	return b
}

// WithoutOverlapping skips a firing while the previous run is still going.
func (b *Builder) WithoutOverlapping() *Builder {
	b.j.noOverlap = true
	return b
}

// Run registers the job. Start must be called for anything to fire.
func (b *Builder) Run(fn func()) {
	b.j.fn = fn
	regMu.Lock()
	if b.j.name == "" {
		b.j.name = fmt.Sprintf("job-%d", len(jobs)+1)
	}
	jobs = append(jobs, b.j)
	regMu.Unlock()
}

// Start ticks the registry every second until ctx is cancelled. Call once
// at boot, after the jobs are registered.
func Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		logger.Info("schedule: started")
		for {
			select {
			case <-ctx.Done():
				logger.Info("schedule: stopped")
				return
			case now := <-ticker.C:
				tick(now)
			}
		}
	}()
}

func tick(now time.Time) {
	regMu.Lock()
	due := make([]*job, 0, len(jobs))
	for _, j := range jobs {
		if j.due(now) {
			due = append(due, j)
		}
	}
	regMu.Unlock()

	for _, j := range due {
		j.fire()
	}
}

func (j *job) due(now time.Time) bool {
	if j.cron != "" {
		// One firing per matching minute: only the tick at second zero
		// counts.
		if now.Second() != 0 {
			return false
		}
		return cronMatches(j.cron, now)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun.IsZero() || now.Sub(j.lastRun) >= j.every
}

func (j *job) fire() {
	j.mu.Lock()
	if j.noOverlap && j.busy {
		j.mu.Unlock()
		logger.Warn("schedule: previous run still going, skipping", "job", j.name)
		return
	}
	j.busy = true
	j.lastRun = time.Now()
	j.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: job panicked", "job", j.name, "panic", r)
			}
			j.mu.Lock()
			j.busy = false
			j.mu.Unlock()
		}()

		logger.Info("schedule: running", "job", j.name)
		j.fn()
	}()
}

// cronMatches checks a 5-field expression against t. Fields accept "*",
// an exact number, "*/step" and "lo-hi" ranges.
func cronMatches(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	values := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, field := range fields {
		if !fieldMatches(field, values[i]) {
			return false
		}
	}
	return true
}

func fieldMatches(field string, val int) bool {
	switch {
	case field == "*":
		return true
	case strings.HasPrefix(field, "*/"):
		step, err := strconv.Atoi(field[2:])
		return err == nil && step > 0 && val%step == 0
	case strings.Contains(field, "-"):
		lo, hi, ok := strings.Cut(field, "-")
		if !ok {
			return false
		}
		low, err1 := strconv.Atoi(lo)
		high, err2 := strconv.Atoi(hi)
		return err1 == nil && err2 == nil && val >= low && val <= high
	default:
		n, err := strconv.Atoi(field)
		return err == nil && n == val
	}
}
