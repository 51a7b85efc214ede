package scheduler

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// ErrUnknownTrigger is returned when a trigger name is not registered
var ErrUnknownTrigger = errors.New("unknown cron trigger")

// Task is the body of one cron trigger. Errors are logged with elapsed time
// and never stop the trigger or the orchestrator.
type Task func() error

// Names of the built-in triggers
const (
	TriggerNotificationsCheck = "notifications-check"
	TriggerLeadFollowUps      = "lead-followups"
	TriggerOverdueTasks       = "overdue-tasks"
	TriggerUpcomingInvoices   = "upcoming-invoices"
	TriggerDailyCleanup       = "daily-cleanup"
	TriggerCompleteCheck      = "complete-check"
)

// TriggerStatus describes one named trigger for introspection
type TriggerStatus struct {
	Name     string `json:"name"`
	Interval string `json:"interval"`
	Running  bool   `json:"running"`
}

// Orchestrator holds a table of named, interval-based triggers. Each trigger
// runs on its own timer; triggers never coordinate with each other, and a
// tick fires even while a previous run of the same trigger is still in
// flight, so task bodies must tolerate re-entry.
type Orchestrator struct {
	mu   sync.Mutex
	jobs map[string]*job
}

type job struct {
	name       string
	interval   time.Duration
	startDelay func() time.Duration
	task       Task
	stopCh     chan struct{}
	running    bool
}

// New creates an empty Orchestrator
func New() *Orchestrator {
	return &Orchestrator{jobs: map[string]*job{}}
}

// Schedule registers a named trigger firing every interval and starts it.
// Re-registering a name destroys and replaces the prior trigger.
func (o *Orchestrator) Schedule(name string, interval time.Duration, task Task) {
	o.register(&job{name: name, interval: interval, task: task})
}

// ScheduleDaily registers a trigger that fires once a day at the given wall
// clock time, then every 24 hours after that.
func (o *Orchestrator) ScheduleDaily(name string, hour, minute int, task Task) {
	o.register(&job{
		name:       name,
		interval:   24 * time.Hour,
		startDelay: func() time.Duration { return untilNext(hour, minute) },
		task:       task,
	})
}

func (o *Orchestrator) register(j *job) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if prev, ok := o.jobs[j.name]; ok && prev.running {
		close(prev.stopCh)
	}

	j.stopCh = make(chan struct{})
	j.running = true
	o.jobs[j.name] = j
	go o.runLoop(j, j.stopCh)
}

// Start resumes a stopped trigger. Unknown names are an error.
func (o *Orchestrator) Start(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	j, ok := o.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	if j.running {
		return nil
	}

	j.stopCh = make(chan struct{})
	j.running = true
	go o.runLoop(j, j.stopCh)
	return nil
}

// Stop halts a trigger before its next fire. An in-flight run is not
// interrupted. The trigger definition is kept so it can be started again.
func (o *Orchestrator) Stop(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	j, ok := o.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	if j.running {
		close(j.stopCh)
		j.running = false
	}
	return nil
}

// Cancel stops and removes a trigger entirely. Reports whether it existed.
func (o *Orchestrator) Cancel(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	j, ok := o.jobs[name]
	if !ok {
		return false
	}
	if j.running {
		close(j.stopCh)
	}
	delete(o.jobs, name)
	return true
}

// StopAll halts every trigger, keeping definitions
func (o *Orchestrator) StopAll() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, j := range o.jobs {
		if j.running {
			close(j.stopCh)
			j.running = false
		}
	}
}

// Status lists every registered trigger, sorted by name
func (o *Orchestrator) Status() []TriggerStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	statuses := make([]TriggerStatus, 0, len(o.jobs))
	for _, j := range o.jobs {
		statuses = append(statuses, TriggerStatus{
			Name:     j.name,
			Interval: j.interval.String(),
			Running:  j.running,
		})
	}
	sort.Slice(statuses, func(i, k int) bool { return statuses[i].Name < statuses[k].Name })
	return statuses
}

// RunNow executes a trigger's task synchronously, outside its schedule
func (o *Orchestrator) RunNow(name string) error {
	o.mu.Lock()
	j, ok := o.jobs[name]
	o.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	return j.task()
}

func (o *Orchestrator) runLoop(j *job, stopCh chan struct{}) {
	if j.startDelay != nil {
		timer := time.NewTimer(j.startDelay())
		select {
		case <-timer.C:
			go o.safeRun(j.name, j.task)
		case <-stopCh:
			timer.Stop()
			return
		}
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// each tick runs independently; a slow run does not block the next
			go o.safeRun(j.name, j.task)
		case <-stopCh:
			return
		}
	}
}

func (o *Orchestrator) safeRun(name string, task Task) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Cron trigger %s panicked after %v: %v", name, time.Since(start), r)
		}
	}()

	if err := task(); err != nil {
		log.Printf("Cron trigger %s failed after %v: %v", name, time.Since(start), err)
	}
}

// RegisterDefaultTriggers installs the standard trigger table on top of a
// Dispatcher and starts all of them.
func RegisterDefaultTriggers(o *Orchestrator, d *Dispatcher) {
	o.Schedule(TriggerNotificationsCheck, 5*time.Minute, func() error {
		_, err := d.DispatchDue()
		return err
	})
	o.Schedule(TriggerLeadFollowUps, time.Hour, func() error {
		_, err := d.CheckLeadFollowUps()
		return err
	})
	o.Schedule(TriggerOverdueTasks, 2*time.Hour, func() error {
		_, _, err := d.CheckTaskDeadlines()
		return err
	})
	o.Schedule(TriggerUpcomingInvoices, 4*time.Hour, func() error {
		_, err := d.CheckUpcomingInvoices()
		return err
	})
	o.ScheduleDaily(TriggerDailyCleanup, 2, 0, func() error {
		_, err := d.Cleanup()
		return err
	})
	o.Schedule(TriggerCompleteCheck, 6*time.Hour, func() error {
		_, err := d.CheckAll()
		return err
	})
}

func untilNext(hour, minute int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
