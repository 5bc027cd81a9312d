// Package timer implements the pomodoro countdown as an explicit state
// machine. The machine owns no tick source: the host advances it by calling
// Tick once per elapsed second, which keeps every transition deterministic.
package timer

import (
	"context"
	"errors"
	"time"

	dom "github.com/deepthireddy246/focustrack/internal/domain"
)

// Defaults for the two phases.
const (
	DefaultWorkDuration  = 25 * time.Minute
	DefaultBreakDuration = 5 * time.Minute

	defaultRecordTimeout = 10 * time.Second
)

var (
	ErrNoTaskSelected = errors.New("select a task to work on")
	ErrTimerRunning   = errors.New("timer is running")
)

// Phase is the interval kind the countdown is measuring.
type Phase int

const (
	PhaseWork Phase = iota
	PhaseBreak
)

func (p Phase) String() string {
	if p == PhaseBreak {
		return dom.SessionBreak
	}
	return dom.SessionWork
}

// State of the machine.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

// Recorder persists a completed session. Implemented by apiclient.Client.
type Recorder interface {
	RecordSession(ctx context.Context, taskID int64, sessionType string, minutes int) error
}

// RecordResult is the observable outcome of one recording attempt.
type RecordResult struct {
	Phase  Phase
	TaskID int64
	Err    error
}

// Machine drives the focus/break countdown. It is not safe for concurrent
// use; the host must serialize Tick and the command methods on one loop.
type Machine struct {
	recorder      Recorder
	workDur       time.Duration
	breakDur      time.Duration
	recordTimeout time.Duration

	state     State
	phase     Phase
	remaining time.Duration
	taskID    int64
	completed int

	results chan RecordResult
}

// Option configures a Machine.
type Option func(*Machine)

// WithDurations overrides the work and break lengths.
func WithDurations(work, brk time.Duration) Option {
	return func(m *Machine) {
		m.workDur = work
		m.breakDur = brk
	}
}

// WithRecordTimeout bounds each recording call.
func WithRecordTimeout(d time.Duration) Option {
	return func(m *Machine) { m.recordTimeout = d }
}

// New returns a Machine in the Idle state, Work phase, full work duration
// remaining.
func New(rec Recorder, opts ...Option) *Machine {
	m := &Machine{
		recorder:      rec,
		workDur:       DefaultWorkDuration,
		breakDur:      DefaultBreakDuration,
		recordTimeout: defaultRecordTimeout,
		results:       make(chan RecordResult, 8),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.remaining = m.workDur
	return m
}

func (m *Machine) State() State             { return m.state }
func (m *Machine) Phase() Phase             { return m.phase }
func (m *Machine) Remaining() time.Duration { return m.remaining }
func (m *Machine) TaskID() int64            { return m.taskID }
func (m *Machine) Completed() int           { return m.completed }

// Results delivers recording outcomes. The channel is buffered; results are
// dropped when the host is not draining, never blocking the countdown.
func (m *Machine) Results() <-chan RecordResult { return m.results }

// SelectTask picks the task work sessions are recorded against. Refused
// while the countdown is running.
func (m *Machine) SelectTask(id int64) error {
	if m.state == StateRunning {
		return ErrTimerRunning
	}
	m.taskID = id
	return nil
}

// Start begins or resumes the countdown. A work phase needs a selected task.
func (m *Machine) Start() error {
	if m.state == StateRunning {
		return nil
	}
	if m.phase == PhaseWork && m.taskID == 0 {
		return ErrNoTaskSelected
	}
	m.state = StateRunning
	return nil
}

// Pause freezes the remaining time. No session is recorded.
func (m *Machine) Pause() {
	if m.state == StateRunning {
		m.state = StatePaused
	}
}

// Reset returns to Idle with the current phase's full duration.
func (m *Machine) Reset() {
	m.state = StateIdle
	m.remaining = m.phaseDuration(m.phase)
}

// Skip flips the phase and resets without recording a session.
func (m *Machine) Skip() {
	m.state = StateIdle
	m.phase = m.nextPhase()
	m.remaining = m.phaseDuration(m.phase)
}

// Tick advances the countdown by one second. At zero it records the
// completed session, flips the phase and stops.
func (m *Machine) Tick() {
	if m.state != StateRunning {
		return
	}
	m.remaining -= time.Second
	if m.remaining > 0 {
		return
	}
	m.sessionComplete()
}

// sessionComplete fires only on a natural zero-crossing. Recording is
// asynchronous and best-effort: the countdown never waits on the network.
func (m *Machine) sessionComplete() {
	phase := m.phase
	taskID := m.taskID
	if taskID != 0 {
		minutes := int(m.phaseDuration(phase) / time.Minute)
		go m.record(phase, taskID, minutes)
	}

	m.completed++
	m.phase = m.nextPhase()
	m.remaining = m.phaseDuration(m.phase)
	m.state = StateIdle
}

func (m *Machine) record(phase Phase, taskID int64, minutes int) {
	ctx, cancel := context.WithTimeout(context.Background(), m.recordTimeout)
	defer cancel()
	err := m.recorder.RecordSession(ctx, taskID, phase.String(), minutes)
	select {
	case m.results <- RecordResult{Phase: phase, TaskID: taskID, Err: err}:
	default:
	}
}

func (m *Machine) nextPhase() Phase {
	if m.phase == PhaseWork {
		return PhaseBreak
	}
	return PhaseWork
}

func (m *Machine) phaseDuration(p Phase) time.Duration {
	if p == PhaseBreak {
		return m.breakDur
	}
	return m.workDur
}
