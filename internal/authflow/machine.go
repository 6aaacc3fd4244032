package authflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/AlexZinkM/ergo-wallet/internal/chunk"
	"github.com/AlexZinkM/ergo-wallet/internal/client"
	"github.com/AlexZinkM/ergo-wallet/internal/metrics"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
	"github.com/AlexZinkM/ergo-wallet/internal/preview"
)

const defaultFragmentSize = 200

var (
	// ErrInvalidState is returned for an action the current state does not accept
	ErrInvalidState = errors.New("action not allowed in current state")
	// ErrSignerUnavailable is returned when no signer is configured for the flow
	ErrSignerUnavailable = errors.New("signing is not available in this wallet")
	// ErrIncompleteRequest is returned for requests missing mandatory fields
	ErrIncompleteRequest = errors.New("request is missing mandatory fields")
)

// Options configures a Machine. Client is required for network flows.
type Options struct {
	Client        RemoteClient
	Signer        TransactionSigner
	MessageSigner MessageSigner
	Broadcaster   Broadcaster
	Inspector     preview.Inspector
	Boxes         preview.BoxLookup

	// Dispatch runs listener calls on the context the UI designates.
	// Nil delivers synchronously from the task that made the transition.
	Dispatch func(func())

	// FetchTimeout bounds a whole fetch including preview lookups
	FetchTimeout time.Duration
	// SubmitTimeout bounds signing and reply delivery
	SubmitTimeout time.Duration
	// FragmentSize is the QR fragment size for cold signing results
	FragmentSize int

	Messages *Messages
	Metrics  *metrics.Flow
	Log      *zap.Logger
}

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newTask(cancel context.CancelFunc) *task {
	return &task{cancel: cancel, done: make(chan struct{})}
}

func (t *task) running() bool {
	if t == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *task) stop() {
	if t != nil {
		t.cancel()
	}
}

// Machine is the state machine of one authorization session owner.
// Each Init/InitCold starts a new session and supersedes the previous one.
//
// Transitions are delivered while the machine lock is held, so a Listener may
// read Snapshot but must not call Init, InitCold, AddPage, Confirm,
// Authenticate or Close synchronously.
type Machine struct {
	opts     Options
	messages Messages
	log      *zap.Logger
	metrics  *metrics.Flow

	mu        sync.Mutex
	gen       uint64
	listener  Listener
	fetch     *task
	submit    *task
	collector *chunk.Collector
	snap      atomic.Pointer[Snapshot]
}

// New creates a machine in the DONE state of an empty session
func New(opts Options) *Machine {
	m := &Machine{
		opts:     opts,
		messages: DefaultMessages,
		log:      opts.Log,
		metrics:  opts.Metrics,
	}
	if opts.Messages != nil {
		m.messages = *opts.Messages
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.metrics == nil {
		m.metrics = metrics.NewFlow(nil)
	}
	if m.opts.FragmentSize <= 0 {
		m.opts.FragmentSize = defaultFragmentSize
	}
	m.snap.Store(&Snapshot{State: StateDone, Severity: model.SeverityNone})
	return m
}

// SetListener registers the single listener of this machine, replacing any previous one
func (m *Machine) SetListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// Snapshot returns the current session view
func (m *Machine) Snapshot() Snapshot {
	return *m.snap.Load()
}

// Init starts a network driven ErgoPay or ErgoAuth session.
// It returns false without doing anything while a fetch for the same URI is still running.
func (m *Machine) Init(req Request) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fetch.running() && m.snap.Load().URI == req.URI {
		return false
	}
	m.resetLocked()

	var flow Flow
	switch {
	case client.IsPaymentRequest(req.URI):
		flow = FlowPayment
	case client.IsAuthorizationRequest(req.URI):
		flow = FlowAuth
	default:
		m.publishLocked(Snapshot{
			URI:      req.URI,
			State:    StateDone,
			Message:  m.messages.Unsupported,
			Severity: model.SeverityError,
		})
		return true
	}

	m.metrics.SessionsStarted.WithLabelValues(string(flow)).Inc()
	m.publishLocked(Snapshot{Flow: flow, URI: req.URI, State: StateFetchData, Severity: model.SeverityNone})

	ctx, cancel := context.WithCancel(context.Background())
	t := newTask(cancel)
	m.fetch = t
	go m.runFetch(ctx, t, m.gen, flow, req)
	return true
}

// InitCold starts a cold signing session waiting for request pages
func (m *Machine) InitCold() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()
	m.collector = chunk.NewCollector()
	m.metrics.SessionsStarted.WithLabelValues(string(FlowCold)).Inc()
	m.publishLocked(Snapshot{Flow: FlowCold, State: StateScanning, Severity: model.SeverityNone})
}

// Close cancels running tasks. No transition is delivered afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.listener = nil
}

// resetLocked cancels the tasks of the current session and opens a new generation
func (m *Machine) resetLocked() {
	m.fetch.stop()
	m.submit.stop()
	m.fetch = nil
	m.submit = nil
	m.collector = nil
	m.gen++
}

// publishLocked stores s as the current snapshot and notifies the listener
func (m *Machine) publishLocked(s Snapshot) {
	prev := m.snap.Load().State
	s.Session = m.gen
	m.snap.Store(&s)

	if s.State == StateDone && s.Flow != "" {
		m.metrics.SessionsDone.WithLabelValues(string(s.Flow), string(s.Severity)).Inc()
	}

	m.log.Debug("session state changed",
		zap.Uint64("session", s.Session),
		zap.String("flow", string(s.Flow)),
		zap.String("from", string(prev)),
		zap.String("to", string(s.State)),
	)

	if m.listener == nil {
		return
	}
	ev := StateChanged{Previous: prev, Snapshot: s}
	l := m.listener
	if m.opts.Dispatch != nil {
		m.opts.Dispatch(func() { l(ev) })
		return
	}
	l(ev)
}

// doneLocked moves the session to DONE with the given outcome
func (m *Machine) doneLocked(base Snapshot, severity model.Severity, message string) {
	base.State = StateDone
	base.Severity = severity
	base.Message = message
	m.publishLocked(base)
}

func (m *Machine) failureMessage(prefix string, err error) string {
	return fmt.Sprintf("%s: %v", prefix, err)
}

func (m *Machine) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
