package terminal

import (
	"sync"

	"github.com/dshills/dokd/internal/logging"
)

// Factory starts a session.
type Factory func(opts Options) (Session, error)

// StartSession is the Factory that starts a PTY terminal.
func StartSession(opts Options) (Session, error) {
	t, err := New(opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Slot holds at most one live session, created on first use and reused
// until its shell exits.
type Slot struct {
	mu      sync.Mutex
	factory Factory
	opts    Options
	current Session
	closed  bool
	logger  *logging.Logger
}

// SlotOption configures a Slot.
type SlotOption func(*Slot)

// WithFactory replaces the session factory.
func WithFactory(factory Factory) SlotOption {
	return func(s *Slot) {
		if factory != nil {
			s.factory = factory
		}
	}
}

// WithSlotLogger sets the slot logger.
func WithSlotLogger(logger *logging.Logger) SlotOption {
	return func(s *Slot) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSlot creates an empty slot that starts sessions with opts.
func NewSlot(opts Options, options ...SlotOption) *Slot {
	s := &Slot{
		factory: StartSession,
		opts:    opts,
		logger:  logging.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Acquire returns the live session, starting one if the slot is empty.
func (s *Slot) Acquire() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSlotClosed
	}
	if s.current != nil {
		return s.current, nil
	}

	opts := s.opts
	onClose := opts.OnClose
	opts.OnClose = func(pid int) {
		s.HandleClosed(pid)
		if onClose != nil {
			onClose(pid)
		}
	}

	sess, err := s.factory(opts)
	if err != nil {
		return nil, err
	}

	s.current = sess
	s.logger.Info("started terminal %q (pid %d)", sess.Name(), sess.PID())
	return sess, nil
}

// HandleClosed clears the slot if pid belongs to the tracked session.
// Notifications for other processes are ignored. It reports whether the
// slot was cleared.
func (s *Slot) HandleClosed(pid int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.PID() != pid {
		return false
	}

	s.logger.Info("terminal %q closed (pid %d)", s.current.Name(), pid)
	s.current = nil
	return true
}

// Current returns the tracked session, or nil.
func (s *Slot) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close terminates the tracked session. Later Acquire calls fail.
func (s *Slot) Close() error {
	s.mu.Lock()
	s.closed = true
	sess := s.current
	s.mu.Unlock()

	if sess == nil {
		return nil
	}
	// The session's close notification takes the lock.
	return sess.Close()
}
