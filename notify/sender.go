package notify

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Target delivers a single message.
type Target interface {
	Send(ctx context.Context, msg Message) error
}

// Config sizes the delivery pool. Zero values fall back to defaults.
type Config struct {
	Workers int
	Buffer  int
	Timeout time.Duration
	Handoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Buffer <= 0 {
		c.Buffer = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Handoff < 0 {
		c.Handoff = 0
	}
	return c
}

// Sender delivers messages asynchronously on a bounded worker pool.
// Delivery is best effort end to end: a saturated buffer drops the
// message after a short handoff wait, and send failures are logged and
// forgotten. Nothing here ever reaches back into the caller.
type Sender struct {
	target  Target
	logger  *log.Logger
	cfg     Config
	jobs    chan Message
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewSender starts the worker pool.
func NewSender(target Target, cfg Config, logger *log.Logger) *Sender {
	if target == nil {
		panic("notify.NewSender: target is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	cfg = cfg.withDefaults()
	s := &Sender{
		target: target,
		logger: logger,
		cfg:    cfg,
		jobs:   make(chan Message, cfg.Buffer),
	}
	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	logger.Infof("notification sender started, workers: %d, buffer: %d, timeout: %v", cfg.Workers, cfg.Buffer, cfg.Timeout)
	return s
}

func (s *Sender) worker(id int) {
	defer s.wg.Done()
	for msg := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		err := s.target.Send(ctx, msg)
		cancel()
		if err != nil {
			s.logger.WithField("worker", id).Warnf("notification dropped: %v", err)
		}
	}
}

// Notify hands msg to the pool. It returns false when the message was
// dropped because the buffer stayed saturated past the handoff window
// or the sender is already closed.
func (s *Sender) Notify(msg Message) bool {
	if ok, closed := s.trySend(msg); closed {
		return false
	} else if ok {
		return true
	}

	if s.cfg.Handoff <= 0 {
		s.logger.Warn("notification buffer saturated, dropping message")
		return false
	}

	timer := time.NewTimer(s.cfg.Handoff)
	defer timer.Stop()
	ok, closed := s.sendWithTimer(msg, timer.C)
	if !ok && !closed {
		s.logger.Warn("notification buffer saturated, dropping message")
	}
	return ok
}

// trySend recovers from the send-on-closed-channel panic so a Notify
// racing Close degrades to a drop instead of crashing.
func (s *Sender) trySend(msg Message) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()
	select {
	case s.jobs <- msg:
		return true, false
	default:
		return false, false
	}
}

func (s *Sender) sendWithTimer(msg Message, timer <-chan time.Time) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()
	select {
	case s.jobs <- msg:
		return true, false
	case <-timer:
		return false, false
	}
}

// Close stops accepting messages and waits for the workers to drain
// what is already buffered.
func (s *Sender) Close() {
	s.closeMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.jobs)
	}
	s.closeMu.Unlock()
	s.wg.Wait()
}

// Disabled is a Notifier that drops every message. Used when no
// webhook is configured.
type Disabled struct{}

func (Disabled) Notify(Message) bool { return false }
