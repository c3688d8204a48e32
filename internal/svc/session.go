package svc

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattjoyce/pmlaunch/internal/log"
	"github.com/mattjoyce/pmlaunch/internal/result"
)

// MaxServiceNameLen is the longest service name the kernel accepts.
const MaxServiceNameLen = 8

// ErrInvalidServiceName is returned for empty or over-long service names.
var ErrInvalidServiceName = errors.New("invalid service name")

// Session owns one stolen client handle. The handle is released exactly once,
// by Close; afterwards Handle reports InvalidHandle.
type Session struct {
	kernel Kernel
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	handle Handle
	closed bool
}

// ValidateServiceName checks the 1-8 character limit.
func ValidateServiceName(name string) error {
	if name == "" || len(name) > MaxServiceNameLen {
		return fmt.Errorf("%w: %q (must be 1-%d characters)", ErrInvalidServiceName, name, MaxServiceNameLen)
	}
	return nil
}

// Acquire steals a live client session to the named service. The caller must
// Close the returned session.
func Acquire(k Kernel, name string) (*Session, error) {
	if err := ValidateServiceName(name); err != nil {
		return nil, err
	}

	logger := log.WithService(name)
	h, rc := k.StealClientSession(name)
	if rc.IsFailure() {
		logger.Warn("steal client session failed", "result", rc.Hex())
		return nil, result.Wrap(fmt.Sprintf("steal %s", name), rc)
	}

	logger.Debug("stole client session", "handle", h.String())
	return &Session{
		kernel: k,
		name:   name,
		logger: logger,
		handle: h,
	}, nil
}

// WithSession acquires a session, runs fn with it and releases it on every
// exit path, including a panic in fn. A close failure is reported only when
// fn itself succeeded.
func WithSession(k Kernel, name string, fn func(*Session) error) (err error) {
	s, err := Acquire(k, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// Name returns the service name the session was stolen from.
func (s *Session) Name() string { return s.name }

// Handle returns the live handle, or InvalidHandle once the session is closed.
func (s *Session) Handle() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return InvalidHandle
	}
	return s.handle
}

// Kernel returns the kernel the session was acquired from.
func (s *Session) Kernel() Kernel { return s.kernel }

// Close releases the handle. Only the first call reaches the kernel.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	rc := s.kernel.CloseHandle(s.handle)
	if rc.IsFailure() {
		s.logger.Warn("close handle failed", "handle", s.handle.String(), "result", rc.Hex())
		return result.Wrap(fmt.Sprintf("close %s", s.name), rc)
	}
	s.logger.Debug("closed handle", "handle", s.handle.String())
	s.handle = InvalidHandle
	return nil
}
