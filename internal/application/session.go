package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/platform/logger"
	"github.com/bnema/balance-dispatcher/internal/ports"
)

const DefaultReadyTimeout = 120 * time.Second

// SessionOpener hands out a ready chat session. The caller owns the returned
// session and must close it.
type SessionOpener interface {
	Open(ctx context.Context) (*Session, error)
}

// Session is the long-lived chat client handle shared by every delivery in a run.
type Session struct {
	driver    ports.Driver
	mu        sync.Mutex
	state     domain.SessionState
	closeOnce sync.Once
	closeErr  error
}

func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Close releases the underlying driver. Only the first call reaches the driver.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.driver.Close()
		s.setState(domain.SessionClosed)
	})
	return s.closeErr
}

func (s *Session) ready() (ports.Driver, error) {
	if state := s.State(); state != domain.SessionReady {
		return nil, fmt.Errorf("session is %s: %w", state, domain.ErrSessionClosed)
	}
	return s.driver, nil
}

type SessionConfig struct {
	LandingURL   string
	ReadyMarker  domain.Locator
	ReadyTimeout time.Duration
}

type SessionManager struct {
	factory ports.DriverFactory
	cfg     SessionConfig
	log     *logger.Logger
}

var _ SessionOpener = (*SessionManager)(nil)

func NewSessionManager(factory ports.DriverFactory, cfg SessionConfig, log *logger.Logger) *SessionManager {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &SessionManager{factory: factory, cfg: cfg, log: log.With("component", "session")}
}

// Open starts the driver, loads the chat client and blocks until the logged-in
// marker shows up. On any failure the driver is released before returning.
func (m *SessionManager) Open(ctx context.Context) (*Session, error) {
	driver, err := m.factory.NewDriver(ctx)
	if err != nil {
		return nil, fmt.Errorf("start browser driver: %w", err)
	}

	session := &Session{driver: driver, state: domain.SessionUnopened}

	if err := driver.Navigate(ctx, m.cfg.LandingURL); err != nil {
		return nil, errors.Join(fmt.Errorf("open chat client: %w", err), session.Close())
	}
	session.setState(domain.SessionAwaitingReady)
	m.log.Info("waiting for chat client to become ready", "url", m.cfg.LandingURL, "timeout", m.cfg.ReadyTimeout)

	if err := driver.WaitPresent(ctx, m.cfg.ReadyMarker, m.cfg.ReadyTimeout); err != nil {
		return nil, errors.Join(
			fmt.Errorf("%w within %s: %w", domain.ErrSessionNotReady, m.cfg.ReadyTimeout, err),
			session.Close(),
		)
	}
	session.setState(domain.SessionReady)
	m.log.Info("chat client ready")

	return session, nil
}
