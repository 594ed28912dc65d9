package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SessionManager answers the session coordinator. Snapshots always reflect
// the validator list at call time. Ordering is only checked when strict.
type SessionManager struct {
	service *Service
	strict  bool

	mu     sync.Mutex
	cursor sessionCursor
}

type sessionCursor struct {
	planned    SessionIndex
	hasPlanned bool
	started    SessionIndex
	hasStarted bool
	ended      SessionIndex
	hasEnded   bool
}

func newSessionManager(service *Service, strict bool) *SessionManager {
	return &SessionManager{service: service, strict: strict}
}

func (m *SessionManager) Strict() bool {
	return m != nil && m.strict
}

// NewSession plans session index and returns the validators it will use.
func (m *SessionManager) NewSession(ctx context.Context, index SessionIndex) ([]ValidatorID, error) {
	return m.plan(ctx, "session.new", index, false)
}

// NewSessionGenesis plans the first session.
func (m *SessionManager) NewSessionGenesis(ctx context.Context, index SessionIndex) ([]ValidatorID, error) {
	return m.plan(ctx, "session.new_genesis", index, true)
}

func (m *SessionManager) StartSession(ctx context.Context, index SessionIndex) (err error) {
	if m == nil || m.service == nil {
		return fmt.Errorf("core: session manager is not configured")
	}
	if !m.strict {
		return nil
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{"session": uint32(index)}
	defer func() {
		m.service.observeOperation(ctx, startedAt, "session.start", err, fields)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cursor.hasPlanned || index > m.cursor.planned {
		err = m.service.mapError(fmt.Errorf("%w: session %d was not planned", ErrSessionOutOfOrder, index))
		return err
	}
	if m.cursor.hasStarted && index <= m.cursor.started {
		err = m.service.mapError(fmt.Errorf("%w: session %d already started after %d", ErrSessionOutOfOrder, index, m.cursor.started))
		return err
	}
	m.cursor.started = index
	m.cursor.hasStarted = true
	return nil
}

func (m *SessionManager) EndSession(ctx context.Context, index SessionIndex) (err error) {
	if m == nil || m.service == nil {
		return fmt.Errorf("core: session manager is not configured")
	}
	if !m.strict {
		return nil
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{"session": uint32(index)}
	defer func() {
		m.service.observeOperation(ctx, startedAt, "session.end", err, fields)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cursor.hasStarted || index != m.cursor.started {
		err = m.service.mapError(fmt.Errorf("%w: session %d is not the running session", ErrSessionOutOfOrder, index))
		return err
	}
	if m.cursor.hasEnded && index <= m.cursor.ended {
		err = m.service.mapError(fmt.Errorf("%w: session %d already ended", ErrSessionOutOfOrder, index))
		return err
	}
	// the next session must be planned before the current one ends
	if uint64(m.cursor.planned) < uint64(index)+1 {
		err = m.service.mapError(fmt.Errorf("%w: session %d ended before session %d was planned", ErrSessionOutOfOrder, index, uint64(index)+1))
		return err
	}
	m.cursor.ended = index
	m.cursor.hasEnded = true
	return nil
}

func (m *SessionManager) plan(ctx context.Context, operation string, index SessionIndex, genesis bool) (validators []ValidatorID, err error) {
	if m == nil || m.service == nil {
		return nil, fmt.Errorf("core: session manager is not configured")
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{"session": uint32(index)}
	defer func() {
		if err == nil {
			fields["validators"] = len(validators)
		}
		m.service.observeOperation(ctx, startedAt, operation, err, fields)
	}()

	if m.strict {
		m.mu.Lock()
		defer m.mu.Unlock()
		switch {
		case genesis && m.cursor.hasPlanned:
			err = m.service.mapError(fmt.Errorf("%w: genesis session after session %d", ErrSessionOutOfOrder, m.cursor.planned))
			return nil, err
		case m.cursor.hasPlanned && index <= m.cursor.planned:
			err = m.service.mapError(fmt.Errorf("%w: session %d planned after %d", ErrSessionOutOfOrder, index, m.cursor.planned))
			return nil, err
		}
	}

	validators, err = m.service.Validators(ctx)
	if err != nil {
		return nil, err
	}
	if validators == nil {
		validators = []ValidatorID{}
	}
	if m.strict {
		m.cursor.planned = index
		m.cursor.hasPlanned = true
	}
	return validators, nil
}
