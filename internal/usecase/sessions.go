package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/infrastructure/metrics"
	"svw.info/pyramid/internal/ports"
)

func newSessionID() string { return uuid.NewString() }

// StartSession opens a player session on a fresh non-trivial puzzle.
func (u *Service) StartSession(ctx context.Context, s domain.Settings, autoNext bool, seed int64) (*domain.Session, error) {
	if u.Sessions == nil {
		return nil, errNotConfigured
	}
	sess := &domain.Session{ID: u.newID(), AutoNext: autoNext}
	ctx, span := tracer.Start(ctx, "usecase.StartSession", trace.WithAttributes(attribute.String("session.id", sess.ID)))
	defer span.End()

	if err := u.nextPuzzle(ctx, sess, s, seed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := u.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	u.Logger.Info("session started", "session", sess.ID, "levels", sess.Settings.Levels, "parity", sess.Settings.Parity)
	return sess, nil
}

func (u *Service) Session(ctx context.Context, id string) (*domain.Session, error) {
	if u.Sessions == nil {
		return nil, errNotConfigured
	}
	return u.Sessions.Load(ctx, id)
}

// ToggleSession flips one base input of the session's puzzle. The win is
// counted the first time the puzzle is solved; with AutoNext a new puzzle
// replaces it straight away. The bool reports a win on this toggle.
func (u *Service) ToggleSession(ctx context.Context, id string, index int) (*domain.Session, bool, error) {
	var won bool
	sess, err := u.update(ctx, id, "usecase.ToggleSession", func(ctx context.Context, sess *domain.Session) error {
		next, err := u.Toggle(sess.State, index)
		if err != nil {
			return err
		}
		sess.State = next
		if !next.Solved || sess.SolvedAt != nil {
			return nil
		}
		won = true
		now := u.now()
		sess.SolvedAt = &now
		sess.Wins++
		metrics.Win()
		u.Logger.Info("puzzle solved", "session", sess.ID, "wins", sess.Wins, "moves", next.Moves,
			"elapsed", sess.Elapsed(now).Round(time.Millisecond))
		if sess.AutoNext {
			return u.nextPuzzle(ctx, sess, sess.Settings, 0)
		}
		return nil
	})
	return sess, won, err
}

// NextPuzzle replaces the session's puzzle, keeping its settings and wins.
func (u *Service) NextPuzzle(ctx context.Context, id string) (*domain.Session, error) {
	return u.update(ctx, id, "usecase.NextPuzzle", func(ctx context.Context, sess *domain.Session) error {
		return u.nextPuzzle(ctx, sess, sess.Settings, 0)
	})
}

// SettingsUpdate changes some settings of a session; nil fields and a zero
// Levels keep the session's current values.
type SettingsUpdate struct {
	Levels   int
	Parity   *bool
	Target   *bool
	AutoNext *bool
}

// UpdateSettings changes the shape of later puzzles and the auto-next flag.
func (u *Service) UpdateSettings(ctx context.Context, id string, up SettingsUpdate) (*domain.Session, error) {
	return u.update(ctx, id, "usecase.UpdateSettings", func(ctx context.Context, sess *domain.Session) error {
		s := sess.Settings
		if up.Levels != 0 {
			s.Levels = up.Levels
		}
		if up.Parity != nil {
			s.Parity = *up.Parity
		}
		if up.Target != nil {
			s.Target = up.Target
		}
		s, err := u.Settings(s)
		if err != nil {
			return err
		}
		sess.Settings = s
		if up.AutoNext != nil {
			sess.AutoNext = *up.AutoNext
		}
		return nil
	})
}

// EndSession drops a session; later calls for its ID see storage.ErrNotFound.
func (u *Service) EndSession(ctx context.Context, id string) error {
	if u.Sessions == nil {
		return errNotConfigured
	}
	ctx, span := tracer.Start(ctx, "usecase.EndSession", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	mu := u.lock(id)
	mu.Lock()
	defer mu.Unlock()
	if _, err := u.Sessions.Load(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := u.Sessions.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	u.locks.Delete(id)
	u.Logger.Info("session ended", "session", id)
	return nil
}

func (u *Service) SessionHint(ctx context.Context, id string) (domain.Hint, bool, error) {
	sess, err := u.Session(ctx, id)
	if err != nil {
		return domain.Hint{}, false, err
	}
	return u.Hint(ctx, sess.State)
}

func (u *Service) SessionSolution(ctx context.Context, id string) (domain.Solution, ports.Stats, error) {
	sess, err := u.Session(ctx, id)
	if err != nil {
		return domain.Solution{}, ports.Stats{}, err
	}
	return u.Solve(ctx, sess.State)
}

func (u *Service) update(ctx context.Context, id, name string, fn func(context.Context, *domain.Session) error) (*domain.Session, error) {
	if u.Sessions == nil {
		return nil, errNotConfigured
	}
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	mu := u.lock(id)
	mu.Lock()
	defer mu.Unlock()
	sess, err := u.Sessions.Load(ctx, id)
	if err == nil {
		err = fn(ctx, sess)
	}
	if err == nil {
		err = u.Sessions.Save(ctx, sess)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return sess, nil
}

// lock returns the mutex serialising read-modify-write on one session, so a
// slow generation only holds up its own session.
func (u *Service) lock(id string) *sync.Mutex {
	mu, _ := u.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (u *Service) nextPuzzle(ctx context.Context, sess *domain.Session, s domain.Settings, seed int64) error {
	s, err := u.Settings(s)
	if err != nil {
		return err
	}
	seed = u.seed(seed)
	st, _, err := u.NewGame(ctx, seed, s)
	if err != nil {
		return err
	}
	sess.Settings = s
	sess.Seed = seed
	sess.State = st
	sess.StartedAt = u.now()
	sess.SolvedAt = nil
	return nil
}
