package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/generator"
	"svw.info/pyramid/internal/hint"
	"svw.info/pyramid/internal/infrastructure/storage"
	"svw.info/pyramid/internal/ports"
	"svw.info/pyramid/internal/solver"
	"svw.info/pyramid/internal/validator"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := storage.OpenSessions(storage.Config{TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := solver.NewExhaustiveSolver()
	u := NewService(
		generator.NewPyramidGenerator(generator.Limits{}, nil),
		s, validator.New(), hint.NewNextToggle(s), st,
		Bounds{DefaultLevels: 4, MinLevels: 2, MaxLevels: 6}, nil,
	)
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	u.newID = func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
	return u
}

func TestNewGameAppliesDefaultsAndBounds(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()

	st, stats, err := u.NewGame(ctx, 7, domain.Settings{Parity: true})
	require.NoError(t, err)
	assert.Len(t, st.BaseInputs(), 4)
	assert.False(t, st.Solved)
	assert.GreaterOrEqual(t, stats.Attempts, 1)

	_, _, err = u.NewGame(ctx, 7, domain.Settings{Levels: 7})
	assert.ErrorIs(t, err, ErrLevelsOutOfRange)
	_, _, err = u.NewPyramid(ctx, 7, domain.Settings{Levels: 1})
	assert.ErrorIs(t, err, ErrLevelsOutOfRange)
}

func TestNewPyramidValidates(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	p, _, err := u.NewPyramid(ctx, 3, domain.Settings{Levels: 5})
	require.NoError(t, err)
	ok, conf, err := u.Validate(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, conf)
}

func TestNotConfigured(t *testing.T) {
	u := &Service{}
	_, _, err := u.NewGame(context.Background(), 1, domain.Settings{Levels: 3})
	assert.ErrorIs(t, err, errNotConfigured)
	_, err = u.StartSession(context.Background(), domain.Settings{}, false, 1)
	assert.ErrorIs(t, err, errNotConfigured)
}

func solveSession(t *testing.T, u *Service, id string) *domain.Session {
	t.Helper()
	ctx := context.Background()
	sol, _, err := u.SessionSolution(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, sol.Toggles)

	var sess *domain.Session
	for n, i := range sol.Toggles {
		var won bool
		sess, won, err = u.ToggleSession(ctx, id, i)
		require.NoError(t, err)
		assert.Equal(t, n == len(sol.Toggles)-1, won)
	}
	return sess
}

func TestSessionCountsWinOnce(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()

	sess, err := u.StartSession(ctx, domain.Settings{Levels: 4, Parity: true}, false, 21)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sess.ID)
	assert.Zero(t, sess.Wins)

	sess = solveSession(t, u, sess.ID)
	assert.True(t, sess.State.Solved)
	assert.Equal(t, 1, sess.Wins)
	require.NotNil(t, sess.SolvedAt)

	// leaving and re-entering the solved state is not another win
	sess, won, err := u.ToggleSession(ctx, sess.ID, 0)
	require.NoError(t, err)
	assert.False(t, won)
	sess, won, err = u.ToggleSession(ctx, sess.ID, 0)
	require.NoError(t, err)
	assert.False(t, won)
	assert.True(t, sess.State.Solved)
	assert.Equal(t, 1, sess.Wins)

	sess, err = u.NextPuzzle(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, sess.State.Solved)
	assert.Nil(t, sess.SolvedAt)
	assert.Equal(t, 1, sess.Wins)

	sess = solveSession(t, u, sess.ID)
	assert.Equal(t, 2, sess.Wins)
}

func TestSessionAutoNext(t *testing.T) {
	u := newTestService(t)
	sess, err := u.StartSession(context.Background(), domain.Settings{Levels: 3}, true, 5)
	require.NoError(t, err)

	sess = solveSession(t, u, sess.ID)
	assert.Equal(t, 1, sess.Wins)
	assert.False(t, sess.State.Solved, "a fresh puzzle replaces the solved one")
	assert.Nil(t, sess.SolvedAt)
	assert.Zero(t, sess.State.Moves)
}

func TestSessionToggleOutOfRange(t *testing.T) {
	u := newTestService(t)
	sess, err := u.StartSession(context.Background(), domain.Settings{Levels: 3}, false, 5)
	require.NoError(t, err)
	_, _, err = u.ToggleSession(context.Background(), sess.ID, 3)
	assert.Error(t, err)

	again, err := u.Session(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.State.BaseInputs(), again.State.BaseInputs(), "failed toggles are not saved")
}

func TestUpdateSettings(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	sess, err := u.StartSession(ctx, domain.Settings{Levels: 3}, false, 5)
	require.NoError(t, err)

	parity, autoNext := true, true
	sess, err = u.UpdateSettings(ctx, sess.ID, SettingsUpdate{Levels: 5, Parity: &parity, AutoNext: &autoNext})
	require.NoError(t, err)
	assert.True(t, sess.AutoNext)
	assert.Len(t, sess.State.BaseInputs(), 3, "current puzzle is kept")

	sess, err = u.NextPuzzle(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, sess.State.BaseInputs(), 5)
	assert.True(t, sess.State.Pyramid.Operators.Parity())

	_, err = u.UpdateSettings(ctx, sess.ID, SettingsUpdate{Levels: 99})
	assert.ErrorIs(t, err, ErrLevelsOutOfRange)
}

func TestUpdateSettingsKeepsOmittedFields(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	sess, err := u.StartSession(ctx, domain.Settings{Levels: 3, Parity: false}, true, 5)
	require.NoError(t, err)

	sess, err = u.UpdateSettings(ctx, sess.ID, SettingsUpdate{Levels: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, sess.Settings.Levels)
	assert.False(t, sess.Settings.Parity)
	assert.True(t, sess.AutoNext)

	parity := true
	sess, err = u.UpdateSettings(ctx, sess.ID, SettingsUpdate{Parity: &parity})
	require.NoError(t, err)
	assert.Equal(t, 4, sess.Settings.Levels)
	assert.True(t, sess.Settings.Parity)
}

func TestEndSession(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	sess, err := u.StartSession(ctx, domain.Settings{Levels: 3}, false, 5)
	require.NoError(t, err)

	require.NoError(t, u.EndSession(ctx, sess.ID))
	_, err = u.Session(ctx, sess.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, u.EndSession(ctx, sess.ID), storage.ErrNotFound)
}

func TestCount(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	p, _, err := u.NewPyramid(ctx, 8, domain.Settings{Levels: 3})
	require.NoError(t, err)

	n, st, err := u.Count(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 8, st.Nodes)
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, 8)
}

// blockingGenerator holds NewGame until release is closed.
type blockingGenerator struct {
	ports.Generator
	entered chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) NewGame(ctx context.Context, seed int64, s domain.Settings) (*domain.GameState, ports.Stats, error) {
	close(g.entered)
	<-g.release
	return g.Generator.NewGame(ctx, seed, s)
}

func TestSlowGenerationOnlyBlocksItsSession(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	a, err := u.StartSession(ctx, domain.Settings{Levels: 3}, false, 5)
	require.NoError(t, err)
	b, err := u.StartSession(ctx, domain.Settings{Levels: 3}, false, 6)
	require.NoError(t, err)

	bg := &blockingGenerator{Generator: u.Generator, entered: make(chan struct{}), release: make(chan struct{})}
	u.Generator = bg
	done := make(chan error, 1)
	go func() {
		_, err := u.NextPuzzle(ctx, a.ID)
		done <- err
	}()
	<-bg.entered

	toggled := make(chan error, 1)
	go func() {
		_, _, err := u.ToggleSession(ctx, b.ID, 0)
		toggled <- err
	}()
	select {
	case err := <-toggled:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("toggle on another session waited for generation")
	}

	close(bg.release)
	require.NoError(t, <-done)
}

func TestSessionHint(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	sess, err := u.StartSession(ctx, domain.Settings{Levels: 4}, false, 9)
	require.NoError(t, err)

	h, ok, err := u.SessionHint(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, h.Remaining, 1)
	assert.Less(t, h.Index, 4)

	_, _, err = u.SessionHint(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
