package service

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/zkgames/internal/auth"
	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/detective/domain"
	"github.com/louisbranch/zkgames/internal/game"
	"github.com/louisbranch/zkgames/internal/hub"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
	"github.com/louisbranch/zkgames/internal/sequence"
	"github.com/louisbranch/zkgames/internal/storage"
)

var (
	alice = game.Identity("alice")
	bob   = game.Identity("bob")
)

type fakeCaseStore struct {
	cases map[uint32]domain.Case
}

func (f *fakeCaseStore) CreateCase(_ context.Context, c domain.Case) error {
	if _, ok := f.cases[c.ID]; ok {
		return storage.ErrAlreadyExists
	}
	f.cases[c.ID] = c
	return nil
}

func (f *fakeCaseStore) GetCase(_ context.Context, id uint32) (domain.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return domain.Case{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeCaseStore) HasCase(_ context.Context, id uint32) (bool, error) {
	_, ok := f.cases[id]
	return ok, nil
}

type fakeGameStore struct {
	games map[uint32]domain.Game
	ttls  map[uint32]time.Duration
}

func (f *fakeGameStore) CreateDetectiveGame(_ context.Context, g domain.Game, ttl time.Duration) error {
	if _, ok := f.games[g.SessionID]; ok {
		return storage.ErrAlreadyExists
	}
	f.games[g.SessionID] = g
	f.ttls[g.SessionID] = ttl
	return nil
}

func (f *fakeGameStore) GetDetectiveGame(_ context.Context, sessionID uint32) (domain.Game, error) {
	g, ok := f.games[sessionID]
	if !ok {
		return domain.Game{}, storage.ErrNotFound
	}
	return g, nil
}

func (f *fakeGameStore) UpdateDetectiveGame(_ context.Context, sessionID uint32, ttl time.Duration, mutate func(*domain.Game) error) (domain.Game, error) {
	g, ok := f.games[sessionID]
	if !ok {
		return domain.Game{}, storage.ErrNotFound
	}
	if err := mutate(&g); err != nil {
		return domain.Game{}, err
	}
	f.games[sessionID] = g
	f.ttls[sessionID] = ttl
	return g, nil
}

type fakeStatsStore struct {
	stats map[game.Identity]domain.PlayerStats
}

func (f *fakeStatsStore) GetPlayerStats(_ context.Context, player game.Identity) (domain.PlayerStats, error) {
	return f.stats[player], nil
}

func (f *fakeStatsStore) UpdatePlayerStats(_ context.Context, player game.Identity, mutate func(*domain.PlayerStats) error) (domain.PlayerStats, error) {
	s := f.stats[player]
	if err := mutate(&s); err != nil {
		return domain.PlayerStats{}, err
	}
	f.stats[player] = s
	return s, nil
}

type recordingNotifier struct {
	starts []uint32
	ends   []hub.Outcome
}

func (r *recordingNotifier) NotifyStart(_ context.Context, sessionID uint32, _ game.Participants, _ game.Stakes) {
	r.starts = append(r.starts, sessionID)
}

func (r *recordingNotifier) NotifyEnd(_ context.Context, _ uint32, outcome hub.Outcome) {
	r.ends = append(r.ends, outcome)
}

type denyAll struct{}

func (denyAll) RequireAdmin(context.Context, string) error { return auth.ErrUnauthorized }
func (denyAll) RequireStake(context.Context, string, game.Identity, uint32, int64) error {
	return auth.ErrUnauthorized
}

type fixture struct {
	svc      *Service
	cases    *fakeCaseStore
	games    *fakeGameStore
	stats    *fakeStatsStore
	notifier *recordingNotifier
	height   uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cases:    &fakeCaseStore{cases: map[uint32]domain.Case{}},
		games:    &fakeGameStore{games: map[uint32]domain.Game{}, ttls: map[uint32]time.Duration{}},
		stats:    &fakeStatsStore{stats: map[game.Identity]domain.PlayerStats{}},
		notifier: &recordingNotifier{},
		height:   100,
	}
	f.svc = New(
		Stores{Cases: f.cases, Games: f.games, Stats: f.stats},
		auth.AllowAll{},
		f.notifier,
		sequence.Func(func() uint64 { return f.height }),
	)
	return f
}

func solutionCommitment(suspect, weapon, room uint32, salt commitment.Salt) commitment.Digest {
	return commitment.Commit([]uint32{suspect, weapon, room}, salt, "")
}

func (f *fixture) startGame(t *testing.T, sessionID, caseID uint32) domain.Game {
	t.Helper()
	g, err := f.svc.StartGame(context.Background(), StartGameRequest{
		SessionID: sessionID,
		CaseID:    caseID,
		Players:   game.Participants{P1: alice, P2: bob},
		Stakes:    game.Stakes{P1: 100, P2: 100},
	})
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	return g
}

func TestCreateCaseRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	svc := New(Stores{Cases: f.cases, Games: f.games, Stats: f.stats}, denyAll{}, f.notifier, sequence.Func(func() uint64 { return 0 }))

	err := svc.CreateCase(context.Background(), "cred", domain.Case{ID: 1})
	if apperrors.CodeOf(err) != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCreateCaseFirstWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := domain.Case{ID: 1, Commitment: solutionCommitment(3, 2, 4, commitment.Salt{1})}

	if err := f.svc.CreateCase(ctx, "cred", c); err != nil {
		t.Fatalf("create case: %v", err)
	}
	err := f.svc.CreateCase(ctx, "cred", c)
	if apperrors.CodeOf(err) != apperrors.CodeCaseAlreadyExists {
		t.Fatalf("expected case already exists, got %v", err)
	}
}

func TestStartGameRequiresExistingCase(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.StartGame(context.Background(), StartGameRequest{
		SessionID: 1,
		CaseID:    9,
		Players:   game.Participants{P1: alice, P2: bob},
	})
	if apperrors.CodeOf(err) != apperrors.CodeCaseNotFound {
		t.Fatalf("expected case not found, got %v", err)
	}
}

func TestStartGameClaimsSessionID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.CreateCase(ctx, "cred", domain.Case{ID: 1}); err != nil {
		t.Fatalf("create case: %v", err)
	}

	g := f.startGame(t, 7, 1)
	if g.StartHeight != 100 {
		t.Fatalf("expected start height 100, got %d", g.StartHeight)
	}
	if len(f.notifier.starts) != 1 || f.notifier.starts[0] != 7 {
		t.Fatalf("expected start notification for session 7, got %v", f.notifier.starts)
	}

	_, err := f.svc.StartGame(ctx, StartGameRequest{
		SessionID: 7,
		CaseID:    1,
		Players:   game.Participants{P1: alice, P2: bob},
	})
	if apperrors.CodeOf(err) != apperrors.CodeSessionAlreadyExists {
		t.Fatalf("expected session already exists, got %v", err)
	}
}

func TestStartGameChecksCaseAndSessionBeforeStakes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.CreateCase(ctx, "cred", domain.Case{ID: 1}); err != nil {
		t.Fatalf("create case: %v", err)
	}
	f.startGame(t, 7, 1)

	denied := New(Stores{Cases: f.cases, Games: f.games, Stats: f.stats}, denyAll{}, f.notifier, sequence.Func(func() uint64 { return 0 }))

	_, err := denied.StartGame(ctx, StartGameRequest{
		SessionID: 8,
		CaseID:    9,
		Players:   game.Participants{P1: alice, P2: bob},
	})
	if apperrors.CodeOf(err) != apperrors.CodeCaseNotFound {
		t.Fatalf("expected case not found before stake check, got %v", err)
	}

	_, err = denied.StartGame(ctx, StartGameRequest{
		SessionID: 7,
		CaseID:    1,
		Players:   game.Participants{P1: alice, P2: bob},
	})
	if apperrors.CodeOf(err) != apperrors.CodeSessionAlreadyExists {
		t.Fatalf("expected session already exists before stake check, got %v", err)
	}

	_, err = denied.StartGame(ctx, StartGameRequest{
		SessionID: 8,
		CaseID:    1,
		Players:   game.Participants{P1: alice, P2: bob},
	})
	if apperrors.CodeOf(err) != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for a fresh session, got %v", err)
	}
}

func TestStartGameRejectsEmptyIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.StartGame(context.Background(), StartGameRequest{
		SessionID: 1,
		CaseID:    1,
		Players:   game.Participants{P1: alice},
	})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAccuseCorrectSolvesAndSettles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	salt := commitment.Salt{9}
	caseRecord := domain.Case{ID: 1, Commitment: solutionCommitment(3, 2, 4, salt)}
	if err := f.svc.CreateCase(ctx, "cred", caseRecord); err != nil {
		t.Fatalf("create case: %v", err)
	}
	f.startGame(t, 7, 1)

	if _, err := f.svc.UpdateProgress(ctx, 7, alice, 4, 3); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	f.height = 300 // 200 elapsed
	result, err := f.svc.Accuse(ctx, 7, alice, domain.Accusation{Suspect: 3, Weapon: 2, Room: 4, Salt: salt})
	if err != nil {
		t.Fatalf("accuse: %v", err)
	}
	if !result.Correct {
		t.Fatal("expected correct accusation")
	}
	// 10000 - 200 + 4*100 + 3*50
	if result.Score != 10350 {
		t.Fatalf("expected score 10350, got %d", result.Score)
	}
	if result.Game.Status != domain.StatusSolved {
		t.Fatalf("expected solved, got %s", result.Game.Status)
	}

	stats, err := f.svc.GetPlayerStats(ctx, alice)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.CasesSolved != 1 || stats.BestScore != 10350 {
		t.Fatalf("expected stats folded, got %+v", stats)
	}
	if len(f.notifier.ends) != 1 || f.notifier.ends[0].Winner != alice || !f.notifier.ends[0].PlayerOne {
		t.Fatalf("expected end notification for alice, got %+v", f.notifier.ends)
	}

	_, err = f.svc.Accuse(ctx, 7, bob, domain.Accusation{Suspect: 3, Weapon: 2, Room: 4, Salt: salt})
	if apperrors.CodeOf(err) != apperrors.CodeGameNotActive {
		t.Fatalf("expected game not active, got %v", err)
	}
}

func TestAccuseWrongCountsMiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	salt := commitment.Salt{9}
	if err := f.svc.CreateCase(ctx, "cred", domain.Case{ID: 1, Commitment: solutionCommitment(3, 2, 4, salt)}); err != nil {
		t.Fatalf("create case: %v", err)
	}
	f.startGame(t, 7, 1)

	result, err := f.svc.Accuse(ctx, 7, bob, domain.Accusation{Suspect: 5, Weapon: 2, Room: 4, Salt: salt})
	if err != nil {
		t.Fatalf("accuse: %v", err)
	}
	if result.Correct {
		t.Fatal("expected wrong accusation")
	}
	if result.Game.WrongAccusations != 1 {
		t.Fatalf("expected 1 wrong accusation, got %d", result.Game.WrongAccusations)
	}
	if len(f.notifier.ends) != 0 {
		t.Fatalf("expected no end notification, got %+v", f.notifier.ends)
	}
	if got := f.stats.stats[bob]; got != (domain.PlayerStats{}) {
		t.Fatalf("expected untouched stats, got %+v", got)
	}
}

func TestAccuseValidatesBeforeCounting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.CreateCase(ctx, "cred", domain.Case{ID: 1}); err != nil {
		t.Fatalf("create case: %v", err)
	}
	f.startGame(t, 7, 1)

	_, err := f.svc.Accuse(ctx, 7, alice, domain.Accusation{Suspect: 10, Weapon: 2, Room: 4})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidAccusationID {
		t.Fatalf("expected invalid accusation id, got %v", err)
	}
	if f.games.games[7].WrongAccusations != 0 {
		t.Fatal("malformed accusation must not count as a miss")
	}
}

func TestAccuseUnknownSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Accuse(context.Background(), 99, alice, domain.Accusation{Suspect: 1, Weapon: 1, Room: 1})
	if apperrors.CodeOf(err) != apperrors.CodeGameNotFound {
		t.Fatalf("expected game not found, got %v", err)
	}
}

func TestAbandonGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.CreateCase(ctx, "cred", domain.Case{ID: 1}); err != nil {
		t.Fatalf("create case: %v", err)
	}
	f.startGame(t, 7, 1)

	g, err := f.svc.AbandonGame(ctx, "cred", 7)
	if err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if g.Status != domain.StatusAbandoned {
		t.Fatalf("expected abandoned, got %s", g.Status)
	}
	_, err = f.svc.AbandonGame(ctx, "cred", 7)
	if apperrors.CodeOf(err) != apperrors.CodeGameAlreadyEnded {
		t.Fatalf("expected game already ended, got %v", err)
	}
}

func TestUpdateProgressExtendsTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.CreateCase(ctx, "cred", domain.Case{ID: 1}); err != nil {
		t.Fatalf("create case: %v", err)
	}
	f.startGame(t, 7, 1)
	f.games.ttls[7] = 0

	if _, err := f.svc.UpdateProgress(ctx, 7, alice, 1, 1); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if f.games.ttls[7] != DefaultSessionTTL {
		t.Fatalf("expected ttl extension to %s, got %s", DefaultSessionTTL, f.games.ttls[7])
	}
}

func TestGetPlayerStatsZeroWhenMissing(t *testing.T) {
	f := newFixture(t)
	stats, err := f.svc.GetPlayerStats(context.Background(), game.Identity("nobody"))
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats != (domain.PlayerStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
