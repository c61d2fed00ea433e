package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/detective/domain"
	"github.com/louisbranch/zkgames/internal/game"
	"github.com/louisbranch/zkgames/internal/storage"
)

// Case methods

// CreateCase implements storage.CaseStore. Case ids are first-wins.
func (s *Store) CreateCase(ctx context.Context, c domain.Case) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO cases (id, commitment, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Commitment.String(), s.nowMillis(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

// GetCase implements storage.CaseStore.
func (s *Store) GetCase(ctx context.Context, id uint32) (domain.Case, error) {
	if err := ctx.Err(); err != nil {
		return domain.Case{}, err
	}
	var raw string
	row := s.sqlDB.QueryRowContext(ctx, `SELECT commitment FROM cases WHERE id = ?`, id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Case{}, storage.ErrNotFound
		}
		return domain.Case{}, fmt.Errorf("select case: %w", err)
	}
	digest, err := commitment.ParseDigest(raw)
	if err != nil {
		return domain.Case{}, fmt.Errorf("decode case commitment: %w", err)
	}
	return domain.Case{ID: id, Commitment: digest}, nil
}

// HasCase implements storage.CaseStore.
func (s *Store) HasCase(ctx context.Context, id uint32) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var found int
	row := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM cases WHERE id = ?`, id)
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check case: %w", err)
	}
	return true, nil
}

// Detective game methods

const detectiveGameColumns = `case_id, p1, p2, p1_stake, p2_stake, start_height, solve_height,
clues_inspected, rooms_visited, wrong_accusations, status, winner`

// CreateDetectiveGame implements storage.DetectiveGameStore. Expired rows
// are swept first so a recycled session id does not collide with a dead
// record.
func (s *Store) CreateDetectiveGame(ctx context.Context, g domain.Game, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.nowMillis()
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM detective_games WHERE expires_at <= ?`, now); err != nil {
		return fmt.Errorf("sweep expired games: %w", err)
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO detective_games (session_id, `+detectiveGameColumns+`, expires_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.SessionID, g.CaseID, string(g.Players.P1), string(g.Players.P2),
		g.Stakes.P1, g.Stakes.P2, g.StartHeight, g.SolveHeight,
		g.CluesInspected, g.RoomsVisited, g.WrongAccusations,
		g.Status.String(), identityToNull(g.Winner),
		now+ttl.Milliseconds(), now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert detective game: %w", err)
	}
	return nil
}

// GetDetectiveGame implements storage.DetectiveGameStore.
func (s *Store) GetDetectiveGame(ctx context.Context, sessionID uint32) (domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return domain.Game{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+detectiveGameColumns+` FROM detective_games WHERE session_id = ? AND expires_at > ?`,
		sessionID, s.nowMillis(),
	)
	return scanDetectiveGame(row, sessionID)
}

// UpdateDetectiveGame implements storage.DetectiveGameStore. The read,
// mutation and write share one transaction so concurrent updates to the
// same session serialize.
func (s *Store) UpdateDetectiveGame(ctx context.Context, sessionID uint32, ttl time.Duration, mutate func(*domain.Game) error) (domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return domain.Game{}, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Game{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := s.nowMillis()
	row := tx.QueryRowContext(ctx,
		`SELECT `+detectiveGameColumns+` FROM detective_games WHERE session_id = ? AND expires_at > ?`,
		sessionID, now,
	)
	g, err := scanDetectiveGame(row, sessionID)
	if err != nil {
		return domain.Game{}, err
	}

	if err := mutate(&g); err != nil {
		return domain.Game{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE detective_games SET solve_height = ?, clues_inspected = ?, rooms_visited = ?,
		 wrong_accusations = ?, status = ?, winner = ?, expires_at = ?, updated_at = ?
		 WHERE session_id = ?`,
		g.SolveHeight, g.CluesInspected, g.RoomsVisited,
		g.WrongAccusations, g.Status.String(), identityToNull(g.Winner),
		now+ttl.Milliseconds(), now, sessionID,
	)
	if err != nil {
		return domain.Game{}, fmt.Errorf("update detective game: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Game{}, fmt.Errorf("commit tx: %w", err)
	}
	return g, nil
}

func scanDetectiveGame(row *sql.Row, sessionID uint32) (domain.Game, error) {
	var (
		g      domain.Game
		p1, p2 string
		status string
		winner sql.NullString
	)
	err := row.Scan(&g.CaseID, &p1, &p2, &g.Stakes.P1, &g.Stakes.P2,
		&g.StartHeight, &g.SolveHeight, &g.CluesInspected, &g.RoomsVisited,
		&g.WrongAccusations, &status, &winner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Game{}, storage.ErrNotFound
		}
		return domain.Game{}, fmt.Errorf("select detective game: %w", err)
	}

	g.SessionID = sessionID
	g.Players = game.Participants{P1: game.Identity(p1), P2: game.Identity(p2)}
	parsed, ok := domain.ParseStatus(status)
	if !ok {
		return domain.Game{}, fmt.Errorf("unknown detective game status %q", status)
	}
	g.Status = parsed
	g.Winner = identityFromNull(winner)
	return g, nil
}

// Player stats methods

// GetPlayerStats implements storage.PlayerStatsStore. Missing records read
// as zero stats.
func (s *Store) GetPlayerStats(ctx context.Context, player game.Identity) (domain.PlayerStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlayerStats{}, err
	}
	var stats domain.PlayerStats
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT best_score, cases_solved, total_games FROM player_stats WHERE player = ?`,
		string(player),
	)
	if err := row.Scan(&stats.BestScore, &stats.CasesSolved, &stats.TotalGames); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PlayerStats{}, nil
		}
		return domain.PlayerStats{}, fmt.Errorf("select player stats: %w", err)
	}
	return stats, nil
}

// UpdatePlayerStats implements storage.PlayerStatsStore as a transactional
// upsert: the record is created as zero stats when absent, mutated, then
// written back.
func (s *Store) UpdatePlayerStats(ctx context.Context, player game.Identity, mutate func(*domain.PlayerStats) error) (domain.PlayerStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlayerStats{}, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.PlayerStats{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var stats domain.PlayerStats
	row := tx.QueryRowContext(ctx,
		`SELECT best_score, cases_solved, total_games FROM player_stats WHERE player = ?`,
		string(player),
	)
	if err := row.Scan(&stats.BestScore, &stats.CasesSolved, &stats.TotalGames); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.PlayerStats{}, fmt.Errorf("select player stats: %w", err)
	}

	if err := mutate(&stats); err != nil {
		return domain.PlayerStats{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO player_stats (player, best_score, cases_solved, total_games, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(player) DO UPDATE SET
		   best_score = excluded.best_score,
		   cases_solved = excluded.cases_solved,
		   total_games = excluded.total_games,
		   updated_at = excluded.updated_at`,
		string(player), stats.BestScore, stats.CasesSolved, stats.TotalGames, s.nowMillis(),
	)
	if err != nil {
		return domain.PlayerStats{}, fmt.Errorf("upsert player stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.PlayerStats{}, fmt.Errorf("commit tx: %w", err)
	}
	return stats, nil
}

func identityToNull(value *game.Identity) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*value), Valid: true}
}

func identityFromNull(value sql.NullString) *game.Identity {
	if !value.Valid {
		return nil
	}
	identity := game.Identity(value.String)
	return &identity
}
