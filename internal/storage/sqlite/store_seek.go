package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/game"
	"github.com/louisbranch/zkgames/internal/seek/domain"
	"github.com/louisbranch/zkgames/internal/storage"
)

// Scene methods

// CreateScene implements storage.SceneStore. Scene ids are first-wins.
func (s *Store) CreateScene(ctx context.Context, scene domain.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO scenes (id, target_commitment, tolerance, active, created_at) VALUES (?, ?, ?, ?, ?)`,
		scene.ID, scene.TargetCommitment.String(), scene.Tolerance, boolToInt(scene.Active), s.nowMillis(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert scene: %w", err)
	}
	return nil
}

// GetScene implements storage.SceneStore.
func (s *Store) GetScene(ctx context.Context, id uint32) (domain.Scene, error) {
	if err := ctx.Err(); err != nil {
		return domain.Scene{}, err
	}
	var (
		raw    string
		active int
		scene  domain.Scene
	)
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT target_commitment, tolerance, active FROM scenes WHERE id = ?`, id)
	if err := row.Scan(&raw, &scene.Tolerance, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Scene{}, storage.ErrNotFound
		}
		return domain.Scene{}, fmt.Errorf("select scene: %w", err)
	}
	digest, err := commitment.ParseDigest(raw)
	if err != nil {
		return domain.Scene{}, fmt.Errorf("decode scene commitment: %w", err)
	}
	scene.ID = id
	scene.TargetCommitment = digest
	scene.Active = active != 0
	return scene, nil
}

// SetSceneActive implements storage.SceneStore.
func (s *Store) SetSceneActive(ctx context.Context, id uint32, active bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE scenes SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("update scene: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update scene result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Seek game methods

const seekGameColumns = `scene_id, p1, p2, p1_stake, p2_stake, start_height, status, winner,
p1_commitment, p1_commit_height, p1_reveal_x, p1_reveal_y,
p2_commitment, p2_commit_height, p2_reveal_x, p2_reveal_y`

// CreateSeekGame implements storage.SeekGameStore.
func (s *Store) CreateSeekGame(ctx context.Context, g domain.Game, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.nowMillis()
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM seek_games WHERE expires_at <= ?`, now); err != nil {
		return fmt.Errorf("sweep expired games: %w", err)
	}

	p1 := slotColumns(g.P1)
	p2 := slotColumns(g.P2)
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO seek_games (session_id, `+seekGameColumns+`, expires_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.SessionID, g.SceneID, string(g.Players.P1), string(g.Players.P2),
		g.Stakes.P1, g.Stakes.P2, g.StartHeight, g.Status.String(), identityToNull(g.Winner),
		p1.commitment, p1.commitHeight, p1.revealX, p1.revealY,
		p2.commitment, p2.commitHeight, p2.revealX, p2.revealY,
		now+ttl.Milliseconds(), now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert seek game: %w", err)
	}
	return nil
}

// GetSeekGame implements storage.SeekGameStore.
func (s *Store) GetSeekGame(ctx context.Context, sessionID uint32) (domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return domain.Game{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+seekGameColumns+` FROM seek_games WHERE session_id = ? AND expires_at > ?`,
		sessionID, s.nowMillis(),
	)
	return scanSeekGame(row, sessionID)
}

// UpdateSeekGame implements storage.SeekGameStore inside one transaction.
func (s *Store) UpdateSeekGame(ctx context.Context, sessionID uint32, ttl time.Duration, mutate func(*domain.Game) error) (domain.Game, error) {
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
		`SELECT `+seekGameColumns+` FROM seek_games WHERE session_id = ? AND expires_at > ?`,
		sessionID, now,
	)
	g, err := scanSeekGame(row, sessionID)
	if err != nil {
		return domain.Game{}, err
	}

	if err := mutate(&g); err != nil {
		return domain.Game{}, err
	}

	p1 := slotColumns(g.P1)
	p2 := slotColumns(g.P2)
	_, err = tx.ExecContext(ctx,
		`UPDATE seek_games SET status = ?, winner = ?,
		 p1_commitment = ?, p1_commit_height = ?, p1_reveal_x = ?, p1_reveal_y = ?,
		 p2_commitment = ?, p2_commit_height = ?, p2_reveal_x = ?, p2_reveal_y = ?,
		 expires_at = ?, updated_at = ?
		 WHERE session_id = ?`,
		g.Status.String(), identityToNull(g.Winner),
		p1.commitment, p1.commitHeight, p1.revealX, p1.revealY,
		p2.commitment, p2.commitHeight, p2.revealX, p2.revealY,
		now+ttl.Milliseconds(), now, sessionID,
	)
	if err != nil {
		return domain.Game{}, fmt.Errorf("update seek game: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Game{}, fmt.Errorf("commit tx: %w", err)
	}
	return g, nil
}

// slotRow is the nullable column form of one player slot.
type slotRow struct {
	commitment   sql.NullString
	commitHeight sql.NullInt64
	revealX      sql.NullInt64
	revealY      sql.NullInt64
}

func slotColumns(state domain.PlayerState) slotRow {
	var row slotRow
	if state.Commitment != nil {
		row.commitment = sql.NullString{String: state.Commitment.String(), Valid: true}
	}
	if state.CommitHeight != nil {
		row.commitHeight = sql.NullInt64{Int64: int64(*state.CommitHeight), Valid: true}
	}
	if state.Reveal != nil {
		row.revealX = sql.NullInt64{Int64: int64(state.Reveal.X), Valid: true}
		row.revealY = sql.NullInt64{Int64: int64(state.Reveal.Y), Valid: true}
	}
	return row
}

func slotFromColumns(row slotRow) (domain.PlayerState, error) {
	var state domain.PlayerState
	if row.commitment.Valid {
		digest, err := commitment.ParseDigest(row.commitment.String)
		if err != nil {
			return domain.PlayerState{}, fmt.Errorf("decode slot commitment: %w", err)
		}
		state.Commitment = &digest
	}
	if row.commitHeight.Valid {
		height := uint64(row.commitHeight.Int64)
		state.CommitHeight = &height
	}
	if row.revealX.Valid && row.revealY.Valid {
		state.Reveal = &domain.Point{X: uint32(row.revealX.Int64), Y: uint32(row.revealY.Int64)}
	}
	return state, nil
}

func scanSeekGame(row *sql.Row, sessionID uint32) (domain.Game, error) {
	var (
		g      domain.Game
		p1, p2 string
		status string
		winner sql.NullString
		s1, s2 slotRow
	)
	err := row.Scan(&g.SceneID, &p1, &p2, &g.Stakes.P1, &g.Stakes.P2,
		&g.StartHeight, &status, &winner,
		&s1.commitment, &s1.commitHeight, &s1.revealX, &s1.revealY,
		&s2.commitment, &s2.commitHeight, &s2.revealX, &s2.revealY)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Game{}, storage.ErrNotFound
		}
		return domain.Game{}, fmt.Errorf("select seek game: %w", err)
	}

	g.SessionID = sessionID
	g.Players = game.Participants{P1: game.Identity(p1), P2: game.Identity(p2)}
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Game{}, fmt.Errorf("decode seek game status: %w", err)
	}
	g.Status = parsed
	g.Winner = identityFromNull(winner)
	if g.P1, err = slotFromColumns(s1); err != nil {
		return domain.Game{}, err
	}
	if g.P2, err = slotFromColumns(s2); err != nil {
		return domain.Game{}, err
	}
	return g, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
