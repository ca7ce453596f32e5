package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

type gameStateRow struct {
	TickCount     int64  `db:"tick_count"`
	CurrentSeason string `db:"current_season"`
}

// AdvanceClock applies fn to the game state in one transaction, creating the
// state on first use, and returns the stored result.
func (db *DB) AdvanceClock(ctx context.Context, fn func(gs *world.GameState)) (world.GameState, error) {
	var gs world.GameState
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		var row gameStateRow
		err := tx.GetContext(ctx, &row, "SELECT tick_count, current_season FROM game_state WHERE id = ?", world.GameStateID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load game state: %w", err)
		}
		gs = world.GameState{TickCount: uint64(row.TickCount), CurrentSeason: row.CurrentSeason}

		fn(&gs)

		_, err = tx.ExecContext(ctx, `INSERT INTO game_state (id, tick_count, current_season) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET tick_count = excluded.tick_count, current_season = excluded.current_season`,
			world.GameStateID, int64(gs.TickCount), gs.CurrentSeason,
		)
		if err != nil {
			return fmt.Errorf("save game state: %w", err)
		}
		return nil
	})
	return gs, err
}

// GameState returns the current clock. A world that never ticked is at tick 0
// with no season.
func (db *DB) GameState(ctx context.Context) (world.GameState, error) {
	var row gameStateRow
	err := db.conn.GetContext(ctx, &row, "SELECT tick_count, current_season FROM game_state WHERE id = ?", world.GameStateID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return world.GameState{}, fmt.Errorf("load game state: %w", err)
	}
	return world.GameState{TickCount: uint64(row.TickCount), CurrentSeason: row.CurrentSeason}, nil
}

// SettlementIDs lists every settlement in id order.
func (db *DB) SettlementIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := db.conn.SelectContext(ctx, &ids, "SELECT id FROM settlements ORDER BY id")
	return ids, err
}

// Settlements lists every settlement without its entities.
func (db *DB) Settlements(ctx context.Context) ([]*world.Settlement, error) {
	return db.selectSettlements(ctx, "SELECT * FROM settlements ORDER BY id")
}

// SettlementsByOwner lists the settlements of one owner.
func (db *DB) SettlementsByOwner(ctx context.Context, ownerID int64) ([]*world.Settlement, error) {
	return db.selectSettlements(ctx, "SELECT * FROM settlements WHERE owner_id = ? ORDER BY id", ownerID)
}

func (db *DB) selectSettlements(ctx context.Context, query string, args ...any) ([]*world.Settlement, error) {
	var rows []settlementRow
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	out := make([]*world.Settlement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.settlement())
	}
	return out, nil
}

// AppendEvents stores events and fills in their ids and timestamps.
func (db *DB) AppendEvents(ctx context.Context, events []world.Event) error {
	if len(events) == 0 {
		return nil
	}

	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx,
			"INSERT INTO events (settlement_id, tick, kind, description, created_at) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range events {
			e := &events[i]
			if e.CreatedAt.IsZero() {
				e.CreatedAt = time.Now().UTC()
			}
			res, err := stmt.ExecContext(ctx, e.SettlementID, int64(e.Tick), string(e.Kind), e.Description, e.CreatedAt.Unix())
			if err != nil {
				return fmt.Errorf("insert event %s: %w", e.Kind, err)
			}
			if e.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentEvents returns the newest events of a settlement, world-wide events
// included, newest first.
func (db *DB) RecentEvents(ctx context.Context, settlementID int64, limit int) ([]world.Event, error) {
	var rows []eventRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM events WHERE settlement_id IN (?, ?) ORDER BY id DESC LIMIT ?",
		settlementID, world.WorldWide, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	out := make([]world.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.event())
	}
	return out, nil
}

// CreateOwner stores a new owner identity.
func (db *DB) CreateOwner(ctx context.Context, name, tokenHash string) (*world.Owner, error) {
	o := &world.Owner{Name: name, TokenHash: tokenHash, CreatedAt: time.Now().UTC()}
	res, err := db.conn.ExecContext(ctx,
		"INSERT INTO owners (name, token_hash, created_at) VALUES (?, ?, ?)",
		o.Name, o.TokenHash, o.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert owner %q: %w", name, err)
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return o, nil
}

// Owner returns an owner by id.
func (db *DB) Owner(ctx context.Context, id int64) (*world.Owner, error) {
	var row ownerRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM owners WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, world.NotFoundf("owner %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load owner %d: %w", id, err)
	}
	return row.owner(), nil
}
