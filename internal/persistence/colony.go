package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// UpdateColony loads settlement id, applies fn and saves the result in one
// transaction. Calls for the same settlement never overlap. fn may run more
// than once if the database reports contention; an error from fn or from the
// colony invariants rolls everything back. Events emitted by fn reach the
// sink only after a successful commit.
func (db *DB) UpdateColony(ctx context.Context, id int64, fn func(c *world.Colony) error) error {
	unlock := db.locks.Lock(id)
	defer unlock()

	var committed *world.Colony
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		c, err := loadColony(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		if err := c.Verify(db.opts.Limits); err != nil {
			logInvariant(id, err)
			return err
		}
		if err := saveColony(ctx, tx, c); err != nil {
			return err
		}
		committed = c
		return nil
	})
	if err != nil {
		return err
	}

	if db.sink != nil && len(committed.Events()) > 0 {
		db.sink.Record(ctx, committed.Events())
	}
	return nil
}

// LoadColony returns a consistent snapshot of a settlement.
func (db *DB) LoadColony(ctx context.Context, id int64) (*world.Colony, error) {
	var c *world.Colony
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		c, err = loadColony(ctx, tx, id)
		return err
	})
	return c, err
}

// CreateSettlement inserts a new settlement with its generated map and
// starting settlers, and returns the stored colony.
func (db *DB) CreateSettlement(ctx context.Context, s *world.Settlement, plots []world.Plot, settlers []*world.Settler) (*world.Colony, error) {
	var c *world.Colony
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now().UTC()
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO settlements
			(owner_id, name, food, wood, stone, magic, happy_duration, happiness_boost, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.OwnerID, s.Name,
			s.Stocks[world.Food], s.Stocks[world.Wood], s.Stocks[world.Stone], s.Stocks[world.Magic],
			s.HappyDuration, s.HappinessBoost, s.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert settlement: %w", err)
		}
		if s.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		c = &world.Colony{Settlement: s}
		for _, p := range plots {
			p.Tile.SettlementID = s.ID
			res, err := tx.ExecContext(ctx,
				"INSERT INTO tiles (settlement_id, x, y, terrain) VALUES (?, ?, ?, ?)",
				s.ID, p.Tile.X, p.Tile.Y, p.Tile.Terrain.String(),
			)
			if err != nil {
				return fmt.Errorf("insert tile (%d, %d): %w", p.Tile.X, p.Tile.Y, err)
			}
			if p.Tile.ID, err = res.LastInsertId(); err != nil {
				return err
			}
			c.Tiles = append(c.Tiles, p.Tile)

			if p.Node == nil {
				continue
			}
			p.Node.TileID = p.Tile.ID
			if err := insertNode(ctx, tx, s.ID, p.Node); err != nil {
				return err
			}
			c.Nodes = append(c.Nodes, p.Node)
		}

		for _, st := range settlers {
			c.AddSettler(st)
			if err := insertSettler(ctx, tx, st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func loadColony(ctx context.Context, tx *sqlx.Tx, id int64) (*world.Colony, error) {
	var sr settlementRow
	err := tx.GetContext(ctx, &sr, "SELECT * FROM settlements WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, world.NotFoundf("settlement %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load settlement %d: %w", id, err)
	}

	c := &world.Colony{Settlement: sr.settlement()}

	var gs gameStateRow
	err = tx.GetContext(ctx, &gs, "SELECT tick_count, current_season FROM game_state WHERE id = ?", world.GameStateID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load game state: %w", err)
	}
	c.Tick = uint64(gs.TickCount)

	var tiles []tileRow
	if err := tx.SelectContext(ctx, &tiles, "SELECT * FROM tiles WHERE settlement_id = ? ORDER BY id", id); err != nil {
		return nil, fmt.Errorf("load tiles: %w", err)
	}
	for _, r := range tiles {
		t, err := r.tile()
		if err != nil {
			return nil, err
		}
		c.Tiles = append(c.Tiles, t)
	}

	var buildings []buildingRow
	if err := tx.SelectContext(ctx, &buildings, "SELECT * FROM buildings WHERE settlement_id = ? ORDER BY id", id); err != nil {
		return nil, fmt.Errorf("load buildings: %w", err)
	}
	for _, r := range buildings {
		b, err := r.building()
		if err != nil {
			return nil, err
		}
		c.Buildings = append(c.Buildings, b)
	}

	var settlers []settlerRow
	if err := tx.SelectContext(ctx, &settlers, "SELECT * FROM settlers WHERE settlement_id = ? ORDER BY id", id); err != nil {
		return nil, fmt.Errorf("load settlers: %w", err)
	}
	for _, r := range settlers {
		s, err := r.settler()
		if err != nil {
			return nil, err
		}
		c.Settlers = append(c.Settlers, s)
	}

	var nodes []nodeRow
	if err := tx.SelectContext(ctx, &nodes, "SELECT * FROM nodes WHERE settlement_id = ? ORDER BY id", id); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	for _, r := range nodes {
		n, err := r.node()
		if err != nil {
			return nil, err
		}
		c.Nodes = append(c.Nodes, n)
	}

	return c, nil
}

// saveColony writes back every mutable field of the aggregate. Entities with
// a zero id are inserted.
func saveColony(ctx context.Context, tx *sqlx.Tx, c *world.Colony) error {
	s := c.Settlement
	_, err := tx.ExecContext(ctx, `UPDATE settlements SET
		food = ?, wood = ?, stone = ?, magic = ?, happy_duration = ?, happiness_boost = ?
		WHERE id = ?`,
		s.Stocks[world.Food], s.Stocks[world.Wood], s.Stocks[world.Stone], s.Stocks[world.Magic],
		s.HappyDuration, s.HappinessBoost, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update settlement %d: %w", s.ID, err)
	}

	for _, b := range c.Buildings {
		if b.ID == 0 {
			res, err := tx.ExecContext(ctx, `INSERT INTO buildings
				(settlement_id, building_type, x, y, progress, constructed) VALUES (?, ?, ?, ?, ?, ?)`,
				s.ID, b.Type.String(), b.X, b.Y, b.Progress, b.Constructed,
			)
			if err != nil {
				return fmt.Errorf("insert building at (%d, %d): %w", b.X, b.Y, err)
			}
			if b.ID, err = res.LastInsertId(); err != nil {
				return err
			}
			continue
		}
		_, err := tx.ExecContext(ctx, "UPDATE buildings SET progress = ?, constructed = ? WHERE id = ?",
			b.Progress, b.Constructed, b.ID)
		if err != nil {
			return fmt.Errorf("update building %d: %w", b.ID, err)
		}
	}

	for _, st := range c.Settlers {
		if st.ID == 0 {
			if err := insertSettler(ctx, tx, st); err != nil {
				return err
			}
			continue
		}
		_, err := tx.ExecContext(ctx, `UPDATE settlers SET
			status = ?, mood = ?, hunger = ?, building_id = ?, house_id = ?, node_id = ?,
			birth_tick = ?, experience = ?
			WHERE id = ?`,
			st.Status.String(), st.Mood.String(), st.Hunger, st.BuildingID, st.HouseID, st.NodeID,
			birthTickArg(st), st.Experience, st.ID,
		)
		if err != nil {
			return fmt.Errorf("update settler %d: %w", st.ID, err)
		}
	}

	for _, n := range c.Nodes {
		_, err := tx.ExecContext(ctx, "UPDATE nodes SET quantity = ?, gatherer_id = ? WHERE id = ?",
			n.Quantity, n.GathererID, n.ID)
		if err != nil {
			return fmt.Errorf("update node %d: %w", n.ID, err)
		}
	}

	for _, id := range c.RemovedNodes() {
		if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete node %d: %w", id, err)
		}
	}

	return nil
}

func insertSettler(ctx context.Context, tx *sqlx.Tx, st *world.Settler) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO settlers
		(settlement_id, name, status, mood, hunger, building_id, house_id, node_id, birth_tick, experience)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.SettlementID, st.Name, st.Status.String(), st.Mood.String(), st.Hunger,
		st.BuildingID, st.HouseID, st.NodeID, birthTickArg(st), st.Experience,
	)
	if err != nil {
		return fmt.Errorf("insert settler %q: %w", st.Name, err)
	}
	st.ID, err = res.LastInsertId()
	return err
}

func insertNode(ctx context.Context, tx *sqlx.Tx, settlementID int64, n *world.ResourceNode) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO nodes
		(settlement_id, tile_id, archetype, name, resource, quantity, max_quantity, regen_rate, lore, gatherer_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlementID, n.TileID, n.Archetype, n.Name, n.Resource.String(),
		n.Quantity, n.MaxQuantity, n.RegenRate, n.Lore, n.GathererID,
	)
	if err != nil {
		return fmt.Errorf("insert node on tile %d: %w", n.TileID, err)
	}
	n.ID, err = res.LastInsertId()
	return err
}

// logInvariant reports a unit rejected by the colony invariants.
func logInvariant(id int64, err error) {
	slog.Error("colony invariant violated, unit rolled back", "settlement", id, "invariant", err)
}
