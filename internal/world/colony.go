package world

import "fmt"

// Colony is the aggregate of one settlement and everything it owns. It is the
// unit loaded, mutated and saved by a single store transaction.
type Colony struct {
	Settlement *Settlement
	Tiles      []*MapTile
	Buildings  []*Building
	Settlers   []*Settler
	Nodes      []*ResourceNode

	Tick uint64 // Game tick at load time

	removedNodes []int64
	events       []Event
}

// Tile returns the tile at (x, y), or nil.
func (c *Colony) Tile(x, y int) *MapTile {
	for _, t := range c.Tiles {
		if t.X == x && t.Y == y {
			return t
		}
	}
	return nil
}

// BuildingAt returns the building occupying (x, y), or nil.
func (c *Colony) BuildingAt(x, y int) *Building {
	for _, b := range c.Buildings {
		if b.X == x && b.Y == y {
			return b
		}
	}
	return nil
}

// Building returns the building with the given id, or nil.
func (c *Colony) Building(id int64) *Building {
	for _, b := range c.Buildings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Settler returns the settler with the given id, or nil.
func (c *Colony) Settler(id int64) *Settler {
	for _, s := range c.Settlers {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Node returns the resource node with the given id, or nil.
func (c *Colony) Node(id int64) *ResourceNode {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NodeOnTile returns the resource node on a tile, or nil.
func (c *Colony) NodeOnTile(tileID int64) *ResourceNode {
	for _, n := range c.Nodes {
		if n.TileID == tileID {
			return n
		}
	}
	return nil
}

// Living returns settlers that are not dead, in stable order.
func (c *Colony) Living() []*Settler {
	out := make([]*Settler, 0, len(c.Settlers))
	for _, s := range c.Settlers {
		if s.Alive() {
			out = append(out, s)
		}
	}
	return out
}

// Idle returns living settlers free for a new assignment.
func (c *Colony) Idle() []*Settler {
	var out []*Settler
	for _, s := range c.Settlers {
		if s.Status == StatusIdle && s.NodeID == nil {
			out = append(out, s)
		}
	}
	return out
}

// Workers returns the living settlers assigned to a building.
func (c *Colony) Workers(buildingID int64) []*Settler {
	var out []*Settler
	for _, s := range c.Settlers {
		if s.Alive() && s.BuildingID != nil && *s.BuildingID == buildingID {
			out = append(out, s)
		}
	}
	return out
}

// Occupants counts the living settlers housed in a building.
func (c *Colony) Occupants(houseID int64) int {
	n := 0
	for _, s := range c.Settlers {
		if s.Alive() && s.HouseID != nil && *s.HouseID == houseID {
			n++
		}
	}
	return n
}

// Housed counts living settlers with a house.
func (c *Colony) Housed() int {
	n := 0
	for _, s := range c.Settlers {
		if s.Alive() && s.HouseID != nil {
			n++
		}
	}
	return n
}

// Constructed returns finished buildings of the given type in stable order.
func (c *Colony) Constructed(bt BuildingType) []*Building {
	var out []*Building
	for _, b := range c.Buildings {
		if b.Constructed && b.Type == bt {
			out = append(out, b)
		}
	}
	return out
}

// AddBuilding appends a new, not yet persisted building.
func (c *Colony) AddBuilding(b *Building) {
	b.SettlementID = c.Settlement.ID
	c.Buildings = append(c.Buildings, b)
}

// AddSettler appends a new, not yet persisted settler.
func (c *Colony) AddSettler(s *Settler) {
	s.SettlementID = c.Settlement.ID
	c.Settlers = append(c.Settlers, s)
}

// RemoveNode deletes a depleted node from the colony.
func (c *Colony) RemoveNode(id int64) {
	for i, n := range c.Nodes {
		if n.ID == id {
			c.Nodes = append(c.Nodes[:i], c.Nodes[i+1:]...)
			c.removedNodes = append(c.removedNodes, id)
			return
		}
	}
}

// RemovedNodes returns the ids of nodes removed since load.
func (c *Colony) RemovedNodes() []int64 {
	return c.removedNodes
}

// StopGathering detaches a settler from the node it works, if any.
func (c *Colony) StopGathering(s *Settler) {
	if s.NodeID != nil {
		if n := c.Node(*s.NodeID); n != nil && n.GathererID != nil && *n.GathererID == s.ID {
			n.GathererID = nil
		}
		s.NodeID = nil
	}
	if s.Status == StatusGathering {
		s.Status = StatusIdle
	}
}

// Kill marks a settler dead and releases every assignment it held.
func (c *Colony) Kill(s *Settler) {
	c.StopGathering(s)
	s.Status = StatusDead
	s.Mood = MoodSick
	s.BuildingID = nil
	s.HouseID = nil
}

// Emit records an event to be published after the colony commits.
func (c *Colony) Emit(kind EventKind, data map[string]any) {
	c.events = append(c.events, Event{
		SettlementID: c.Settlement.ID,
		Tick:         c.Tick,
		Kind:         kind,
		Data:         data,
	})
}

// Events returns the events emitted since load.
func (c *Colony) Events() []Event {
	return c.events
}

// Limits are the capacities a committed colony must stay within.
type Limits struct {
	HouseCapacity  int
	ResourceCap    int
	WarehouseBonus int
}

// Cap returns the storage limit of every resource, counting finished
// warehouses.
func (l Limits) Cap(c *Colony) int {
	return l.ResourceCap + l.WarehouseBonus*len(c.Constructed(BuildingWarehouse))
}

// Verify checks the invariants a committed colony must hold.
func (c *Colony) Verify(l Limits) error {
	limit := l.Cap(c)
	for _, r := range Resources() {
		n := c.Settlement.Stocks[r]
		if n < 0 {
			return fmt.Errorf("%w: %s stock is %d", ErrInvariant, r, n)
		}
		if n > limit {
			return fmt.Errorf("%w: %s stock %d exceeds cap %d", ErrInvariant, r, n, limit)
		}
	}

	occupied := make(map[[2]int]int64, len(c.Buildings))
	for _, b := range c.Buildings {
		key := [2]int{b.X, b.Y}
		if other, ok := occupied[key]; ok {
			return fmt.Errorf("%w: buildings %d and %d share tile (%d, %d)", ErrInvariant, other, b.ID, b.X, b.Y)
		}
		occupied[key] = b.ID
		if b.Progress < 0 || b.Progress > 100 {
			return fmt.Errorf("%w: building %d progress %d", ErrInvariant, b.ID, b.Progress)
		}
		if b.Type == BuildingHouse && c.Occupants(b.ID) > l.HouseCapacity {
			return fmt.Errorf("%w: house %d over capacity", ErrInvariant, b.ID)
		}
	}

	for _, s := range c.Settlers {
		if !s.Alive() && (s.BuildingID != nil || s.HouseID != nil || s.NodeID != nil) {
			return fmt.Errorf("%w: dead settler %d holds an assignment", ErrInvariant, s.ID)
		}
	}
	for _, n := range c.Nodes {
		if n.Quantity < 0 {
			return fmt.Errorf("%w: node %d quantity %d", ErrInvariant, n.ID, n.Quantity)
		}
	}
	return nil
}
