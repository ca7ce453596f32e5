package actions

import (
	"context"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Toggle targets.
const (
	ObjectBuilding     = "building"
	ObjectResourceNode = "resource_node"
)

// ToggleResult reports what a toggle did.
type ToggleResult struct {
	Assigned bool     `json:"assigned"` // false when assignments were cleared
	Settlers []string `json:"settlers"`
}

// ToggleAssignment clears every assignment of a building or node if it has
// any, and otherwise assigns the first idle settler to it.
func (s *Service) ToggleAssignment(ctx context.Context, owner, settlementID int64, objectType string, objectID int64) (ToggleResult, error) {
	var result ToggleResult
	err := s.update(ctx, owner, settlementID, func(c *world.Colony) error {
		result = ToggleResult{}
		switch objectType {
		case ObjectBuilding:
			return s.toggleBuilding(c, objectID, &result)
		case ObjectResourceNode:
			return toggleNode(c, objectID, &result)
		default:
			return world.Invalidf("unknown object type %q: want %q or %q", objectType, ObjectBuilding, ObjectResourceNode)
		}
	})
	return result, err
}

func (s *Service) toggleBuilding(c *world.Colony, id int64, result *ToggleResult) error {
	b := c.Building(id)
	if b == nil {
		return world.NotFoundf("building %d", id)
	}

	if workers := c.Workers(b.ID); len(workers) > 0 {
		for _, st := range workers {
			releaseWork(c, st, b)
			result.Settlers = append(result.Settlers, st.Name)
		}
		return nil
	}

	if !s.rules.IsProduction(b.Type) {
		return world.Invalidf("a %s does not take workers", b.Type)
	}
	idle := c.Idle()
	if len(idle) == 0 {
		return world.Invalidf("no idle villagers available")
	}
	assignWork(c, idle[0], b)
	result.Assigned = true
	result.Settlers = []string{idle[0].Name}
	return nil
}

func toggleNode(c *world.Colony, id int64, result *ToggleResult) error {
	n := c.Node(id)
	if n == nil {
		return world.NotFoundf("resource node %d", id)
	}

	if n.GathererID != nil {
		if st := releaseNode(c, n); st != nil {
			result.Settlers = []string{st.Name}
		}
		return nil
	}

	idle := c.Idle()
	if len(idle) == 0 {
		return world.Invalidf("no idle villagers available")
	}
	assignNode(c, idle[0], n)
	result.Assigned = true
	result.Settlers = []string{idle[0].Name}
	return nil
}
