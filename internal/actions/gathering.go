package actions

import (
	"context"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// StartGathering sends a settler to work a free resource node. Without an
// explicit settler the first idle one goes. A working settler leaves its
// building.
func (s *Service) StartGathering(ctx context.Context, owner, settlementID, nodeID int64, settlerID *int64) (*world.Settler, error) {
	var gatherer *world.Settler
	err := s.update(ctx, owner, settlementID, func(c *world.Colony) error {
		n := c.Node(nodeID)
		if n == nil {
			return world.NotFoundf("resource node %d", nodeID)
		}
		if n.GathererID != nil {
			return world.Invalidf("%s is already being gathered", n.Name)
		}

		var st *world.Settler
		if settlerID != nil {
			st = c.Settler(*settlerID)
			if st == nil {
				return world.NotFoundf("settler %d", *settlerID)
			}
			if !st.Alive() {
				return world.Invalidf("%s is dead", st.Name)
			}
			if st.NodeID != nil {
				return world.Invalidf("%s is already gathering", st.Name)
			}
		} else {
			idle := c.Idle()
			if len(idle) == 0 {
				return world.Invalidf("no idle villagers available")
			}
			st = idle[0]
		}

		if st.BuildingID != nil {
			if b := c.Building(*st.BuildingID); b != nil {
				releaseWork(c, st, b)
			}
		}
		assignNode(c, st, n)
		gatherer = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return gatherer, nil
}

// StopGathering sends the gatherer of a node back to idle.
func (s *Service) StopGathering(ctx context.Context, owner, settlementID, nodeID int64) (*world.Settler, error) {
	var released *world.Settler
	err := s.update(ctx, owner, settlementID, func(c *world.Colony) error {
		n := c.Node(nodeID)
		if n == nil {
			return world.NotFoundf("resource node %d", nodeID)
		}
		if n.GathererID == nil {
			return world.Invalidf("nobody is gathering %s", n.Name)
		}
		released = releaseNode(c, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

func assignNode(c *world.Colony, st *world.Settler, n *world.ResourceNode) {
	settlerID, nodeID := st.ID, n.ID
	n.GathererID = &settlerID
	st.NodeID = &nodeID
	st.Status = world.StatusGathering
	c.Emit(world.EventVillagerAssigned, map[string]any{"settler": st.Name, "target": n.Name})
}

// releaseNode clears the node's gatherer and returns it, or nil when the
// reference was stale.
func releaseNode(c *world.Colony, n *world.ResourceNode) *world.Settler {
	st := c.Settler(*n.GathererID)
	if st == nil {
		n.GathererID = nil
		return nil
	}
	c.StopGathering(st)
	c.Emit(world.EventVillagerUnassigned, map[string]any{"settler": st.Name, "target": n.Name})
	return st
}
