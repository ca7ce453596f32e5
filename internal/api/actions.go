package api

import (
	"net/http"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

type placeRequest struct {
	SettlementID int64  `json:"settlement_id"`
	BuildingType string `json:"building_type"`
	X            *int   `json:"x"`
	Y            *int   `json:"y"`
}

type assignRequest struct {
	SettlementID int64  `json:"settlement_id"`
	BuildingID   int64  `json:"building_id"`
	SettlerID    *int64 `json:"settler_id,omitempty"`
}

type gatherRequest struct {
	SettlementID int64  `json:"settlement_id"`
	NodeID       int64  `json:"resource_node_id"`
	SettlerID    *int64 `json:"settler_id,omitempty"`
}

type toggleRequest struct {
	SettlementID int64  `json:"settlement_id"`
	ObjectType   string `json:"object_type"`
	ObjectID     int64  `json:"object_id"`
}

func (s *Server) handlePlaceBuilding(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, r, world.Invalidf("x and y are required"))
		return
	}

	b, err := s.Actions.PlaceBuilding(r.Context(), ownerFrom(r.Context()).ID, req.SettlementID, req.BuildingType, *req.X, *req.Y)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeStatus(w, http.StatusCreated, map[string]any{"building": b})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	st, err := s.Actions.AssignWorker(r.Context(), ownerFrom(r.Context()).ID, req.SettlementID, req.BuildingID, req.SettlerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"settler": st})
}

func (s *Server) handleGather(w http.ResponseWriter, r *http.Request) {
	var req gatherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	st, err := s.Actions.StartGathering(r.Context(), ownerFrom(r.Context()).ID, req.SettlementID, req.NodeID, req.SettlerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"settler": st})
}

func (s *Server) handleStopGathering(w http.ResponseWriter, r *http.Request) {
	var req gatherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	st, err := s.Actions.StopGathering(r.Context(), ownerFrom(r.Context()).ID, req.SettlementID, req.NodeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"settler": st})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.Actions.ToggleAssignment(r.Context(), ownerFrom(r.Context()).ID, req.SettlementID, req.ObjectType, req.ObjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, result)
}
