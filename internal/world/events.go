package world

import "time"

// EventKind classifies an entry in a settlement's event log.
type EventKind string

const (
	EventBuildingPlaced     EventKind = "building_placed"
	EventBuildingFinished   EventKind = "building_finished"
	EventVillagerAssigned   EventKind = "villager_assigned"
	EventVillagerUnassigned EventKind = "villager_unassigned"
	EventVillagerRecruited  EventKind = "villager_recruited"
	EventVillagerDead       EventKind = "villager_dead"
	EventResourceDepleted   EventKind = "resource_depleted"
	EventSeasonChanged      EventKind = "season_changed"
	EventSettlementFounded  EventKind = "settlement_founded"
)

// WorldWide is the settlement id used for events that concern every settlement.
const WorldWide int64 = 0

// Event is a notable occurrence. Description may be left empty and rendered
// later from Data by the event log.
type Event struct {
	ID           int64          `json:"id,omitempty"`
	SettlementID int64          `json:"settlement_id"`
	Tick         uint64         `json:"tick"`
	Kind         EventKind      `json:"event_type"`
	Description  string         `json:"description"`
	Data         map[string]any `json:"data,omitempty"`
	CreatedAt    time.Time      `json:"timestamp"`
}
