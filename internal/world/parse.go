package world

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// ParseBuildingType resolves a building type name. Unknown names produce a
// validation error that suggests the closest known type when one is near.
func ParseBuildingType(name string) (BuildingType, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.ReplaceAll(norm, " ", "_")
	for i, n := range buildingNames {
		if n == norm {
			return BuildingType(i), nil
		}
	}
	if guess := nearestName(norm, buildingNames); guess != "" {
		return 0, Invalidf("unknown building type %q (did you mean %q?)", name, guess)
	}
	return 0, Invalidf("unknown building type %q", name)
}

// nearestName returns the candidate with the smallest edit distance to in,
// or "" when nothing is within the length-scaled limit.
func nearestName(in string, candidates []string) string {
	if len(in) < 3 {
		return ""
	}
	best, bestDist := "", -1
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(in, c)
		if dist > distanceLimit(len(c)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
