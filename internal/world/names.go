package world

// DefaultVillagerNames is the name pool for starting and recruited villagers.
var DefaultVillagerNames = []string{
	"Alice", "Bob", "Charlie", "Diana", "Edward", "Fiona", "George", "Hannah",
}
