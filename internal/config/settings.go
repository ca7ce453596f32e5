package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Settings are runtime parameters of one server process.
type Settings struct {
	Database     string            `yaml:"database"`
	TickInterval time.Duration     `yaml:"tick_interval"`
	Speed        int               `yaml:"speed"`   // Ticks per interval; 0 pauses the driver
	Workers      int               `yaml:"workers"` // Settlements processed in parallel per phase
	Seed         int64             `yaml:"seed"`    // 0 picks a fresh seed at startup
	Listen       string            `yaml:"listen"`
	AdminKey     string            `yaml:"admin_key"`
	CORSOrigin   string            `yaml:"cors_origin"`
	LogLevel     string            `yaml:"log_level"`
	RateLimit    RateLimitSettings `yaml:"rate_limit"`
	NATS         NATSSettings      `yaml:"nats"`
	Retry        RetrySettings     `yaml:"retry"`
}

// RateLimitSettings bound requests per client. The per-IP bucket gates every
// authenticated route before the token is checked; the per-owner bucket then
// limits actions.
type RateLimitSettings struct {
	PerSecond   float64 `yaml:"per_second"`
	Burst       int     `yaml:"burst"`
	IPPerSecond float64 `yaml:"ip_per_second"`
	IPBurst     int     `yaml:"ip_burst"`
	TrustProxy  bool    `yaml:"trust_proxy"` // Key clients by X-Forwarded-For
}

// NATSSettings configure event publication. An empty URL with Embedded false
// disables NATS entirely.
type NATSSettings struct {
	URL      string `yaml:"url"`
	Embedded bool   `yaml:"embedded"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Subject  string `yaml:"subject"` // Prefix; events go to <subject>.<settlement>.<kind>
}

// Enabled reports whether events should be published to NATS.
func (n *NATSSettings) Enabled() bool {
	return n.URL != "" || n.Embedded
}

// RetrySettings bound store retries on contention.
type RetrySettings struct {
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"` // Initial delay, doubled per attempt
}

// Level parses LogLevel, defaulting to info.
func (s *Settings) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (s *Settings) Validate() error {
	el := errors.NewErrorList()

	if s.Database == "" {
		el.Add(fmt.Errorf("database is required"))
	}
	if s.TickInterval < 100*time.Millisecond {
		el.Add(fmt.Errorf("tick_interval must be at least 100ms"))
	}
	if s.Speed < 0 {
		el.Add(fmt.Errorf("speed must not be negative"))
	}
	if s.Workers < 1 {
		el.Add(fmt.Errorf("workers must be at least 1"))
	}
	if s.RateLimit.PerSecond <= 0 || s.RateLimit.Burst < 1 {
		el.Add(fmt.Errorf("rate_limit needs a positive per_second and burst"))
	}
	if s.RateLimit.IPPerSecond <= 0 || s.RateLimit.IPBurst < 1 {
		el.Add(fmt.Errorf("rate_limit needs a positive ip_per_second and ip_burst"))
	}
	if s.NATS.Enabled() && s.NATS.Subject == "" {
		el.Add(fmt.Errorf("nats.subject is required when nats is enabled"))
	}
	if s.Retry.Attempts < 1 {
		el.Add(fmt.Errorf("retry.attempts must be at least 1"))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		el.Add(fmt.Errorf("log_level: %w", err))
	}

	return el.Err()
}

func (r *Rules) Validate() error {
	el := errors.NewErrorList()

	if r.SeasonLength == 0 {
		el.Add(fmt.Errorf("season_length must be positive"))
	}
	if len(r.Seasons) == 0 {
		el.Add(fmt.Errorf("at least one season is required"))
	}
	if r.GridSize < 1 {
		el.Add(fmt.Errorf("grid_size must be positive"))
	}
	if r.ProductionInterval == 0 {
		el.Add(fmt.Errorf("production_interval must be positive"))
	}
	if r.FeedingInterval < 1 {
		el.Add(fmt.Errorf("feeding_interval must be positive"))
	}
	if r.StarvationThreshold < 1 {
		el.Add(fmt.Errorf("starvation_threshold must be positive"))
	}
	if r.HouseCapacity < 1 {
		el.Add(fmt.Errorf("house_capacity must be positive"))
	}
	if r.ResourceCap < 0 || r.WarehouseBonus < 0 {
		el.Add(fmt.Errorf("resource_cap and warehouse_bonus must not be negative"))
	}
	for res, n := range r.StartingResources {
		if n < 0 || n > r.ResourceCap {
			el.Add(fmt.Errorf("starting_resources.%s: %d is outside [0, resource_cap %d]", res, n, r.ResourceCap))
		}
	}
	if r.StartingVillagers < 0 {
		el.Add(fmt.Errorf("starting_villagers must not be negative"))
	}
	if r.Population.MaxHungerForMood <= 0 || r.Population.FoodBaseline <= 0 {
		el.Add(fmt.Errorf("population.max_hunger_for_mood and food_baseline must be positive"))
	}
	if _, ok := r.Buildings[world.BuildingHouse]; !ok {
		el.Add(fmt.Errorf("buildings: house is required"))
	}
	for bt, def := range r.Buildings {
		for res, n := range def.Cost {
			if n < 0 {
				el.Add(fmt.Errorf("buildings.%s: negative %s cost", bt, res))
			}
		}
		if def.Produces != nil && def.Rate < 0 {
			el.Add(fmt.Errorf("buildings.%s: negative rate", bt))
		}
	}
	for i, a := range r.Nodes {
		if a.Key == "" {
			el.Add(fmt.Errorf("nodes[%d]: key is required", i))
		}
		if a.Probability < 0 || a.Probability > 1 {
			el.Add(fmt.Errorf("nodes.%s: probability must be within [0, 1]", a.Key))
		}
		if a.Quantity > a.MaxQuantity {
			el.Add(fmt.Errorf("nodes.%s: quantity exceeds max_quantity", a.Key))
		}
	}

	return el.Err()
}
