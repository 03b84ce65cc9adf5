// Package config collects every tunable of a simulation run. Values come
// from, in increasing precedence: built-in defaults, an optional YAML tuning
// file, environment variables (optionally loaded from .env by the caller),
// and command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML tuning files can use the usual Go
// duration strings ("5s", "1500ms").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full set of simulation parameters.
type Config struct {
	// Positional parameters of the CLI; not part of the tuning file.
	Customers   int  `yaml:"-"`
	Workers     int  `yaml:"-"`
	MaxProducts int  `yaml:"max_products"`
	MaxQuantity int  `yaml:"max_quantity"`
	Debug       bool `yaml:"-"`

	// Tuning knobs.
	OrderProbability  float64  `yaml:"order_probability"`
	CancelProbability float64  `yaml:"cancel_probability"`
	CancelDelayMax    Duration `yaml:"cancel_delay_max"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	JoinTimeout       Duration `yaml:"join_timeout"`
	PoolSize          int      `yaml:"pool_size"`
	QueueCapacity     int      `yaml:"queue_capacity"`
	Bestsellers       int      `yaml:"bestsellers"`
	Seed              uint64   `yaml:"seed"`
}

// Default returns the reference parameterization: a 50/50 order/reservation
// split, a 50% cancel chance after at most a 1s delay, 5s worker idle
// timeout and a 15s overall join timeout.
func Default() Config {
	return Config{
		MaxProducts:       10,
		MaxQuantity:       20,
		OrderProbability:  0.5,
		CancelProbability: 0.5,
		CancelDelayMax:    Duration(time.Second),
		IdleTimeout:       Duration(5 * time.Second),
		JoinTimeout:       Duration(15 * time.Second),
		QueueCapacity:     0, // unbounded
		Bestsellers:       3,
	}
}

// LoadFile overlays the YAML tuning file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv overlays recognized SIM_* environment variables onto c. Call after
// godotenv has populated the environment.
func (c *Config) LoadEnv() error {
	if raw := os.Getenv("SIM_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SIM_SEED %q: %w", raw, err)
		}
		c.Seed = seed
	}
	if raw := os.Getenv("SIM_POOL_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid SIM_POOL_SIZE %q: %w", raw, err)
		}
		c.PoolSize = size
	}
	return nil
}

// Validate rejects parameter combinations the simulation cannot run with.
// This happens before any producer or worker starts; a malformed startup
// aborts the whole program, while mid-run conflicts never do.
func (c Config) Validate() error {
	if c.Customers <= 0 || c.Workers <= 0 {
		return fmt.Errorf("number of customers and number of workers must be positive integers")
	}
	if c.MaxProducts <= 0 || c.MaxQuantity <= 0 {
		return fmt.Errorf("max number of products and max quantity must be positive integers")
	}
	if c.OrderProbability < 0 || c.OrderProbability > 1 {
		return fmt.Errorf("order probability must be within [0, 1], got %g", c.OrderProbability)
	}
	if c.CancelProbability < 0 || c.CancelProbability > 1 {
		return fmt.Errorf("cancel probability must be within [0, 1], got %g", c.CancelProbability)
	}
	if c.CancelDelayMax < 0 {
		return fmt.Errorf("cancel delay must be non-negative")
	}
	if c.IdleTimeout.Std() <= 0 || c.JoinTimeout.Std() <= 0 {
		return fmt.Errorf("idle and join timeouts must be positive")
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue capacity must be non-negative (0 = unbounded)")
	}
	if c.Bestsellers < 0 {
		return fmt.Errorf("bestseller count must be non-negative")
	}
	return nil
}
