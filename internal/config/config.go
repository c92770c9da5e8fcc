package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/jumppath/internal/pathfinding"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "JUMPPATH_CONFIG"

// Pathfinder holds all configuration for the pathfinding daemon.
type Pathfinder struct {
	LogLevel string `yaml:"log_level"`

	// Scheduler
	Workers             int           `yaml:"workers"`
	QueueSize           int           `yaml:"queue_size"`
	Filtered            bool          `yaml:"filtered"`
	ResultFlushInterval time.Duration `yaml:"result_flush_interval"`

	Grid      GridConfig      `yaml:"grid"`
	Character CharacterConfig `yaml:"character"`
	Level     LevelConfig     `yaml:"level"`
	Listen    ListenConfig    `yaml:"listen"`
	Database  DatabaseConfig  `yaml:"database"`
}

// GridConfig is the size of one grid cell in world units.
type GridConfig struct {
	StepX int `yaml:"step_x"`
	StepY int `yaml:"step_y"`
}

// CharacterConfig is the default character used when a request carries none.
type CharacterConfig struct {
	MaxJumpHeight int  `yaml:"max_jump_height"`
	AirStride     int  `yaml:"air_stride"`
	Width         int  `yaml:"width"`
	Height        int  `yaml:"height"`
	LedgeHang     bool `yaml:"ledge_hang"`
}

// Settings converts the character to normalized search settings.
func (c CharacterConfig) Settings() pathfinding.Settings {
	return pathfinding.Settings{
		MaxJumpHeight: c.MaxJumpHeight,
		AirStride:     c.AirStride,
		Width:         c.Width,
		Height:        c.Height,
		LedgeHang:     c.LedgeHang,
	}.Normalize()
}

// LevelConfig points at a Tiled map used when no grid is stored in the database.
type LevelConfig struct {
	Path                  string `yaml:"path"`
	CollisionLayer        string `yaml:"collision_layer"`
	UntraversableProperty string `yaml:"untraversable_property"`
}

// ListenConfig is the websocket listener.
type ListenConfig struct {
	Address string `yaml:"address"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	GridName string `yaml:"grid_name"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultPathfinder returns Pathfinder config with sensible defaults.
func DefaultPathfinder() Pathfinder {
	return Pathfinder{
		LogLevel:            "info",
		Workers:             4,
		QueueSize:           256,
		Filtered:            true,
		ResultFlushInterval: 16 * time.Millisecond,
		Grid: GridConfig{
			StepX: 16,
			StepY: 16,
		},
		Character: CharacterConfig{
			MaxJumpHeight: 0,
			AirStride:     1,
			Width:         1,
			Height:        1,
		},
		Level: LevelConfig{
			CollisionLayer:        "collision",
			UntraversableProperty: "untraversable",
		},
		Listen: ListenConfig{
			Address: "127.0.0.1:7070",
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "jumppath",
			Password: "jumppath",
			DBName:   "jumppath",
			SSLMode:  "disable",
			GridName: "default",
		},
	}
}

// LoadPathfinder loads daemon config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadPathfinder(path string) (Pathfinder, error) {
	cfg := DefaultPathfinder()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.ResultFlushInterval <= 0 {
		cfg.ResultFlushInterval = DefaultPathfinder().ResultFlushInterval
	}

	return cfg, nil
}

// SlogLevel parses LogLevel. Unknown values fall back to info.
func (p Pathfinder) SlogLevel() slog.Level {
	switch strings.ToLower(p.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
