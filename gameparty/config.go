package gameparty

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig         `toml:"log"`
	Server ServerConfig      `toml:"server"`
	DB     database.DBConfig `toml:"db"`
	Spaces struct {
		Key     string `toml:"key"`
		Secret  string `toml:"secret"`
		Region  string `toml:"region"`
		Bucket  string `toml:"bucket"`
		KeyRoot string `toml:"keyroot"`
	} `toml:"spaces"`
	Legacy LegacyConfig `toml:"legacy"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AdminToken     string   `toml:"admin_token"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      int      `toml:"rate_limit"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

// LegacyConfig points at the old Mongo deployment for one-shot imports.
type LegacyConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}
