// Package config loads and saves the server's YAML configuration file
// using Viper, and owns the four persisted moderation lists (ops, banned,
// muted, restricted).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Technochips/chipscraft/internal/level"
)

// Config is the full set of server-level settings: identity, network
// address, the level to boot with, and the paths to the moderation lists.
type Config struct {
	Name    string `mapstructure:"name"`
	MOTD    string `mapstructure:"motd"`
	Rules   string `mapstructure:"rules"`
	Address string `mapstructure:"address"`

	MaxClients int `mapstructure:"max_clients"`

	LevelName     string               `mapstructure:"level_name"`
	LevelSizeX    int16                `mapstructure:"level_size_x"`
	LevelSizeY    int16                `mapstructure:"level_size_y"`
	LevelSizeZ    int16                `mapstructure:"level_size_z"`
	LevelType     level.GenerationType `mapstructure:"-"`
	LevelTypeName string               `mapstructure:"level_type"`
	LevelSeed     int64                `mapstructure:"level_seed"`

	Heartbeat        bool   `mapstructure:"heartbeat"`
	HeartbeatAddress string `mapstructure:"heartbeat_address"`
	Public           bool   `mapstructure:"public"`

	VerifyPlayers bool `mapstructure:"verify_players"`

	OpsFile        string `mapstructure:"ops_file"`
	BannedFile     string `mapstructure:"banned_file"`
	MutedFile      string `mapstructure:"muted_file"`
	RestrictedFile string `mapstructure:"restricted_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "a chipscraft server")
	v.SetDefault("motd", "running chipscraft")
	v.SetDefault("rules", "be nice")
	v.SetDefault("address", ":25565")
	v.SetDefault("max_clients", 32)

	v.SetDefault("level_name", "main")
	v.SetDefault("level_size_x", 256)
	v.SetDefault("level_size_y", 64)
	v.SetDefault("level_size_z", 256)
	v.SetDefault("level_type", "vanilla")
	v.SetDefault("level_seed", 0)

	v.SetDefault("heartbeat", false)
	v.SetDefault("heartbeat_address", "https://www.classicube.net/server/heartbeat")
	v.SetDefault("public", false)

	v.SetDefault("verify_players", true)

	v.SetDefault("ops_file", "ops.yaml")
	v.SetDefault("banned_file", "banned.yaml")
	v.SetDefault("muted_file", "muted.yaml")
	v.SetDefault("restricted_file", "restricted.yaml")
}

// Load reads path (or, if empty, config.yaml in the working directory and
// /etc/chipscraft) through Viper, falling back to defaults for anything
// the file doesn't set, and environment variables prefixed CHIPSCRAFT_.
// A config file that does not exist is not an error: defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/chipscraft")
	}

	setDefaults(v)

	v.SetEnvPrefix("CHIPSCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	genType, err := parseLevelType(v.GetString("level_type"))
	if err != nil {
		return nil, err
	}
	cfg.LevelType = genType
	cfg.LevelTypeName = v.GetString("level_type")

	return &cfg, nil
}

func parseLevelType(name string) (level.GenerationType, error) {
	switch strings.ToLower(name) {
	case "empty":
		return level.Empty, nil
	case "flat":
		return level.Flat, nil
	case "vanilla":
		return level.Vanilla, nil
	default:
		return 0, fmt.Errorf("config: unknown level_type %q", name)
	}
}

// Save writes cfg back to path as YAML, in the form Load reads.
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.Set("name", cfg.Name)
	v.Set("motd", cfg.MOTD)
	v.Set("rules", cfg.Rules)
	v.Set("address", cfg.Address)
	v.Set("max_clients", cfg.MaxClients)
	v.Set("level_name", cfg.LevelName)
	v.Set("level_size_x", cfg.LevelSizeX)
	v.Set("level_size_y", cfg.LevelSizeY)
	v.Set("level_size_z", cfg.LevelSizeZ)
	v.Set("level_type", cfg.LevelTypeName)
	v.Set("level_seed", cfg.LevelSeed)
	v.Set("heartbeat", cfg.Heartbeat)
	v.Set("heartbeat_address", cfg.HeartbeatAddress)
	v.Set("public", cfg.Public)
	v.Set("verify_players", cfg.VerifyPlayers)
	v.Set("ops_file", cfg.OpsFile)
	v.Set("banned_file", cfg.BannedFile)
	v.Set("muted_file", cfg.MutedFile)
	v.Set("restricted_file", cfg.RestrictedFile)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
