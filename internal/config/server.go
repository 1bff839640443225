package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type RoomConfig struct {
	ID       string `mapstructure:"id" validate:"required"`
	Name     string `mapstructure:"name"`
	Capacity int    `mapstructure:"capacity" validate:"gt=0"`
}

type ServerConfig struct {
	Mode       string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port       int           `mapstructure:"port" validate:"min=1,max=65535"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit" validate:"gt=0"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	WriteWait  time.Duration `mapstructure:"write_wait" validate:"gt=0"`
	SendBuffer int           `mapstructure:"send_buffer" validate:"gt=0"`
	Rooms      []RoomConfig  `mapstructure:"rooms" validate:"dive"`
}

var serverFlags = map[string]string{
	"port":      "port",
	"mode":      "mode",
	"log_level": "log-level",
}

// LoadServer reads the server configuration. Flags registered under the
// names in serverFlags override file and environment values.
func LoadServer(file string, flags *pflag.FlagSet) (*ServerConfig, error) {
	v, err := newViper(file, flags, serverFlags)
	if err != nil {
		return nil, err
	}

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8000)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 256)

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	return &cfg, nil
}

// ParseRoomSpec parses "id:capacity" or "id:name:capacity".
func ParseRoomSpec(spec string) (RoomConfig, error) {
	parts := strings.Split(spec, ":")
	var rc RoomConfig
	switch len(parts) {
	case 2:
		rc.ID = parts[0]
	case 3:
		rc.ID, rc.Name = parts[0], parts[1]
	default:
		return rc, fmt.Errorf("room %q: want id:capacity or id:name:capacity", spec)
	}
	capacity, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return rc, fmt.Errorf("room %q: capacity: %w", spec, err)
	}
	rc.Capacity = capacity
	if err := validate.Struct(&rc); err != nil {
		return rc, fmt.Errorf("room %q: %w", spec, err)
	}
	return rc, nil
}
