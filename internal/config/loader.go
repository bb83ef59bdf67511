package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store driver names accepted by BREAKOUT_STORE_DRIVER.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// DefaultRoomNames is the fixed room set given to new events when
// BREAKOUT_ROOM_NAMES is not configured.
var DefaultRoomNames = []string{"Room 1", "Room 2", "Room 3"}

// Config captures environment driven configuration values for the breakout
// rooms service.
type Config struct {
	HTTPPort      int
	StoreDriver   string
	SQLiteDSN     string
	MongoURI      string
	MongoDatabase string
	RoomNames     []string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults; missing and invalid values
// are accumulated and reported together so a broken deployment fails with one
// complete message.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		StoreDriver:   DriverMemory,
		SQLiteDSN:     "file:breakout.db",
		MongoDatabase: "breakout",
		RoomNames:     append([]string(nil), DefaultRoomNames...),
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BREAKOUT_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BREAKOUT_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := strings.TrimSpace(os.Getenv("BREAKOUT_STORE_DRIVER")); driver != "" {
		switch driver {
		case DriverMemory, DriverSQLite, DriverMongo:
			cfg.StoreDriver = driver
		default:
			invalid = append(invalid, "BREAKOUT_STORE_DRIVER")
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BREAKOUT_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if uri := strings.TrimSpace(os.Getenv("BREAKOUT_MONGO_URI")); uri != "" {
		cfg.MongoURI = uri
	} else if cfg.StoreDriver == DriverMongo {
		missing = append(missing, "BREAKOUT_MONGO_URI")
	}

	if db := strings.TrimSpace(os.Getenv("BREAKOUT_MONGO_DATABASE")); db != "" {
		cfg.MongoDatabase = db
	}

	if namesValue := strings.TrimSpace(os.Getenv("BREAKOUT_ROOM_NAMES")); namesValue != "" {
		names := make([]string, 0, 4)
		for _, name := range strings.Split(namesValue, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				names = append(names, trimmed)
			}
		}
		if len(names) == 0 {
			invalid = append(invalid, "BREAKOUT_ROOM_NAMES")
		} else {
			cfg.RoomNames = names
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
