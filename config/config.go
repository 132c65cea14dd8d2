package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Gamify   GamifyConfig   `mapstructure:"gamify"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type SecurityConfig struct {
	// JWTSecret is shared with the identity service that issues tokens;
	// this server only validates them.
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`

	// AdminIPs restricts /api/admin routes; entries are single IPs or
	// CIDR ranges. Empty means unrestricted; the server warns about
	// that at startup.
	AdminIPs []string `mapstructure:"admin_ips"`
}

type GamifyConfig struct {
	MinXP              int     `mapstructure:"min_xp"`
	MaxXP              int     `mapstructure:"max_xp"`
	MysteryChance      float64 `mapstructure:"mystery_chance"`
	PowerHourMult      float64 `mapstructure:"power_hour_mult"`
	LowEnergyMult      float64 `mapstructure:"low_energy_mult"`
	LowEnergyThreshold int     `mapstructure:"low_energy_threshold"`
	CheckInBaseXP      int     `mapstructure:"checkin_base_xp"`
	MicroStepBaseXP    int     `mapstructure:"microstep_base_xp"`
	StreakSweepMinutes int     `mapstructure:"streak_sweep_minutes"`
	LeaderboardSize    int     `mapstructure:"leaderboard_size"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/momentum.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("gamify.min_xp", 1)
	v.SetDefault("gamify.max_xp", 1000)
	v.SetDefault("gamify.mystery_chance", 0.15)
	v.SetDefault("gamify.power_hour_mult", 2.0)
	v.SetDefault("gamify.low_energy_mult", 1.5)
	v.SetDefault("gamify.low_energy_threshold", 30)
	v.SetDefault("gamify.checkin_base_xp", 10)
	v.SetDefault("gamify.microstep_base_xp", 5)
	v.SetDefault("gamify.streak_sweep_minutes", 60)
	v.SetDefault("gamify.leaderboard_size", 100)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
