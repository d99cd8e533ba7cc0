package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "horde.cfg.json"

// MemoryConfig holds in-memory storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings.
// An empty Path keeps the database in memory and relies on periodic dumps.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// RedisConfig holds Redis storage backend settings
type RedisConfig struct {
	Address       string `json:"address" mapstructure:"address"`
	Password      string `json:"password" mapstructure:"password"`
	DB            int    `json:"db" mapstructure:"db"`
	KeyPrefix     string `json:"keyPrefix" mapstructure:"keyPrefix"`
	BattleHistory int64  `json:"battleHistory" mapstructure:"battleHistory"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// DSN returns the Postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type          string        `json:"type" mapstructure:"type"` // memory, sqlite, postgres, redis
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
	Memory        MemoryConfig  `json:"memory" mapstructure:"memory"`
	SQLite        SQLiteConfig  `json:"sqlite" mapstructure:"sqlite"`
	Redis         RedisConfig   `json:"redis" mapstructure:"redis"`
	DB            DBConfig      `json:"db" mapstructure:"db"`
}

// InfluxConfig holds InfluxDB battle metrics settings
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// URL returns the InfluxDB server address.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// NatsConfig holds NATS notification settings
type NatsConfig struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
}

// OTelConfig holds OpenTelemetry metrics settings
type OTelConfig struct {
	Enabled     bool
	ServiceName string
	MetricsFile string
	Interval    time.Duration
}

// GraylogConfig holds the GELF log sink settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// GameConfig holds game rule switches
type GameConfig struct {
	AtomicBattles bool
}

// MonitorConfig holds the status monitor settings
type MonitorConfig struct {
	Enabled    bool
	Interval   time.Duration
	StatusFile string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; callers that run
// without a config file can call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./hordelogs")
	viper.SetDefault("output.format", "yaml")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("game.atomicBattles", true)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.flushInterval", "2s")
	viper.SetDefault("storage.memory.outputDir", "./snapshots")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./horde.db")
	viper.SetDefault("storage.redis.address", "localhost:6379")
	viper.SetDefault("storage.redis.password", "")
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.keyPrefix", "horde")
	viper.SetDefault("storage.redis.battleHistory", 100)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "horde")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "horde-metrics")
	viper.SetDefault("influx.bucket", "battles")
	viper.SetDefault("influx.backupPath", "./influx_backup.lp.gz")

	viper.SetDefault("nats.enabled", false)
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.subjectPrefix", "horde")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "horde")
	viper.SetDefault("otel.metricsFile", "")
	viper.SetDefault("otel.interval", "30s")

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "10s")
	viper.SetDefault("monitor.statusFile", "")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:          viper.GetString("storage.type"),
		FlushInterval: viper.GetDuration("storage.flushInterval"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
		Redis: RedisConfig{
			Address:       viper.GetString("storage.redis.address"),
			Password:      viper.GetString("storage.redis.password"),
			DB:            viper.GetInt("storage.redis.db"),
			KeyPrefix:     viper.GetString("storage.redis.keyPrefix"),
			BattleHistory: viper.GetInt64("storage.redis.battleHistory"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetNatsConfig returns the NATS configuration.
func GetNatsConfig() NatsConfig {
	return NatsConfig{
		Enabled:       viper.GetBool("nats.enabled"),
		URL:           viper.GetString("nats.url"),
		SubjectPrefix: viper.GetString("nats.subjectPrefix"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:     viper.GetBool("otel.enabled"),
		ServiceName: viper.GetString("otel.serviceName"),
		MetricsFile: viper.GetString("otel.metricsFile"),
		Interval:    viper.GetDuration("otel.interval"),
	}
}

// GetGraylogConfig returns the GELF sink configuration.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetGameConfig returns the game rule configuration.
func GetGameConfig() GameConfig {
	return GameConfig{
		AtomicBattles: viper.GetBool("game.atomicBattles"),
	}
}

// GetMonitorConfig returns the status monitor configuration.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:    viper.GetBool("monitor.enabled"),
		Interval:   viper.GetDuration("monitor.interval"),
		StatusFile: viper.GetString("monitor.statusFile"),
	}
}
