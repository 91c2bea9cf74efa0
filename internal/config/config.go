package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers supported by the entity store.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	Currency    string
	DBConfig    DatabaseConfig
	JWTConfig   JWTConfig
	KafkaConfig KafkaConfig
	RedisConfig RedisConfig
	MediaConfig MediaConfig
}

// DatabaseConfig selects and configures the entity store.
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// KafkaConfig configures event publishing. Publishing is off without brokers.
type KafkaConfig struct {
	Brokers       []string
	GroupPrefix   string
	AuditConsumer bool
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// RedisConfig configures the shared booking lock. Without an address the
// service falls back to an in-process lock.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	LockTTL     time.Duration
	LockTimeout time.Duration
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// MediaConfig configures the S3-compatible image store.
type MediaConfig struct {
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	PublicBaseURL string
}

func (m MediaConfig) Enabled() bool { return m.Bucket != "" }

// Load reads configuration from environment variables, after loading a .env
// file when one is present.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:     normalizePort(v.GetString("service.port")),
		AppEnv:   v.GetString("app.env"),
		Currency: strings.ToUpper(v.GetString("rental.currency")),
		DBConfig: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("db.driver")),
			Host:       v.GetString("db.host"),
			Port:       v.GetString("db.port"),
			User:       v.GetString("db.user"),
			Password:   v.GetString("db.password"),
			DBName:     v.GetString("db.name"),
			SSLMode:    v.GetString("db.sslmode"),
			SQLitePath: v.GetString("db.sqlite.path"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
			Issuer: v.GetString("jwt.issuer"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:       splitList(v.GetString("kafka.brokers")),
			GroupPrefix:   v.GetString("kafka.group.prefix"),
			AuditConsumer: v.GetBool("kafka.audit.consumer"),
		},
		RedisConfig: RedisConfig{
			Addr:        v.GetString("redis.addr"),
			Password:    v.GetString("redis.password"),
			DB:          v.GetInt("redis.db"),
			LockTTL:     v.GetDuration("redis.lock.ttl"),
			LockTimeout: v.GetDuration("redis.lock.timeout"),
		},
		MediaConfig: MediaConfig{
			Bucket:        v.GetString("media.bucket"),
			Region:        v.GetString("media.region"),
			AccessKey:     v.GetString("media.access.key"),
			SecretKey:     v.GetString("media.secret.key"),
			Endpoint:      v.GetString("media.endpoint"),
			PublicBaseURL: v.GetString("media.public.url"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("rental.currency", "USD")

	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "rental_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.sqlite.path", "rental.db")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "service-rental")

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.group.prefix", "rental-")
	v.SetDefault("kafka.audit.consumer", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock.ttl", 10*time.Second)
	v.SetDefault("redis.lock.timeout", 5*time.Second)

	v.SetDefault("media.bucket", "")
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.access.key", "")
	v.SetDefault("media.secret.key", "")
	v.SetDefault("media.endpoint", "")
	v.SetDefault("media.public.url", "")
}

func (c *ServiceConfig) validate() error {
	if c.JWTConfig.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DBConfig.Driver != DriverPostgres && c.DBConfig.Driver != DriverSQLite {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBConfig.Driver)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("RENTAL_CURRENCY must be a 3-letter code, got %q", c.Currency)
	}
	if c.MediaConfig.Enabled() && c.MediaConfig.PublicBaseURL == "" {
		return fmt.Errorf("MEDIA_PUBLIC_URL is required when MEDIA_BUCKET is set")
	}
	return nil
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
