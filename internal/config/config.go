package config

import (
	"fmt"
	"time"

	"file-storage-service/internal/AWS"
	"file-storage-service/internal/MinIO"
	"file-storage-service/pkg/database/postgres"
	"file-storage-service/pkg/database/redis"

	"github.com/ilyakaznacheev/cleanenv"
)

const DefaultPath = "config/local.env"

const (
	DriverPostgres = "postgres"
	DriverMinIO    = "minio"
	DriverS3       = "s3"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" env-default:"8080"`
	GRPCHealthPort  string        `env:"GRPC_HEALTH_PORT" env-default:"50051"`
	JWTSecret       string        `env:"JWT_TOKEN" env-required:"true"`
	TokenTTL        time.Duration `env:"JWT_TTL" env-default:"3h"`
	MaxUploadSize   int64         `env:"MAX_UPLOAD_SIZE" env-default:"104857600"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL" env-default:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	MetadataDriver    string `env:"METADATA_DRIVER" env-default:"postgres"`
	ObjectStoreDriver string `env:"OBJECT_STORE_DRIVER" env-default:"minio"`

	Postgres postgres.Config
	Redis    redis.Config
	MinIO    MinIO.Config
	S3       AWS.Config
}

// New reads config/local.env relative to the working directory.
func New() (*Config, error) {
	return Load(DefaultPath)
}

// Load reads the env file at path. Its variables are exported to the process
// environment before the struct is filled.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	return &cfg, cfg.Validate()
}

// LoadEnv reads the configuration from the process environment only.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}
	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.MetadataDriver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown METADATA_DRIVER %q", c.MetadataDriver)
	}
	switch c.ObjectStoreDriver {
	case DriverMinIO, DriverS3, DriverMemory:
	default:
		return fmt.Errorf("unknown OBJECT_STORE_DRIVER %q", c.ObjectStoreDriver)
	}
	if c.HealthInterval <= 0 {
		return fmt.Errorf("HEALTH_INTERVAL must be positive")
	}
	return nil
}
