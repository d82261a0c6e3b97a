package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env string `env:"ENV" env-default:"local"`
	// DatabaseURL — строка подключения к Postgres; пусто — работа без сохранения
	DatabaseURL string `env:"DATABASE_URL"`
	// MigrateOnStart — применять миграции при запуске
	MigrateOnStart bool          `env:"MIGRATE_ON_START" env-default:"false"`
	HTTP           HTTPConfig
	TokenTTL       time.Duration `env:"TOKEN_TTL" env-default:"1h"`
	Secret         string        `env:"SECRET" env-default:""`
	DisableAuth    bool          `env:"DISABLE_AUTH" env-default:"true"`
	Minio          MinioConfig
	Ingestion      IngestionConfig
	Valuation      ValuationConfig
	RateLimit      RateLimitConfig
}

type HTTPConfig struct {
	Port         int           `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	// AllowedOrigins — список origin для CORS через запятую
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	// MaxBodyBytes — ограничение размера тела запроса
	MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" env-default:"10485760"`
}

type MinioConfig struct {
	Enabled           bool   `env:"MINIO_ENABLE" env-default:"false"`
	Port              int    `env:"MINIO_PORT" env-default:"9000"`
	MinioEndpoint     string `env:"MINIO_ENDPOINT"`
	BucketName        string `env:"MINIO_BUCKET" env-default:"propintel"`
	MinioRootUser     string `env:"MINIO_USER"`
	MinioRootPassword string `env:"MINIO_PASSWORD"`
	MinioUseSSL       bool   `env:"MINIO_USE_SSL"`
}

// IngestionConfig — конфигурация приёма батчей сделок.
type IngestionConfig struct {
	// MaxBatchSize — максимальное число строк в одном батче (0 — без ограничения)
	MaxBatchSize int `env:"INGESTION_MAX_BATCH_SIZE" env-default:"5000"`
	// CrossRunDedupe — отсеивать записи, уже принятые прошлыми прогонами (нужна БД)
	CrossRunDedupe bool `env:"INGESTION_CROSS_RUN_DEDUPE" env-default:"false"`
	// ArchiveRawBatches — сохранять исходный батч в MinIO
	ArchiveRawBatches bool `env:"INGESTION_ARCHIVE_RAW" env-default:"false"`
}

// ValuationConfig — конфигурация подбора аналогов.
type ValuationConfig struct {
	// DefaultTopK — сколько аналогов брать, если клиент не указал
	DefaultTopK int `env:"VALUATION_DEFAULT_TOP_K" env-default:"10"`
	// MaxPoolSize — максимальный размер пула аналогов в запросе
	MaxPoolSize int `env:"VALUATION_MAX_POOL_SIZE" env-default:"1000"`
	// DefaultPreset — пресет весов схожести по умолчанию
	DefaultPreset string `env:"VALUATION_DEFAULT_PRESET" env-default:"default"`
}

// RateLimitConfig — ограничение частоты запросов к API.
type RateLimitConfig struct {
	Enabled           bool    `env:"RATE_LIMIT_ENABLE" env-default:"true"`
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" env-default:"50"`
	Burst             int     `env:"RATE_LIMIT_BURST" env-default:"100"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from environment: " + err.Error())
	}
	return &cfg
}
