// Package config предоставляет структуры и функции для загрузки конфигурации сервиса.
// Значения читаются из YAML-файла (путь в CONFIG_PATH) и могут быть переопределены
// переменными окружения.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// MinSecretKeyLength минимальная длина ключа подписи токенов в байтах.
const MinSecretKeyLength = 32

// ErrWeakSecretKey ключ подписи короче MinSecretKeyLength.
var ErrWeakSecretKey = errors.New("jwt_secret_key must be at least 32 bytes")

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	PasswordHashing         `yaml:"password"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	GRPCIdentity            `yaml:"grpc_identity"`
	RateLimit               `yaml:"rate_limit"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken настройки выпуска токенов. Смена ключа делает недействительными все выданные токены.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"1h"`
}

// PasswordHashing настройки bcrypt.
type PasswordHashing struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis. Пустой адрес отключает кэш.
type RedisConnection struct {
	AddressRedis  string        `yaml:"address" env:"REDIS_ADDRESS"`
	RedisPassword string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser     string        `yaml:"user"`
	RedisDB       int           `yaml:"db"`
	MaxRetries    int           `yaml:"max_retries" env-default:"3"`
	DialTimeout   time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis  time.Duration `yaml:"timeout" env-default:"3s"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env-default:"1m"`
}

// RabbitMQ настройки публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitURL  string        `yaml:"url" env:"RABBITMQ_URL"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// GRPCIdentity адрес собственного gRPC-сервиса идентификации и, опционально,
// адрес удалённого сервиса, которому HTTP-слой делегирует проверку токенов.
type GRPCIdentity struct {
	AddressGRPC   string `yaml:"address" env:"GRPC_ADDRESS" env-default:":50051"`
	RemoteAddress string `yaml:"remote_address" env:"GRPC_REMOTE_ADDRESS"`
}

// RateLimit ограничение частоты запросов к /api/auth на одного клиента.
// TrustProxy включает определение адреса клиента по X-Forwarded-For и
// X-Real-IP; включать только за доверенным обратным прокси.
type RateLimit struct {
	RPS        float64 `yaml:"rps" env-default:"5"`
	Burst      int     `yaml:"burst" env-default:"10"`
	TrustProxy bool    `yaml:"trust_proxy" env:"RATE_LIMIT_TRUST_PROXY" env-default:"false"`
}

// SMTP почтовый сервер для приветственных писем. Нужен только notifier.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
}

// MustLoad загружает конфиг из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает и проверяет конфиг по указанному пути.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет значения, которые нельзя выразить тегами.
func (c *Config) Validate() error {
	if len(c.JWTSecretKey) < MinSecretKeyLength {
		return ErrWeakSecretKey
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Password:\n"+
			"  BcryptCost: %d\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  CacheTTL: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"GRPCIdentity:\n"+
			"  Address: %s\n"+
			"  RemoteAddress: %s\n"+
			"RateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n"+
			"  TrustProxy: %t\n"+
			"SMTP:\n"+
			"  Host: %s\n"+
			"  User: %s\n"+
			"  Password: %s\n",
		c.Env,
		redact(c.StorageConnectionString),
		c.MigrationsPath,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		redact(c.JWTSecretKey),
		c.TokenTTL,
		c.BcryptCost,
		c.AddressRedis,
		redact(c.RedisPassword),
		c.CacheTTL,
		redact(c.RabbitURL),
		c.AddressGRPC,
		c.RemoteAddress,
		c.RPS,
		c.Burst,
		c.TrustProxy,
		c.SMTPHost,
		c.SMTPUser,
		redact(c.SMTPPass),
	)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}
