// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Payments                `yaml:"payments"`
	SMTP                    `yaml:"smtp"`
	RabbitMQ                `yaml:"rabbitmq"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном и refresh-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
	RefreshTTL   time.Duration `yaml:"refresh_ttl" env-default:"720h"`
}

// Payments структура с бизнес-параметрами оплаты: стартовый депозит,
// срок аренды курса и окно поиска истекающих аренд для уведомлений.
type Payments struct {
	DepositAmount   float64       `yaml:"deposit_amount" env:"CLIENT_MONEY" env-default:"100"`
	RentalPeriod    time.Duration `yaml:"rental_period" env-default:"168h"`
	ExpiryLookahead time.Duration `yaml:"expiry_lookahead" env-default:"24h"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
	ScanInterval       time.Duration `yaml:"scan_interval" env-default:"12h"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
