package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"30"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Seed struct {
		EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"example.com"`
		CSVPath     string `env:"CSV_PATH" envDefault:"./internal/seed/data/employees.csv"`
	} `envPrefix:"SEED_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Recommendation struct {
		BaseURL          string `env:"BASE_URL,required"`
		RequestTimeout   int    `env:"REQUEST_TIMEOUT" envDefault:"10"`
		CacheTTL         int    `env:"CACHE_TTL" envDefault:"60"` // 秒
		FailureThreshold uint32 `env:"FAILURE_THRESHOLD" envDefault:"5"`
		BreakerTimeout   int    `env:"BREAKER_TIMEOUT" envDefault:"30"`
	} `envPrefix:"RECOMMENDATION_"`
	Autofill struct {
		BatchSize   int `env:"BATCH_SIZE" envDefault:"5"`
		BatchDelay  int `env:"BATCH_DELAY" envDefault:"0"` // 毫秒
		Concurrency int `env:"CONCURRENCY" envDefault:"8"`
	} `envPrefix:"AUTOFILL_"`
	Scheduler struct {
		PopulationSize int32   `env:"POPULATION_SIZE" envDefault:"50"`
		MaxGenerations int32   `env:"MAX_GENERATIONS" envDefault:"200"`
		CrossoverRate  float64 `env:"CROSSOVER_RATE" envDefault:"0.8"`
		MutationRate   float64 `env:"MUTATION_RATE" envDefault:"0.05"`
		EliteCount     int32   `env:"ELITE_COUNT" envDefault:"2"`
		FairnessWeight float64 `env:"FAIRNESS_WEIGHT" envDefault:"1"`
	} `envPrefix:"SCHEDULER_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
