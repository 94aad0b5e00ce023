package shared

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"prod"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	StoreDriver  string        `envconfig:"STORE_DRIVER" default:"mysql"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	MySQLDSN     string        `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/elitestay?parseTime=true&charset=utf8mb4,utf8&loc=UTC"`
	MongoURI     string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB      string        `envconfig:"MONGO_DB" default:"elitestay"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass string `envconfig:"REDIS_PASSWORD"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	PlacesBase string `envconfig:"PLACES_BASE_URL" default:"https://maps.googleapis.com/maps/api"`
	PlacesKey  string `envconfig:"PLACES_API_KEY"`
	PlacesRPS  int    `envconfig:"PLACES_RPS" default:"5"`

	CacheTTLSeconds int           `envconfig:"CACHE_TTL_SECONDS" default:"900"`
	JWTSecret       string        `envconfig:"JWT_SECRET"`
	JWTTTL          time.Duration `envconfig:"JWT_TTL" default:"24h"`
	SessionIdle     time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"2m"`

	AMQPURL     string   `envconfig:"AMQP_URL"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	SeedWorkers   int    `envconfig:"SEED_WORKERS" default:"8"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations/mysql"`
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file, using process environment")
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		log.Fatal().Err(err).Msg("invalid environment configuration")
	}
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))

	if c.PlacesKey == "" {
		log.Warn().Msg("PLACES_API_KEY is empty")
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty")
	}
	return c
}
