package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPPort string
	Storage  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	GoogleMapsAPIKey     string
	GoogleMapsBaseURL    string
	GoogleMapsComponents string
	GoogleMapsRPS        float64
	OptimizerTimeout     time.Duration

	RedisURL string

	KafkaHost              string
	KafkaOrderChangedTopic string

	MQTTBroker        string
	MQTTClientID      string
	MQTTPositionTopic string
	PositionMaxAge    time.Duration

	TickInterval time.Duration

	DepotLat     float64
	DepotLng     float64
	DepotAddress string

	ServiceAreaLat      float64
	ServiceAreaLng      float64
	ServiceAreaRadiusKm float64
	ServiceAreaLocality string

	SeedFile string
}

// DSN is the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// ConfigFromEnv reads the configuration through getenv, usually os.Getenv
// after the .env file was loaded. Unset keys take their defaults.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	r := envReader{getenv: getenv}

	cfg := Config{
		HTTPPort: r.str("HTTP_PORT", "8080"),
		Storage:  strings.ToLower(r.str("STORAGE", StorageMemory)),

		DBHost:     r.str("DB_HOST", "localhost"),
		DBPort:     r.str("DB_PORT", "5432"),
		DBUser:     r.str("DB_USER", "postgres"),
		DBPassword: r.str("DB_PASSWORD", ""),
		DBName:     r.str("DB_NAME", "lastmile"),
		DBSslMode:  r.str("DB_SSLMODE", "disable"),

		GoogleMapsAPIKey:     r.str("GOOGLE_MAPS_API_KEY", ""),
		GoogleMapsBaseURL:    r.str("GOOGLE_MAPS_BASE_URL", ""),
		GoogleMapsComponents: r.str("GOOGLE_MAPS_COMPONENTS", ""),
		GoogleMapsRPS:        r.float("GOOGLE_MAPS_RPS", 10),
		OptimizerTimeout:     r.duration("OPTIMIZER_TIMEOUT", 5*time.Second),

		RedisURL: r.str("REDIS_URL", ""),

		KafkaHost:              r.str("KAFKA_HOST", ""),
		KafkaOrderChangedTopic: r.str("KAFKA_ORDER_CHANGED_TOPIC", "lastmile.order.changed"),

		MQTTBroker:        r.str("MQTT_BROKER", ""),
		MQTTClientID:      r.str("MQTT_CLIENT_ID", "lastmile-dispatch"),
		MQTTPositionTopic: r.str("MQTT_POSITION_TOPIC", ""),
		PositionMaxAge:    r.duration("POSITION_MAX_AGE", 2*time.Minute),

		TickInterval: r.duration("TICK_INTERVAL", 2*time.Second),

		DepotLat:     r.float("DEPOT_LAT", 36.1408),
		DepotLng:     r.float("DEPOT_LNG", -5.4471),
		DepotAddress: r.str("DEPOT_ADDRESS", "P.º Victoria Eugenia, 17, Algeciras, Cádiz"),

		ServiceAreaLocality: r.str("SERVICE_AREA_LOCALITY", ""),
		ServiceAreaRadiusKm: r.float("SERVICE_AREA_RADIUS_KM", 0),

		SeedFile: r.str("SEED_FILE", ""),
	}
	cfg.ServiceAreaLat = r.float("SERVICE_AREA_LAT", cfg.DepotLat)
	cfg.ServiceAreaLng = r.float("SERVICE_AREA_LNG", cfg.DepotLng)

	if cfg.Storage != StorageMemory && cfg.Storage != StoragePostgres {
		r.errs = append(r.errs, fmt.Errorf("STORAGE: unknown storage %q", cfg.Storage))
	}
	if cfg.TickInterval <= 0 {
		r.errs = append(r.errs, errors.New("TICK_INTERVAL: must be positive"))
	}

	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) float(key string, def float64) float64 {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}
