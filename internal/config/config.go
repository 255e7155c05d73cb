package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type PriceSource struct {
	Name string
	URL  string
	Key  string
}

type Oracle struct {
	Primary          *PriceSource
	Secondaries      []PriceSource
	KeyHeader        string
	Fallback         float64
	Interval         time.Duration
	PrimaryTimeout   time.Duration
	SecondaryTimeout time.Duration
	PublishTimeout   time.Duration
	// Breaker guards each price source. It is separate from the product
	// event breaker because its open timeout must stay below Interval.
	Breaker Breaker
}

type Kafka struct {
	Brokers      []string
	ProductTopic string
	PriceTopic   string
	Group        string
	Workers      int
	Partitions   int
	Replication  int
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Postgres struct {
	Host     string
	Port     string
	DB       string
	User     string
	Password string
	SSLMode  string
	Schema   string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type Breaker struct {
	Threshold   int
	OpenTimeout time.Duration
	MaxHalfOpen int
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Config struct {
	HTTPAddr string
	CacheCap int
	CacheTTL time.Duration
	LogLevel string

	Pg      Postgres
	Redis   Redis
	Kafka   Kafka
	Oracle  Oracle
	Breaker Breaker
	Retry   Retry
}

// Load keeps the original API and fatals on error for simplicity in main().
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		HTTPAddr: envDefault("HTTP_ADDR", ":8081"),
		CacheCap: envInt("CACHE_CAP", 1000),
		CacheTTL: envDurationMS("CACHE_TTL", 5*time.Minute),
		LogLevel: envDefault("LOG_LEVEL", "info"),

		Pg: Postgres{
			Host:     strings.TrimSpace(os.Getenv("PG_HOST")),
			Port:     strings.TrimSpace(envDefault("PG_PORT", "5432")),
			DB:       strings.TrimSpace(os.Getenv("PG_DB")),
			User:     strings.TrimSpace(os.Getenv("PG_USER")),
			Password: strings.TrimSpace(os.Getenv("PG_PASSWORD")),
			SSLMode:  strings.TrimSpace(envDefault("PG_SSLMODE", "disable")),
			Schema:   strings.TrimSpace(envDefault("DB_SCHEMA", "public")),
		},

		Redis: Redis{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
			DB:       envInt("REDIS_DB", 0),
			Key:      envDefault("REDIS_PRICE_KEY", "gold:price"),
			TTL:      envDurationMS("REDIS_PRICE_TTL", 24*time.Hour),
		},

		Kafka: Kafka{
			Brokers:      splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			ProductTopic: envDefault("KAFKA_PRODUCT_TOPIC", "products"),
			PriceTopic:   envDefault("KAFKA_PRICE_TOPIC", "gold-price"),
			Group:        envDefault("KAFKA_GROUP", "jewelry-pricing"),
			Workers:      envInt("KAFKA_WORKERS", 4),
			Partitions:   envInt("KAFKA_PARTITIONS", 1),
			Replication:  envInt("KAFKA_REPLICATION", 1),
		},

		Oracle: Oracle{
			Primary:          primarySource(),
			Secondaries:      secondarySources(),
			KeyHeader:        envDefault("PRICE_KEY_HEADER", "x-access-token"),
			Fallback:         envFloat64("PRICE_FALLBACK", 2000),
			Interval:         envDurationMS("PRICE_REFRESH_INTERVAL", 10*time.Minute),
			PrimaryTimeout:   envDurationMS("PRICE_PRIMARY_TIMEOUT", 10*time.Second),
			SecondaryTimeout: envDurationMS("PRICE_SECONDARY_TIMEOUT", 5*time.Second),
			PublishTimeout:   envDurationMS("PRICE_PUBLISH_TIMEOUT", 3*time.Second),
			Breaker: Breaker{
				Threshold:   envInt("PRICE_BREAKER_THRESHOLD", 3),
				OpenTimeout: envDurationMS("PRICE_BREAKER_OPENTIMEOUT", 0),
				MaxHalfOpen: envInt("PRICE_BREAKER_MAXHALFOPEN", 1),
			},
		},

		Breaker: Breaker{
			Threshold:   envInt("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 30*time.Minute),
			MaxHalfOpen: envInt("BREAKER_MAXHALFOPEN", 1),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 5),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 5*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.adjust()
	return cfg, nil
}

func primarySource() *PriceSource {
	u := strings.TrimSpace(os.Getenv("PRICE_PRIMARY_URL"))
	if u == "" {
		return nil
	}
	return &PriceSource{
		Name: "primary",
		URL:  u,
		Key:  strings.TrimSpace(os.Getenv("PRICE_PRIMARY_KEY")),
	}
}

// secondarySources pairs PRICE_SECONDARY_URLS with PRICE_SECONDARY_KEYS by
// position in the raw lists, so a blank URL entry also consumes its key. A
// missing key means the source needs no credential.
func secondarySources() []PriceSource {
	raw := os.Getenv("PRICE_SECONDARY_URLS")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	urls := strings.Split(raw, ",")
	keys := strings.Split(os.Getenv("PRICE_SECONDARY_KEYS"), ",")

	out := make([]PriceSource, 0, len(urls))
	for i, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		src := PriceSource{Name: "secondary-" + strconv.Itoa(len(out)+1), URL: u}
		if i < len(keys) {
			src.Key = strings.TrimSpace(keys[i])
		}
		out = append(out, src)
	}
	return out
}

func (c Config) validate() error {
	var missing []string
	req := map[string]string{
		"PG_HOST":     c.Pg.Host,
		"PG_DB":       c.Pg.DB,
		"PG_USER":     c.Pg.User,
		"PG_PASSWORD": c.Pg.Password,
	}
	for k, v := range req {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &missingEnvError{Keys: missing}
	}
	return nil
}

func (c *Config) adjust() {
	if c.CacheCap <= 0 {
		log.Printf("CACHE_CAP is %d, adjusting to 1", c.CacheCap)
		c.CacheCap = 1
	}
	if c.CacheTTL <= 0 {
		log.Printf("CACHE_TTL is %v, adjusting to 5m", c.CacheTTL)
		c.CacheTTL = 5 * time.Minute
	}
	if c.Oracle.Fallback <= 0 {
		log.Printf("PRICE_FALLBACK is %v, adjusting to 2000", c.Oracle.Fallback)
		c.Oracle.Fallback = 2000
	}
	if c.Oracle.Interval <= 0 {
		log.Printf("PRICE_REFRESH_INTERVAL is %v, adjusting to 10m", c.Oracle.Interval)
		c.Oracle.Interval = 10 * time.Minute
	}
	if c.Oracle.PrimaryTimeout <= 0 {
		log.Printf("PRICE_PRIMARY_TIMEOUT is %v, adjusting to 10s", c.Oracle.PrimaryTimeout)
		c.Oracle.PrimaryTimeout = 10 * time.Second
	}
	if c.Oracle.SecondaryTimeout <= 0 {
		log.Printf("PRICE_SECONDARY_TIMEOUT is %v, adjusting to 5s", c.Oracle.SecondaryTimeout)
		c.Oracle.SecondaryTimeout = 5 * time.Second
	}
	if c.Oracle.PublishTimeout <= 0 {
		log.Printf("PRICE_PUBLISH_TIMEOUT is %v, adjusting to 3s", c.Oracle.PublishTimeout)
		c.Oracle.PublishTimeout = 3 * time.Second
	}
	if limit := c.Oracle.Interval / 2; c.Oracle.Breaker.OpenTimeout <= 0 || c.Oracle.Breaker.OpenTimeout > limit {
		c.Oracle.Breaker.OpenTimeout = limit
	}
	if c.Oracle.Breaker.Threshold < 1 {
		log.Printf("PRICE_BREAKER_THRESHOLD is %d, adjusting to 3", c.Oracle.Breaker.Threshold)
		c.Oracle.Breaker.Threshold = 3
	}
	if c.Retry.Attempts < 0 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 0", c.Retry.Attempts)
		c.Retry.Attempts = 0
	}
	if c.Retry.Base <= 0 {
		log.Printf("RETRY_BASE is %v, adjusting to 100ms", c.Retry.Base)
		c.Retry.Base = 100 * time.Millisecond
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
	if c.Kafka.Workers < 1 {
		c.Kafka.Workers = 1
	}
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

// DSN builds a proper Postgres URL, safely escaping user/pass and query.
func (c Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m").
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
