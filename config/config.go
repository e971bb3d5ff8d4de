package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default configuration values
const (
	DefaultAPIBase      = "http://localhost:8000"
	DefaultRefreshDelay = 1000 * time.Millisecond
	DefaultViewerLog    = "logs/viewer.log"

	DefaultPort           = "8000"
	DefaultAllowedOrigins = "*"
	DefaultDataLimit      = 5

	DefaultFetchLimit    = 100
	DefaultTopN          = 5
	DefaultOutputPath    = "data/data.json"
	DefaultActivityLog   = "logs/activities.jsonl"
	DefaultPause         = 2 * time.Second
	DefaultRateLimitWait = 5 * time.Second

	DefaultRedisAddr  = "localhost:6379"
	DefaultKafkaTopic = "reddit-insights.activity"
	DefaultLogLevel   = "info"
)

// DefaultSubreddits are the two buckets the viewer shows as tabs
var DefaultSubreddits = []string{"n8n", "automation"}

// Viewer configures the terminal client. It is passed to the root model at startup.
type Viewer struct {
	// APIBase is the backend base URL, without a trailing slash
	APIBase string
	// RefreshDelay is how long to wait after a successful POST /refresh before re-fetching /data
	RefreshDelay time.Duration
	// HTTPTimeout bounds each request; zero means no timeout
	HTTPTimeout time.Duration
	LogFile     string
}

// Server configures the HTTP service that backs the viewer
type Server struct {
	Port           string
	AllowedOrigins []string
	DataLimit      int
	// Schedule is an optional cron expression that triggers a refresh cycle
	Schedule string
}

// Collector configures the Reddit fetch cycle
type Collector struct {
	Subreddits    []string
	FetchLimit    int
	TopN          int
	OutputPath    string
	ActivityLog   string
	Pause         time.Duration
	RateLimitWait time.Duration
}

// Redis configures the post store. An empty Addr disables it.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// S3 configures optional snapshot uploads. An empty Bucket disables them.
type S3 struct {
	Bucket       string
	Region       string
	Profile      string
	Prefix       string
	UsePathStyle bool
}

// Kafka configures the optional activity sink. No brokers disables it.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Config is the full application configuration
type Config struct {
	Viewer    Viewer
	Server    Server
	Collector Collector
	Redis     Redis
	S3        S3
	Kafka     Kafka
	LogLevel  string
}

// Defaults returns a Config with every default applied
func Defaults() Config {
	return Config{
		Viewer: Viewer{
			APIBase:      DefaultAPIBase,
			RefreshDelay: DefaultRefreshDelay,
			LogFile:      DefaultViewerLog,
		},
		Server: Server{
			Port:           DefaultPort,
			AllowedOrigins: []string{DefaultAllowedOrigins},
			DataLimit:      DefaultDataLimit,
		},
		Collector: Collector{
			Subreddits:    append([]string(nil), DefaultSubreddits...),
			FetchLimit:    DefaultFetchLimit,
			TopN:          DefaultTopN,
			OutputPath:    DefaultOutputPath,
			ActivityLog:   DefaultActivityLog,
			Pause:         DefaultPause,
			RateLimitWait: DefaultRateLimitWait,
		},
		Redis: Redis{
			Addr: DefaultRedisAddr,
		},
		Kafka: Kafka{
			Topic: DefaultKafkaTopic,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load builds a Config from the environment on top of Defaults.
// Call godotenv.Load before this if a .env file should be honoured.
func Load() (Config, error) {
	cfg := Defaults()

	cfg.Viewer.APIBase = NormalizeBaseURL(GetEnvOrDefault("API_URL", cfg.Viewer.APIBase))
	if v := os.Getenv("REFRESH_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return Config{}, fmt.Errorf("invalid REFRESH_DELAY_MS %q", v)
		}
		cfg.Viewer.RefreshDelay = time.Duration(ms) * time.Millisecond
	}
	cfg.Viewer.LogFile = GetEnvOrDefault("VIEWER_LOG", cfg.Viewer.LogFile)

	cfg.Server.Port = GetEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = SplitList(GetEnvOrDefault("ALLOWED_ORIGINS", DefaultAllowedOrigins))
	cfg.Server.Schedule = strings.TrimSpace(os.Getenv("REFRESH_SCHEDULE"))

	if subs := SplitList(os.Getenv("SUBREDDITS")); len(subs) > 0 {
		cfg.Collector.Subreddits = subs
	}
	var err error
	if cfg.Collector.FetchLimit, err = envInt("FETCH_LIMIT", cfg.Collector.FetchLimit); err != nil {
		return Config{}, err
	}
	if cfg.Collector.TopN, err = envInt("TOP_N", cfg.Collector.TopN); err != nil {
		return Config{}, err
	}
	cfg.Collector.OutputPath = GetEnvOrDefault("OUTPUT_PATH", cfg.Collector.OutputPath)
	cfg.Collector.ActivityLog = GetEnvOrDefault("ACTIVITY_LOG", cfg.Collector.ActivityLog)

	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Redis.Addr = strings.TrimSpace(v)
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASS")
	if cfg.Redis.DB, err = envInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return Config{}, err
	}

	cfg.S3 = S3{
		Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
	}
	if prefix := strings.TrimSpace(os.Getenv("S3_PREFIX")); prefix != "" {
		cfg.S3.Prefix = strings.Trim(prefix, "/") + "/"
	}

	cfg.Kafka.Brokers = SplitList(os.Getenv("KAFKA_BROKERS"))
	cfg.Kafka.Topic = GetEnvOrDefault("KAFKA_TOPIC", cfg.Kafka.Topic)

	cfg.LogLevel = GetEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that values are usable
func (c Config) Validate() error {
	if c.Viewer.APIBase == "" {
		return fmt.Errorf("api base url is required")
	}
	if len(c.Collector.Subreddits) == 0 {
		return fmt.Errorf("at least one subreddit is required")
	}
	if c.Collector.FetchLimit <= 0 {
		return fmt.Errorf("fetch limit must be positive, got %d", c.Collector.FetchLimit)
	}
	if c.Collector.TopN <= 0 {
		return fmt.Errorf("top n must be positive, got %d", c.Collector.TopN)
	}
	return nil
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// NormalizeBaseURL trims whitespace and trailing slashes so paths can be appended directly
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// SplitList splits a comma separated value, dropping empty items
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
