package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string // Empty disables auth on mutating endpoints

	// Route sources
	DataDir     string
	TargetsFile string
	SourceURL   string // Empty means read files from DataDir

	SegmentDedup     string // "route" or "global"
	FetchConcurrency int
	CacheTTL         time.Duration

	DNSServer        string
	ResolveHostnames bool

	RateLimit   int // Requests per client per minute, 0 disables
	CommandsMax int // Render commands kept for polling viewers
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", ":8080"),
		DBPath:           getEnv("DB_PATH", "./data/tracemap/tracemap.db"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		DataDir:          getEnv("DATA_DIR", "./renderer"),
		TargetsFile:      getEnv("TARGETS_FILE", "./targets.txt"),
		SourceURL:        os.Getenv("SOURCE_URL"),
		SegmentDedup:     strings.ToLower(getEnv("SEGMENT_DEDUP", "route")),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 8),
		CacheTTL:         getEnvDuration("CACHE_TTL", 10*time.Minute),
		DNSServer:        getEnv("DNS_SERVER", "8.8.8.8:53"),
		ResolveHostnames: getEnvBool("RESOLVE_HOSTNAMES", false),
		RateLimit:        getEnvInt("RATE_LIMIT", 60),
		CommandsMax:      getEnvInt("COMMANDS_MAX", 10000),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[Config] Invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("[Config] Invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %t", key, v, def)
		return def
	}
	return b
}
