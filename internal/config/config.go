package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	AladhanAPIBaseURL     string
	AladhanMethod         string
	AladhanMethodSettings string
	AladhanTune           string
	GeoNamesAPIBaseURL    string
	GeoNamesUsername      string
	NominatimAPIBaseURL   string
	UserAgent             string

	MongoURI                    string
	MongoHost                   string
	MongoUser                   string
	MongoPass                   string
	MongoAuthDB                 string
	DBAthan                     string
	CollectionRecentCities      string
	CollectionMigrationsHistory string
	RecentCitiesLimit           int

	RedisAddr      string
	RedisUsername  string
	RedisPassword  string
	CacheBackend   string
	CacheCapacity  int
	TimezoneTTL    time.Duration
	PrayerTimesTTL time.Duration

	TickInterval    time.Duration
	RefreshInterval time.Duration
	WorkerCount     int
}

// Load reads the .env file, if present, and loads the configuration
func Load() *Config {
	// A missing .env is normal outside development; the environment still applies.
	_ = godotenv.Load()

	return &Config{
		AladhanAPIBaseURL:     getEnv("ALADHAN_API_BASE_URL", "https://api.aladhan.com/v1"),
		AladhanMethod:         getEnv("ALADHAN_METHOD", "99"),
		AladhanMethodSettings: getEnv("ALADHAN_METHOD_SETTINGS", "12.5,null,null"),
		AladhanTune:           getEnv("ALADHAN_TUNE", "0,0,0,0,0,0,0,90"),
		GeoNamesAPIBaseURL:    getEnv("GEONAMES_API_BASE_URL", "https://secure.geonames.org"),
		GeoNamesUsername:      os.Getenv("GEONAMES_USERNAME"),
		NominatimAPIBaseURL:   getEnv("NOMINATIM_API_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:             getEnv("USER_AGENT", "AthanApp/1.0"),

		MongoURI:                    getMongoURI(),
		MongoHost:                   os.Getenv("MONGO_HOST"),
		MongoUser:                   os.Getenv("MONGO_USER"),
		MongoPass:                   os.Getenv("MONGO_PASS"),
		MongoAuthDB:                 getEnv("MONGO_AUTH_DB", "admin"),
		DBAthan:                     getEnv("DB_ATHAN_NAME", "athan"),
		CollectionRecentCities:      getEnv("COLLECTION_RECENT_CITIES", "recent_cities"),
		CollectionMigrationsHistory: getEnv("COLLECTION_MIGRATIONS_HISTORY", "migrations_history"),
		RecentCitiesLimit:           getInt("RECENT_CITIES_LIMIT", 5),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisUsername:  os.Getenv("REDIS_USERNAME"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		CacheBackend:   getEnv("CACHE_BACKEND", "memory"),
		CacheCapacity:  getInt("CACHE_CAPACITY", 128),
		TimezoneTTL:    getDuration("TIMEZONE_CACHE_TTL", 24*time.Hour),
		PrayerTimesTTL: getDuration("PRAYER_CACHE_TTL", 6*time.Hour),

		TickInterval:    getDuration("TICK_INTERVAL", time.Second),
		RefreshInterval: time.Duration(getInt("REFRESH_INTERVAL_MINUTES", 1)) * time.Minute,
		WorkerCount:     getInt("WORKER_COUNT", 2),
	}
}

// getMongoURI constructs the MongoDB URI from environment variables
func getMongoURI() string {
	host := os.Getenv("MONGO_HOST")
	port := getEnv("MONGO_PORT", "27017")
	user := os.Getenv("MONGO_USER")
	pass := os.Getenv("MONGO_PASS")

	if host == "" {
		return ""
	}
	if user == "" {
		return "mongodb://" + host + ":" + port
	}
	return "mongodb://" + user + ":" + pass + "@" + host + ":" + port
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
