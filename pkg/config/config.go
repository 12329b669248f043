package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAvatarURL = "https://abs.twimg.com/sticky/default_profile_images/default_profile_400x400.png"
	DefaultBio       = "Nice to meet you!"
	DefaultJWTSecret = "supersecretjwtkey"
)

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set in production")

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string
	JWTSecret               string
	JWTTTL                  time.Duration
	PublicBaseURL           string
	DefaultAvatarURL        string
	DefaultBio              string
	BlobBackend             string
	UploadDir               string
	MetricsPort             string
	NotifyAsync             bool
	NotifyWorkers           int
	NotifyQueueSize         int
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	port := getEnv("PORT", "8080")
	return &Config{
		Port:                    port,
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		JWTSecret:               getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:                  getDuration("JWT_TTL", time.Hour),
		PublicBaseURL:           getEnv("SERVER_BASE_URL", "http://localhost:"+port),
		DefaultAvatarURL:        getEnv("DEFAULT_AVATAR_URL", DefaultAvatarURL),
		DefaultBio:              getEnv("DEFAULT_BIO", DefaultBio),
		BlobBackend:             getEnv("BLOB_BACKEND", "local"),
		UploadDir:               getEnv("UPLOAD_DIR", "./uploads"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		NotifyAsync:             getBool("NOTIFY_ASYNC", true),
		NotifyWorkers:           getInt("NOTIFY_WORKERS", 4),
		NotifyQueueSize:         getInt("NOTIFY_QUEUE_SIZE", 256),
	}
}

// UsesDefaultJWTSecret reports whether tokens would be signed with the built-in secret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Validate rejects settings that are unsafe for the configured environment.
func (c *Config) Validate() error {
	if c.Env == "production" && c.UsesDefaultJWTSecret() {
		return ErrDefaultJWTSecret
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
