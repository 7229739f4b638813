package config

import (
	"os"
	"strings"
	"time"

	pstrings "ballot/pkg/platform/strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	PostgresDSN string
	Redis       Redis
	Kafka       Kafka
	AdminToken  string
	Collections Collections
}

// Redis holds go-redis client settings. An empty URL disables Redis.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds audit publisher settings. Empty brokers disable publishing.
type Kafka struct {
	SeedBrokers []string
	AuditTopic  string
}

// Collections names the logical document collections. Overridable so tests
// and staging can point at scratch collections without touching real data.
type Collections struct {
	Users         string
	Events        string
	Notifications string
	Extras        string
}

// DefaultCollections returns the production collection names.
func DefaultCollections() Collections {
	return Collections{
		Users:         "users",
		Events:        "events",
		Notifications: "notifications",
		Extras:        "extras",
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("BALLOT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("BALLOT_KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "ballot.audit"
	}

	var brokers []string
	if raw := os.Getenv("BALLOT_KAFKA_BROKERS"); raw != "" {
		brokers = pstrings.DedupeAndTrim(strings.Split(raw, ","))
	}

	cols := DefaultCollections()
	if prefix := os.Getenv("BALLOT_COLLECTION_PREFIX"); prefix != "" {
		cols.Users = prefix + cols.Users
		cols.Events = prefix + cols.Events
		cols.Notifications = prefix + cols.Notifications
		cols.Extras = prefix + cols.Extras
	}

	return Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("BALLOT_POSTGRES_DSN"),
		Redis: Redis{
			URL:          os.Getenv("BALLOT_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			SeedBrokers: brokers,
			AuditTopic:  topic,
		},
		AdminToken:  os.Getenv("BALLOT_ADMIN_TOKEN"),
		Collections: cols,
	}
}
