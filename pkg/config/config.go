package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Storage    StorageConfig
	LiveKit    LiveKitConfig
	Groq       GroqConfig
	AssemblyAI AssemblyAIConfig
	Jira       JiraConfig
	SMTP       SMTPConfig
	Hooks      HooksConfig
	Standup    StandupConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxConns      int
	MinConns      int
	MigrationsDir string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Disabled bool
}

// JWTConfig holds operator token configuration
type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type            string // "minio" or "s3"
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
	PresignExpiry   time.Duration
}

// LiveKitConfig holds meeting session configuration
type LiveKitConfig struct {
	URL         string
	APIKey      string
	APISecret   string
	UseMock     bool
	BotIdentity string
	BotName     string
	SpeechTopic string
	CaptureWait time.Duration
}

// GroqConfig holds language model and speech synthesis configuration
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	TTSModel    string
	TTSVoice    string
}

// AssemblyAIConfig holds speech-to-text configuration
type AssemblyAIConfig struct {
	APIKey  string
	UseMock bool
}

// JiraConfig holds issue tracker configuration
type JiraConfig struct {
	BaseURL    string
	Email      string
	APIToken   string
	OAuthToken string
}

// SMTPConfig holds email transport configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// HooksConfig holds inbound scheduler hook configuration
type HooksConfig struct {
	TriggerSecret string
}

// StandupConfig holds the orchestration knobs, read with the STANDUP_ prefix
type StandupConfig struct {
	ResponseTimeout           time.Duration `envconfig:"RESPONSE_TIMEOUT" default:"2m"`
	SilenceTimeout            time.Duration `envconfig:"SILENCE_TIMEOUT" default:"1m"`
	EndOfTurnGap              time.Duration `envconfig:"END_OF_TURN_GAP" default:"4s"`
	StateTTL                  time.Duration `envconfig:"STATE_TTL" default:"1h"`
	DefaultAggressiveness     int           `envconfig:"DEFAULT_AGGRESSIVENESS" default:"5"`
	StakeholderEmails         []string      `envconfig:"STAKEHOLDER_EMAILS" default:"stakeholder@example.com,manager@example.com"`
	BlockedTransitionID       string        `envconfig:"BLOCKED_TRANSITION_ID" default:"31"`
	ResetAttendanceOnPresence bool          `envconfig:"RESET_ATTENDANCE_ON_PRESENCE" default:"false"`
	MaxConcurrentCalls        int           `envconfig:"MAX_CONCURRENT_CALLS" default:"4"`
	MaxQuestions              int           `envconfig:"MAX_QUESTIONS" default:"3"`
	MaxCallDuration           time.Duration `envconfig:"MAX_CALL_DURATION" default:"30m"`
	Language                  string        `envconfig:"LANGUAGE" default:"en"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			Name:          getEnv("DB_NAME", "standup_assistant"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:      getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Disabled: getEnvAsBool("REDIS_DISABLED", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-operator-secret-change-in-production"),
			Issuer: getEnv("JWT_ISSUER", "standup-assistant"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", "24h"),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", "minio"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "standup-assistant"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
			PresignExpiry:   getEnvAsDuration("STORAGE_PRESIGN_EXPIRY", "1h"),
		},
		LiveKit: LiveKitConfig{
			URL:         getEnv("LIVEKIT_URL", "ws://localhost:7880"),
			APIKey:      getEnv("LIVEKIT_API_KEY", ""),
			APISecret:   getEnv("LIVEKIT_API_SECRET", ""),
			UseMock:     getEnvAsBool("LIVEKIT_USE_MOCK", false),
			BotIdentity: getEnv("LIVEKIT_BOT_IDENTITY", "standup-bot"),
			BotName:     getEnv("LIVEKIT_BOT_NAME", "Standup Assistant"),
			SpeechTopic: getEnv("LIVEKIT_SPEECH_TOPIC", "standup.speech"),
			CaptureWait: getEnvAsDuration("LIVEKIT_CAPTURE_WAIT", "30s"),
		},
		Groq: GroqConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			BaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			Temperature: getEnvAsFloat("GROQ_TEMPERATURE", 0.3),
			MaxTokens:   getEnvAsInt("GROQ_MAX_TOKENS", 800),
			Timeout:     getEnvAsDuration("GROQ_TIMEOUT", "60s"),
			TTSModel:    getEnv("GROQ_TTS_MODEL", "playai-tts"),
			TTSVoice:    getEnv("GROQ_TTS_VOICE", "Fritz-PlayAI"),
		},
		AssemblyAI: AssemblyAIConfig{
			APIKey:  getEnv("ASSEMBLYAI_API_KEY", ""),
			UseMock: getEnvAsBool("ASSEMBLYAI_USE_MOCK", false),
		},
		Jira: JiraConfig{
			BaseURL:    getEnv("JIRA_BASE_URL", ""),
			Email:      getEnv("JIRA_EMAIL", ""),
			APIToken:   getEnv("JIRA_API_TOKEN", ""),
			OAuthToken: getEnv("JIRA_OAUTH_TOKEN", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "standup-bot@example.com"),
			UseTLS:   getEnvAsBool("SMTP_USE_TLS", true),
		},
		Hooks: HooksConfig{
			TriggerSecret: getEnv("HOOKS_TRIGGER_SECRET", ""),
		},
	}

	if err := envconfig.Process("STANDUP", &config.Standup); err != nil {
		return nil, fmt.Errorf("failed to read standup settings: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !c.LiveKit.UseMock {
		if c.LiveKit.APIKey == "" || c.LiveKit.APISecret == "" {
			return fmt.Errorf("LIVEKIT_API_KEY and LIVEKIT_API_SECRET are required unless LIVEKIT_USE_MOCK is set")
		}
	}
	if !c.AssemblyAI.UseMock && c.AssemblyAI.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required unless ASSEMBLYAI_USE_MOCK is set")
	}
	if c.Standup.ResponseTimeout <= 0 || c.Standup.SilenceTimeout <= 0 {
		return fmt.Errorf("STANDUP_RESPONSE_TIMEOUT and STANDUP_SILENCE_TIMEOUT must be positive")
	}
	if c.Standup.DefaultAggressiveness < 1 || c.Standup.DefaultAggressiveness > 10 {
		return fmt.Errorf("STANDUP_DEFAULT_AGGRESSIVENESS must be between 1 and 10")
	}
	if c.Standup.MaxConcurrentCalls < 1 {
		return fmt.Errorf("STANDUP_MAX_CONCURRENT_CALLS must be at least 1")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// JiraEnabled reports whether issue tracker credentials are present
func (c *Config) JiraEnabled() bool {
	return c.Jira.BaseURL != "" && (c.Jira.OAuthToken != "" || c.Jira.APIToken != "")
}

// SMTPEnabled reports whether an SMTP relay is configured
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsSlice(key, defaultValue string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, defaultValue), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
