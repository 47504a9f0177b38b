package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	RawMailDir string
	OutputDir  string

	LLMProvider     string
	LLMTimeoutMs    int
	LLMRateLimitRPS int

	GeminiAPIKey string
	GeminiModel  string

	MistralAPIKey  string
	MistralModel   string
	MistralBaseURL string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string
	GmailSender       string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	ListenerProvider     string
	ListenerLabel        string
	ListenerIntervalSec  int
	ListenerFetchMax     int
	ListenerProcessBatch int
	ListenerAutoExport   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "rfpdesk.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		LLMProvider:     getEnv("LLM_PROVIDER", "gemini"),
		LLMTimeoutMs:    getEnvInt("LLM_TIMEOUT_MS", 20000),
		LLMRateLimitRPS: getEnvInt("LLM_RATE_LIMIT_RPS", 2),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		MistralAPIKey:  getEnv("MISTRAL_API_KEY", ""),
		MistralModel:   getEnv("MISTRAL_MODEL", "mistral-large-latest"),
		MistralBaseURL: getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		ListenerProvider:     getEnv("LISTENER_PROVIDER", "gmail"),
		ListenerLabel:        getEnv("LISTENER_LABEL", "INBOX"),
		ListenerIntervalSec:  getEnvInt("LISTENER_INTERVAL_SEC", 300),
		ListenerFetchMax:     getEnvInt("LISTENER_FETCH_MAX", 20),
		ListenerProcessBatch: getEnvInt("LISTENER_PROCESS_BATCH", 20),
		ListenerAutoExport:   getEnvBool("LISTENER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
