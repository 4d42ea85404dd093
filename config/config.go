package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Log        LogConfig
	Tracing    TracingConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	OCR        OCRConfig
	Extraction ExtractionConfig
	Quality    QualityConfig
	Semantic   SemanticConfig
	Risk       RiskConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// When Enabled is false the OCR service runs stateless and extracted
	// records are not archived.
	Enabled         bool
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s Timezone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type AuthConfig struct {
	// SharedSecret is the bearer token clients must present. When empty a
	// random token is generated at startup and logged.
	SharedSecret string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

type OCRConfig struct {
	// Languages passed to Tesseract, e.g. "fra", "eng".
	Languages []string
	// MaxWidth caps the preprocessed image width, preserving aspect ratio.
	MaxWidth int
	// Contrast and sharpness multipliers applied before binarization.
	ContrastFactor  float64
	SharpnessFactor float64
	// Adaptive binarization window and subtracted constant.
	ThresholdBlockSize int
	ThresholdConstant  float64
	// Skew below this angle (degrees) is left uncorrected.
	DeskewMinAngle float64
	// Text shorter than this after recognition is rejected as unreadable.
	MinReadableChars int
}

// ExtractionConfig carries the medication scoring heuristics. The values are
// domain heuristics inherited from the product team; they are configurable
// but should not be changed without product input.
type ExtractionConfig struct {
	BaseConfidence     float64
	DosageBonus        float64
	PosologyBonus      float64
	DurationBonus      float64
	KeywordBonus       float64
	ContextWindowLines int
}

type QualityConfig struct {
	ConfidenceWeight   float64
	ValidationWeight   float64
	ExcellentThreshold float64
	GoodThreshold      float64
	ModerateThreshold  float64
	LowConfidenceWarn  float64
}

type SemanticConfig struct {
	// Embedding server (Ollama-compatible /api/embeddings endpoint).
	EmbeddingURL     string
	EmbeddingModel   string
	EmbeddingTimeout time.Duration
	CacheSize        int
}

type RiskConfig struct {
	AgeSeniorPoints       float64
	AgeChildPoints        float64
	MissingVaccinePoints  float64
	MissingVaccineCap     float64
	CancelledApptPoints   float64
	CancelledApptCap      float64
	LowStockPoints        float64
	ExpiringPoints        float64
	SevereAllergyPoints   float64
	NoFollowUpYearPoints  float64
	NoFollowUpTwoYrPoints float64
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "carelink-ai"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			Port:            getEnvInt("SERVER_PORT", 8000),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "carelink"),
			User:            getEnv("DB_USER", "carelink"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			SharedSecret: getEnv("CARELINK_SECRET", ""),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "carelink-ai"),
			Endpoint:    getEnv("OTLP_ENDPOINT", "localhost:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
			MaxAge:         getEnvDuration("CORS_MAX_AGE", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 20),
			BurstSize:         getEnvInt("RATE_LIMIT_BURST", 40),
		},
		OCR: OCRConfig{
			Languages:          getEnvSlice("OCR_LANGUAGES", []string{"fra", "eng"}),
			MaxWidth:           getEnvInt("OCR_MAX_WIDTH", 2500),
			ContrastFactor:     getEnvFloat("OCR_CONTRAST", 1.5),
			SharpnessFactor:    getEnvFloat("OCR_SHARPNESS", 1.3),
			ThresholdBlockSize: getEnvInt("OCR_THRESHOLD_BLOCK", 11),
			ThresholdConstant:  getEnvFloat("OCR_THRESHOLD_CONST", 2),
			DeskewMinAngle:     getEnvFloat("OCR_DESKEW_MIN_ANGLE", 0.5),
			MinReadableChars:   getEnvInt("OCR_MIN_READABLE_CHARS", 10),
		},
		Extraction: ExtractionConfig{
			BaseConfidence:     getEnvFloat("EXTRACT_BASE_CONFIDENCE", 70),
			DosageBonus:        getEnvFloat("EXTRACT_DOSAGE_BONUS", 10),
			PosologyBonus:      getEnvFloat("EXTRACT_POSOLOGY_BONUS", 10),
			DurationBonus:      getEnvFloat("EXTRACT_DURATION_BONUS", 5),
			KeywordBonus:       getEnvFloat("EXTRACT_KEYWORD_BONUS", 5),
			ContextWindowLines: getEnvInt("EXTRACT_CONTEXT_LINES", 3),
		},
		Quality: QualityConfig{
			ConfidenceWeight:   getEnvFloat("QUALITY_CONFIDENCE_WEIGHT", 0.6),
			ValidationWeight:   getEnvFloat("QUALITY_VALIDATION_WEIGHT", 0.4),
			ExcellentThreshold: getEnvFloat("QUALITY_EXCELLENT", 85),
			GoodThreshold:      getEnvFloat("QUALITY_GOOD", 70),
			ModerateThreshold:  getEnvFloat("QUALITY_MODERATE", 50),
			LowConfidenceWarn:  getEnvFloat("QUALITY_LOW_CONFIDENCE_WARN", 70),
		},
		Semantic: SemanticConfig{
			EmbeddingURL:     getEnv("EMBEDDING_URL", "http://localhost:11434"),
			EmbeddingModel:   getEnv("EMBEDDING_MODEL", "paraphrase-multilingual"),
			EmbeddingTimeout: getEnvDuration("EMBEDDING_TIMEOUT", 30*time.Second),
			CacheSize:        getEnvInt("EMBEDDING_CACHE_SIZE", 4096),
		},
		Risk: RiskConfig{
			AgeSeniorPoints:       getEnvFloat("RISK_AGE_SENIOR", 15),
			AgeChildPoints:        getEnvFloat("RISK_AGE_CHILD", 10),
			MissingVaccinePoints:  getEnvFloat("RISK_MISSING_VACCINE", 5),
			MissingVaccineCap:     getEnvFloat("RISK_MISSING_VACCINE_CAP", 20),
			CancelledApptPoints:   getEnvFloat("RISK_CANCELLED_APPT", 3),
			CancelledApptCap:      getEnvFloat("RISK_CANCELLED_APPT_CAP", 15),
			LowStockPoints:        getEnvFloat("RISK_LOW_STOCK", 10),
			ExpiringPoints:        getEnvFloat("RISK_EXPIRING", 5),
			SevereAllergyPoints:   getEnvFloat("RISK_SEVERE_ALLERGY", 10),
			NoFollowUpYearPoints:  getEnvFloat("RISK_NO_FOLLOWUP_1Y", 15),
			NoFollowUpTwoYrPoints: getEnvFloat("RISK_NO_FOLLOWUP_2Y", 25),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces production security requirements.
func validate(cfg *Config) error {
	var errs []string

	if cfg.App.Environment == "production" && cfg.Auth.SharedSecret == "" {
		errs = append(errs, "CARELINK_SECRET is required in production")
	}

	if cfg.Database.Enabled {
		if cfg.Database.Password == "" && cfg.App.Environment != "development" {
			errs = append(errs, "DB_PASSWORD is required in non-development environments")
		}
		if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
			errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
		}
	}

	if cfg.Quality.ConfidenceWeight+cfg.Quality.ValidationWeight != 1.0 {
		errs = append(errs, "quality weights must sum to 1.0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
