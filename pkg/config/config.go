package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	LLM      LLMConfig
	Parser   ParserConfig
	Storage  StorageConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimitMB  int
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	ConnectAttempts uint
	ConnectDelay    time.Duration
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
}

// LLMConfig selects the completion provider used when a PDF statement does
// not segment heuristically.
type LLMConfig struct {
	Provider      string
	Timeout       time.Duration
	MaxInputChars int
	Temperature   float32
	Groq          GroqConfig
	GigaChat      GigaChatConfig
	Gemini        GeminiConfig
}

type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type ParserConfig struct {
	PDFExtractor      string
	CategoryRulesFile string
	CSVHeaderMode     string
}

type StorageConfig struct {
	Backend       string
	UploadDir     string
	GCSBucket     string
	AzureBlobURL  string
	AzureBlobName string
}

// envConfig is the flat environment view that koanf unmarshals into.
type envConfig struct {
	ServerPort         string        `koanf:"SERVER_PORT"`
	ServerReadTimeout  time.Duration `koanf:"SERVER_READ_TIMEOUT"`
	ServerWriteTimeout time.Duration `koanf:"SERVER_WRITE_TIMEOUT"`
	ServerBodyLimitMB  int           `koanf:"SERVER_BODY_LIMIT_MB"`

	DBHost            string        `koanf:"DB_HOST"`
	DBPort            string        `koanf:"DB_PORT"`
	DBUser            string        `koanf:"DB_USER"`
	DBPassword        string        `koanf:"DB_PASSWORD"`
	DBName            string        `koanf:"DB_NAME"`
	DBSSLMode         string        `koanf:"DB_SSLMODE"`
	DBMaxConns        int32         `koanf:"DB_MAX_CONNS"`
	DBConnectAttempts uint          `koanf:"DB_CONNECT_ATTEMPTS"`
	DBConnectDelay    time.Duration `koanf:"DB_CONNECT_DELAY"`

	JWTSecretKey       string `koanf:"JWT_SECRET_KEY"`
	JWTExpirationHours int    `koanf:"JWT_EXPIRATION_HOURS"`

	LLMProvider      string        `koanf:"LLM_PROVIDER"`
	LLMTimeout       time.Duration `koanf:"LLM_TIMEOUT"`
	AIMaxInputChars  int           `koanf:"AI_MAX_INPUT_CHARS"`
	AITemperature    float32       `koanf:"AI_TEMPERATURE"`
	GroqAPIKey       string        `koanf:"GROQ_API_KEY"`
	GroqModel        string        `koanf:"GROQ_MODEL"`
	GroqBaseURL      string        `koanf:"GROQ_BASE_URL"`
	GigaChatAPIKey   string        `koanf:"GIGACHAT_API_KEY"`
	GigaChatScope    string        `koanf:"GIGACHAT_SCOPE"`
	GigaChatModel    string        `koanf:"GIGACHAT_MODEL"`
	GigaChatInsecure bool          `koanf:"GIGACHAT_INSECURE_SKIP_VERIFY"`
	GeminiAPIKey     string        `koanf:"GEMINI_API_KEY"`
	GeminiModel      string        `koanf:"GEMINI_MODEL"`

	PDFExtractor      string `koanf:"PDF_EXTRACTOR"`
	CategoryRulesFile string `koanf:"CATEGORY_RULES_FILE"`
	CSVHeaderMode     string `koanf:"CSV_HEADER_MODE"`

	StorageBackend     string `koanf:"STORAGE_BACKEND"`
	UploadDir          string `koanf:"UPLOAD_DIR"`
	GCSBucket          string `koanf:"GCS_BUCKET"`
	AzureBlobURL       string `koanf:"AZURE_BLOB_URL"`
	AzureBlobContainer string `koanf:"AZURE_BLOB_CONTAINER"`

	LogLevel string `koanf:"LOG_LEVEL"`
}

func defaults() envConfig {
	return envConfig{
		ServerPort:         "8080",
		ServerReadTimeout:  30 * time.Second,
		ServerWriteTimeout: 30 * time.Second,
		ServerBodyLimitMB:  20,

		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "postgres",
		DBPassword:        "postgres",
		DBName:            "statement_ingest",
		DBSSLMode:         "disable",
		DBConnectAttempts: 5,
		DBConnectDelay:    2 * time.Second,

		JWTSecretKey:       "your-secret-key-change-in-production",
		JWTExpirationHours: 24,

		LLMProvider:      "groq",
		AIMaxInputChars:  30000,
		AITemperature:    0.1,
		GroqModel:        "llama-3.1-8b-instant",
		GroqBaseURL:      "https://api.groq.com/openai/v1",
		GigaChatScope:    "GIGACHAT_API_PERS",
		GigaChatModel:    "GigaChat",
		GigaChatInsecure: true,
		GeminiModel:      "gemini-2.5-flash",

		PDFExtractor:  "fitz",
		CSVHeaderMode: "auto",

		StorageBackend:     "local",
		UploadDir:          "uploads",
		AzureBlobContainer: "statements",

		LogLevel: "info",
	}
}

// Load reads an optional .env file and then the process environment.
// Unset keys keep their defaults.
func Load() (*Config, error) {
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	e := defaults()
	if err := k.UnmarshalWithConf("", &e, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         e.ServerPort,
			ReadTimeout:  e.ServerReadTimeout,
			WriteTimeout: e.ServerWriteTimeout,
			BodyLimitMB:  e.ServerBodyLimitMB,
		},
		Database: DatabaseConfig{
			Host:            e.DBHost,
			Port:            e.DBPort,
			User:            e.DBUser,
			Password:        e.DBPassword,
			DBName:          e.DBName,
			SSLMode:         e.DBSSLMode,
			MaxConns:        e.DBMaxConns,
			ConnectAttempts: e.DBConnectAttempts,
			ConnectDelay:    e.DBConnectDelay,
		},
		JWT: JWTConfig{
			SecretKey:  e.JWTSecretKey,
			Expiration: time.Duration(e.JWTExpirationHours) * time.Hour,
		},
		LLM: LLMConfig{
			Provider:      e.LLMProvider,
			Timeout:       e.LLMTimeout,
			MaxInputChars: e.AIMaxInputChars,
			Temperature:   e.AITemperature,
			Groq: GroqConfig{
				APIKey:  e.GroqAPIKey,
				Model:   e.GroqModel,
				BaseURL: e.GroqBaseURL,
			},
			GigaChat: GigaChatConfig{
				APIKey:             e.GigaChatAPIKey,
				Scope:              e.GigaChatScope,
				Model:              e.GigaChatModel,
				InsecureSkipVerify: e.GigaChatInsecure,
			},
			Gemini: GeminiConfig{
				APIKey: e.GeminiAPIKey,
				Model:  e.GeminiModel,
			},
		},
		Parser: ParserConfig{
			PDFExtractor:      e.PDFExtractor,
			CategoryRulesFile: e.CategoryRulesFile,
			CSVHeaderMode:     e.CSVHeaderMode,
		},
		Storage: StorageConfig{
			Backend:       e.StorageBackend,
			UploadDir:     e.UploadDir,
			GCSBucket:     e.GCSBucket,
			AzureBlobURL:  e.AzureBlobURL,
			AzureBlobName: e.AzureBlobContainer,
		},
		Logger: LoggerConfig{
			Level: e.LogLevel,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "groq", "gigachat", "gemini":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q (want groq, gigachat or gemini)", c.LLM.Provider)
	}
	switch c.Parser.PDFExtractor {
	case "fitz", "plain":
	default:
		return fmt.Errorf("invalid PDF_EXTRACTOR %q (want fitz or plain)", c.Parser.PDFExtractor)
	}
	switch c.Storage.Backend {
	case "local":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs storage backend")
		}
	case "azblob":
		if c.Storage.AzureBlobURL == "" {
			return fmt.Errorf("AZURE_BLOB_URL is required for the azblob storage backend")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q (want local, gcs or azblob)", c.Storage.Backend)
	}
	return nil
}
