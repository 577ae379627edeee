package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type serverConfig struct {
	Port           int    `koanf:"port" validate:"required"`
	Mode           string `koanf:"mode" validate:"required"`
	Concurrency    int    `koanf:"concurrency" validate:"required"`
	BodyLimit      int    `koanf:"body_limit" validate:"required"`
	AppName        string `koanf:"app_name" validate:"required"`
	MaxConnections int    `koanf:"max_connections" validate:"required"`
}

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

type Module string

const (
	ModuleMilvus      Module = "milvus"
	ModuleQdrant      Module = "qdrant"
	ModuleVectorStore Module = "vectorstore"
	ModuleIngest      Module = "ingest"
	ModuleDatabase    Module = "database"
	ModuleOpenAI      Module = "openai"
	ModuleServer      Module = "server"
	ModuleSetting     Module = "setting"
	ModuleRetriever   Module = "retriever"
	ModuleChat        Module = "chat"
	ModuleHotel       Module = "hotel"
)

type databaseConfig struct {
	Host         string   `koanf:"host" validate:"required"`
	Port         int      `koanf:"port" validate:"required"`
	User         string   `koanf:"user" validate:"required"`
	Password     string   `koanf:"password"`
	Name         string   `koanf:"name" validate:"required"`
	MaxIdleConns int      `koanf:"max_idle_conns" validate:"required"`
	MaxOpenConns int      `koanf:"max_open_conns" validate:"required"`
	MaxLifetime  int      `koanf:"max_lifetime" validate:"required"`
	Replicas     []string `koanf:"replicas"`
}

type openaiConfig struct {
	Key                string  `koanf:"key" validate:"required"`
	BaseURL            string  `koanf:"base_url"`
	Model              string  `koanf:"model" validate:"required"`
	EmbeddingModel     string  `koanf:"embedding_model" validate:"required"`
	EmbeddingDimension int     `koanf:"embedding_dimension" validate:"required,gt=0"`
	Temperature        float64 `koanf:"temperature" validate:"gte=0,lte=2"`
	MaxTokens          int     `koanf:"max_tokens" validate:"required"`
	TimeoutSeconds     int     `koanf:"timeout_seconds" validate:"required"`
}

type corsConfig struct {
	AllowOrigins []string `koanf:"allow_origins" validate:"required"`
	AllowMethods []string `koanf:"allow_methods" validate:"required"`
	AllowHeaders []string `koanf:"allow_headers" validate:"required"`
}

type vectorStoreConfig struct {
	Backend    string `koanf:"backend" validate:"required,oneof=milvus qdrant"`
	Collection string `koanf:"collection" validate:"required"`
}

type milvusConfig struct {
	Address         string          `koanf:"address" validate:"required"`
	IndexHNSWConfig indexHNSWConfig `koanf:"index_hnsw_config"`
}

type indexHNSWConfig struct {
	MetricType     string `koanf:"metric_type" validate:"required,oneof=COSINE IP L2"`
	M              int    `koanf:"m" validate:"required"`
	EfConstruction int    `koanf:"ef_construction" validate:"required"`
	Ef             int    `koanf:"ef" validate:"required"`
}

type qdrantConfig struct {
	Host   string `koanf:"host" validate:"required"`
	Port   int    `koanf:"port" validate:"required"`
	APIKey string `koanf:"api_key"`
	UseTLS bool   `koanf:"use_tls"`
}

type s3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region"`
}

type ingestConfig struct {
	Enabled           bool   `koanf:"enabled"`
	Source            string `koanf:"source" validate:"required"`
	ChunkTokens       int    `koanf:"chunk_tokens" validate:"required"`
	ChunkOverlap      int    `koanf:"chunk_overlap" validate:"gte=0"`
	MinChunkTokens    int    `koanf:"min_chunk_tokens" validate:"required"`
	MaxChunks         int    `koanf:"max_chunks" validate:"required"`
	RespectBoundaries bool   `koanf:"respect_boundaries"`
	PauseMillis       int    `koanf:"pause_ms" validate:"gte=0"`
}

type retrieverConfig struct {
	TopK                int     `koanf:"top_k" validate:"required,gt=0"`
	SimilarityThreshold float64 `koanf:"similarity_threshold" validate:"gte=0,lte=1"`
}

type rosterPrompts struct {
	System       string `koanf:"system" validate:"required"`
	Students     string `koanf:"students" validate:"required"`
	UserTemplate string `koanf:"user_template" validate:"required"`
	NotFound     string `koanf:"not_found" validate:"required"`
}

type hotelPrompts struct {
	System   string `koanf:"system"`
	Template string `koanf:"template" validate:"required"`
	Fallback string `koanf:"fallback" validate:"required"`
}

type promptsConfig struct {
	Roster rosterPrompts `koanf:"roster"`
	Hotel  hotelPrompts  `koanf:"hotel"`
}

type config struct {
	Server      serverConfig      `koanf:"server"`
	Database    databaseConfig    `koanf:"database"`
	OpenAI      openaiConfig      `koanf:"openai"`
	LogLevel    logLevel          `koanf:"log_level"`
	LogJSON     bool              `koanf:"log_json"`
	Dns         string            `koanf:"dns"`
	S3          s3Config          `koanf:"s3"`
	Cors        corsConfig        `koanf:"cors"`
	VectorStore vectorStoreConfig `koanf:"vector_store"`
	Milvus      milvusConfig      `koanf:"milvus"`
	Qdrant      qdrantConfig      `koanf:"qdrant"`
	Ingest      ingestConfig      `koanf:"ingest"`
	Retriever   retrieverConfig   `koanf:"retriever"`
	Prompts     promptsConfig     `koanf:"prompts"`
}

func buildMySQLDSN(cfg databaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

var defaultConfig = config{
	Server: serverConfig{
		Port:           8080,
		Mode:           "release",
		Concurrency:    256 * 1024,
		BodyLimit:      4 * 1024 * 1024,
		AppName:        "ai-concierge",
		MaxConnections: 512,
	},
	Database: databaseConfig{
		Host:         "127.0.0.1",
		Port:         3306,
		User:         "root",
		Password:     "",
		Name:         "concierge",
		MaxIdleConns: 5,
		MaxOpenConns: 20,
		MaxLifetime:  30,
	},
	OpenAI: openaiConfig{
		Key:                "",
		Model:              "gpt-4o-mini",
		EmbeddingModel:     "text-embedding-3-small",
		EmbeddingDimension: 1536,
		Temperature:        0.2,
		MaxTokens:          512,
		TimeoutSeconds:     30,
	},
	LogLevel: Info,
	S3: s3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
	},
	Cors: corsConfig{
		AllowOrigins: []string{"http://localhost:5173"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
	},
	VectorStore: vectorStoreConfig{
		Backend:    "milvus",
		Collection: "hotel_store",
	},
	Milvus: milvusConfig{
		Address: "localhost:19530",
		IndexHNSWConfig: indexHNSWConfig{
			MetricType:     "COSINE",
			M:              16,
			EfConstruction: 200,
			Ef:             64,
		},
	},
	Qdrant: qdrantConfig{
		Host: "localhost",
		Port: 6334,
	},
	Ingest: ingestConfig{
		Enabled:           true,
		Source:            "embedded",
		ChunkTokens:       800,
		ChunkOverlap:      200,
		MinChunkTokens:    10,
		MaxChunks:         5000,
		RespectBoundaries: true,
		PauseMillis:       200,
	},
	Retriever: retrieverConfig{
		TopK:                2,
		SimilarityThreshold: 0.5,
	},
	Prompts: promptsConfig{
		Roster: rosterPrompts{
			System:       defaultRosterSystemPrompt,
			Students:     defaultRosterStudents,
			UserTemplate: defaultRosterUserTemplate,
			NotFound:     defaultRosterNotFound,
		},
		Hotel: hotelPrompts{
			Template: defaultHotelTemplate,
			Fallback: defaultHotelFallback,
		},
	},
}

var (
	Cfg     = defaultConfig
	once    sync.Once
	initErr error
)

// Init loads path (yaml, optional) then APP_ prefixed env vars over the defaults
// and validates the result. Nested keys use a double underscore:
// APP_OPENAI__KEY sets openai.key. Subsequent calls return the first result.
func Init(path string) error {
	once.Do(func() {
		Cfg, initErr = Load(path)
	})
	return initErr
}

// Load builds a fresh config without touching Cfg.
func Load(path string) (config, error) {
	k := koanf.New(".")
	cfg := defaultConfig

	// file
	if path != "" {
		if e := k.Load(file.Provider(path), yaml.Parser()); e != nil && !errors.Is(e, os.ErrNotExist) {
			return cfg, fmt.Errorf("%v: load %s: %w", ModuleSetting, path, e)
		}
	}

	// env APP_SERVER__PORT
	if e := k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "APP_")), "__", ".")
	}), nil); e != nil {
		return cfg, fmt.Errorf("%v: load env: %w", ModuleSetting, e)
	}

	// bind
	if e := k.Unmarshal("", &cfg); e != nil {
		log.Errorf("failed to unmarshal config: %v", e)
		return cfg, e
	}

	if cfg.Dns == "" {
		cfg.Dns = buildMySQLDSN(cfg.Database)
	}

	if e := validate(cfg); e != nil {
		return cfg, e
	}
	return cfg, nil
}

func validate(cfg config) error {
	v := validator.New()
	e := v.Struct(cfg)
	if e == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(e, &errs) {
		log.Errorf("config validation failed: %v", e)
		return e
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v Config validation failed:\n", ModuleSetting))
	for _, fe := range errs {
		sb.WriteString(
			fmt.Sprintf("  • %s: failed '%s' (value: %v)\n", fe.Namespace(), fe.Tag(), fe.Value()),
		)
	}
	log.Error(sb.String())
	return errors.New(strings.TrimSpace(sb.String()))
}
