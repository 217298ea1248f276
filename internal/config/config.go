package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
	llmclient "github.com/rsherod/DCI691Build2-InterventionSearcher/internal/llm/client"
)

type Config struct {
	Port             string
	Env              string
	GoogleAPIKey     string
	PerplexityAPIKey string
	Model            string
	InstructionsPath string
	SnapshotPath     string
	AttachMode       chat.AttachMode
	Archive          ArchiveConfig
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8090", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	apiKey := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}

	model := strings.TrimSpace(os.Getenv("SEARCHER_MODEL"))
	if model == "" {
		model = llmclient.DefaultModel
	}
	if !llmclient.KnownModel(model) {
		return nil, fmt.Errorf("unknown model %q", model)
	}

	return &Config{
		Port:             *port,
		Env:              env,
		GoogleAPIKey:     apiKey,
		PerplexityAPIKey: strings.TrimSpace(os.Getenv("P_API_KEY")),
		Model:            model,
		InstructionsPath: firstNonEmpty(strings.TrimSpace(os.Getenv("INSTRUCTIONS_PATH")), "instructions.txt"),
		SnapshotPath:     firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_PATH")), "data/snapshots.json"),
		AttachMode:       resolveAttachMode(),
		Archive:          loadArchiveConfig(env),
	}, nil
}

func resolveAttachMode() chat.AttachMode {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("DOC_ATTACH_MODE")), "seed") {
		return chat.AttachSeed
	}
	return chat.AttachUpload
}

func loadArchiveConfig(env string) ArchiveConfig {
	endpoint := resolveArchiveEndpoint(env)
	return ArchiveConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "searcher-uploads"),
		UseSSL:    resolveArchiveUseSSL(env),
	}
}

func resolveArchiveEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARCHIVE_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT"))
}

func resolveArchiveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARCHIVE_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
