package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents application configuration loaded from environment
// variables, optionally overlaid on a YAML config file.
type Config struct {
	AppEnv           string
	Port             string
	AzureAPIKey      string
	AzureEndpoint    string
	AzureDeployment  string
	AzureAPIVersion  string
	ImagesDir        string
	StorageBaseURL   string
	ProviderTimeout  time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// fileConfig is the YAML shape accepted through CONFIG_FILE. Every field is
// optional; environment variables win over file values.
type fileConfig struct {
	AppEnv     string `yaml:"app_env"`
	Port       string `yaml:"port"`
	ImagesDir  string `yaml:"images_dir"`
	StorageURL string `yaml:"storage_base_url"`
	Azure      struct {
		APIKey     string `yaml:"api_key"`
		Endpoint   string `yaml:"endpoint"`
		Deployment string `yaml:"deployment"`
		APIVersion string `yaml:"api_version"`
	} `yaml:"azure"`
}

// LoadConfig loads configuration and applies defaults where needed. The Azure
// OpenAI credentials are required; everything else has a sane fallback.
func LoadConfig() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", firstNonEmpty(file.AppEnv, "development")),
		Port:             getEnv("PORT", firstNonEmpty(file.Port, "8080")),
		AzureAPIKey:      getEnv("AZURE_OPENAI_API_KEY", file.Azure.APIKey),
		AzureEndpoint:    getEnv("AZURE_OPENAI_ENDPOINT", file.Azure.Endpoint),
		AzureDeployment:  getEnv("AZURE_OPENAI_DALLE_DEPLOYMENT", firstNonEmpty(file.Azure.Deployment, "dalle3")),
		AzureAPIVersion:  getEnv("AZURE_OPENAI_API_VERSION", firstNonEmpty(file.Azure.APIVersion, "2024-02-01")),
		ImagesDir:        getEnv("IMAGES_DIR", firstNonEmpty(file.ImagesDir, "images")),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", firstNonEmpty(file.StorageURL, "http://localhost:8080/static")),
		ProviderTimeout:  time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 120)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.AzureAPIKey == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_API_KEY is required")
	}

	if cfg.AzureEndpoint == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
