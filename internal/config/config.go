package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort        = 8000
	defaultMaxFileSize = 50 * 1024 * 1024
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultModel       = "gemini-2.0-flash"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		IdleTimeout  time.Duration `yaml:"idleTimeout"`
	} `yaml:"server"`

	AI struct {
		APIKey      string        `yaml:"apiKey"`
		BaseURL     string        `yaml:"baseURL"`
		TextModel   string        `yaml:"textModel"`
		VisionModel string        `yaml:"visionModel"`
		// Timeout bounds each completion call; zero keeps the client default (none).
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	Upload struct {
		Dir         string `yaml:"dir"`
		MaxFileSize int64  `yaml:"maxFileSize"`
	} `yaml:"upload"`

	Storage struct {
		// Driver is "local" or "minio".
		Driver string `yaml:"driver"`
		Minio  struct {
			Endpoint   string `yaml:"endpoint"`
			AccessKey  string `yaml:"accessKey"`
			SecretKey  string `yaml:"secretKey"`
			BucketName string `yaml:"bucketName"`
			Region     string `yaml:"region"`
			UseSSL     bool   `yaml:"useSSL"`
			Prefix     string `yaml:"prefix"`
		} `yaml:"minio"`
	} `yaml:"storage"`

	OCR struct {
		Tesseract   string `yaml:"tesseract"`
		Lang        string `yaml:"lang"`
		TessdataDir string `yaml:"tessdataDir"`
	} `yaml:"ocr"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns a config that only lacks the AI key.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = defaultPort
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 180 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.AI.BaseURL = defaultBaseURL
	cfg.AI.TextModel = defaultModel
	cfg.AI.VisionModel = defaultModel
	cfg.Upload.Dir = "uploads"
	cfg.Upload.MaxFileSize = defaultMaxFileSize
	cfg.Storage.Driver = "local"
	cfg.Storage.Minio.Prefix = "uploads/"
	cfg.OCR.Tesseract = "tesseract"
	cfg.OCR.Lang = "eng"
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.Log.Level = "info"
	return &cfg
}

// Load baca file config.yaml, lalu override dari environment.
// File yang tidak ada berarti pakai default.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.AI.APIKey, "GEMINI_API_KEY", "AI_API_KEY")
	str(&c.AI.BaseURL, "AI_BASE_URL")
	str(&c.AI.TextModel, "AI_TEXT_MODEL")
	str(&c.AI.VisionModel, "AI_VISION_MODEL")
	str(&c.Upload.Dir, "UPLOAD_DIR")
	str(&c.Storage.Driver, "STORAGE_DRIVER")
	str(&c.Storage.Minio.Endpoint, "MINIO_ENDPOINT")
	str(&c.Storage.Minio.AccessKey, "MINIO_ACCESS_KEY")
	str(&c.Storage.Minio.SecretKey, "MINIO_SECRET_KEY")
	str(&c.Storage.Minio.BucketName, "MINIO_BUCKET")
	str(&c.Storage.Minio.Region, "MINIO_REGION")
	str(&c.OCR.Tesseract, "TESSERACT_PATH")
	str(&c.OCR.Lang, "TESSERACT_LANG")
	str(&c.Log.Level, "LOG_LEVEL")

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("MAX_FILE_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_FILE_SIZE: %w", err)
		}
		c.Upload.MaxFileSize = size
	}
	if v := getenv("MINIO_USE_SSL"); v != "" {
		ssl, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MINIO_USE_SSL: %w", err)
		}
		c.Storage.Minio.UseSSL = ssl
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	return nil
}

// Validate checks what the server cannot start without.
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return errors.New("ai.apiKey is required (set GEMINI_API_KEY)")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.maxFileSize must be positive, got %d", c.Upload.MaxFileSize)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Driver {
	case "local":
		if c.Upload.Dir == "" {
			return errors.New("upload.dir is required for the local driver")
		}
	case "minio":
		m := c.Storage.Minio
		if m.Endpoint == "" || m.BucketName == "" {
			return errors.New("storage.minio.endpoint and bucketName are required for the minio driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q (local, minio)", c.Storage.Driver)
	}
	return nil
}

// Addr for http.Server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
