package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PaperSize describes a paper format in inches.
type PaperSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Config is the full service configuration, loaded from YAML.
type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		Prefork bool   `yaml:"prefork"`
	} `yaml:"server"`

	Limits struct {
		MaxUploadBytes int `yaml:"max_upload_bytes"`
		MaxOutputBytes int `yaml:"max_output_bytes"`
		MaxBatchFiles  int `yaml:"max_batch_files"`
		MaxPixels      int `yaml:"max_pixels"`
	} `yaml:"limits"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Cache struct {
		ResultCacheEnabled bool          `yaml:"result_cache_enabled"`
		ResultCacheTTL     time.Duration `yaml:"result_cache_ttl"`
		RedisHost          string        `yaml:"redis_host"`
		RateLimitDB        int           `yaml:"redis_rate_db"`
		ResultCacheDB      int           `yaml:"redis_cache_db"`
	} `yaml:"cache"`

	RateLimiter struct {
		Interval          time.Duration `yaml:"interval"`
		UserLimit         int           `yaml:"user_limit"`
		EnableUserLimiter bool          `yaml:"enable_user_limiter"`
	} `yaml:"rate_limiter"`

	Auth struct {
		PostgresDSN         string        `yaml:"postgres_dsn"`
		TokenReloadInterval time.Duration `yaml:"token_reload_interval"`
	} `yaml:"auth"`

	Storage struct {
		UploadDir string `yaml:"upload_dir"`
	} `yaml:"storage"`

	Convert struct {
		DefaultQuality int           `yaml:"default_quality"`
		Timeout        time.Duration `yaml:"timeout"`
		TextBackend    string        `yaml:"text_backend"`
		OfficeBinary   string        `yaml:"office_binary"`
		OCRLanguages   []string      `yaml:"ocr_languages"`
		OCRDPI         float64       `yaml:"ocr_dpi"`
		OCRMaxSide     int           `yaml:"ocr_max_side"`
	} `yaml:"convert"`

	Flashcards struct {
		MaxCards         int `yaml:"max_cards"`
		MinSentenceWords int `yaml:"min_sentence_words"`
	} `yaml:"flashcards"`

	PDF struct {
		DefaultPaper    string               `yaml:"default_paper"`
		PaperSizes      map[string]PaperSize `yaml:"paper_sizes"`
		Margin          float64              `yaml:"margin"`
		TimeoutSecs     int                  `yaml:"timeout_secs"`
		ChromePath      string               `yaml:"chrome_path"`
		ChromeNoSandbox bool                 `yaml:"chrome_no_sandbox"`
		ChromePoolSize  int                  `yaml:"chrome_pool_size"`
		UserDataDir     string               `yaml:"user_data_dir"`
	} `yaml:"pdf"`
}

const defaultPath = "config.yaml"

// Load reads the config file named by CONFIG_PATH, falling back to ./config.yaml.
// A missing default file yields the built-in defaults.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if _, err := os.Stat(defaultPath); err != nil {
			cfg := Default()
			applyEnv(&cfg)
			return cfg
		}
		path = defaultPath
	}
	return LoadFrom(path)
}

// LoadFrom parses the YAML file at path. It panics on unreadable files and
// invalid values, so misconfiguration stops the process at startup.
func LoadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Default returns a Config with every field set to its built-in default.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8000"
	}
	if cfg.Limits.MaxUploadBytes == 0 {
		cfg.Limits.MaxUploadBytes = 50 * 1024 * 1024
	}
	if cfg.Limits.MaxOutputBytes == 0 {
		cfg.Limits.MaxOutputBytes = 100 * 1024 * 1024
	}
	if cfg.Limits.MaxBatchFiles == 0 {
		cfg.Limits.MaxBatchFiles = 20
	}
	if cfg.Limits.MaxPixels == 0 {
		cfg.Limits.MaxPixels = 40_000_000
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Cache.ResultCacheTTL == 0 {
		cfg.Cache.ResultCacheTTL = 10 * time.Minute
	}
	if cfg.RateLimiter.Interval == 0 {
		cfg.RateLimiter.Interval = time.Minute
	}
	if cfg.Auth.TokenReloadInterval == 0 {
		cfg.Auth.TokenReloadInterval = time.Minute
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = "./uploads"
	}
	if cfg.Convert.DefaultQuality == 0 {
		cfg.Convert.DefaultQuality = 70
	}
	if cfg.Convert.Timeout == 0 {
		cfg.Convert.Timeout = 2 * time.Minute
	}
	if cfg.Convert.TextBackend == "" {
		cfg.Convert.TextBackend = "mupdf"
	}
	if cfg.Convert.OfficeBinary == "" {
		cfg.Convert.OfficeBinary = "soffice"
	}
	if len(cfg.Convert.OCRLanguages) == 0 {
		cfg.Convert.OCRLanguages = []string{"eng"}
	}
	if cfg.Convert.OCRDPI == 0 {
		cfg.Convert.OCRDPI = 150
	}
	if cfg.Convert.OCRMaxSide == 0 {
		cfg.Convert.OCRMaxSide = 4000
	}
	if cfg.Flashcards.MaxCards == 0 {
		cfg.Flashcards.MaxCards = 10
	}
	if cfg.Flashcards.MinSentenceWords == 0 {
		cfg.Flashcards.MinSentenceWords = 5
	}
	if cfg.PDF.DefaultPaper == "" {
		cfg.PDF.DefaultPaper = "A4"
	}
	if len(cfg.PDF.PaperSizes) == 0 {
		cfg.PDF.PaperSizes = map[string]PaperSize{
			"A4":     {Width: 8.27, Height: 11.69},
			"LETTER": {Width: 8.5, Height: 11},
		}
	}
	if cfg.PDF.Margin == 0 {
		cfg.PDF.Margin = 0.4
	}
	if cfg.PDF.TimeoutSecs == 0 {
		cfg.PDF.TimeoutSecs = 30
	}
}

// Allow common container env vars to override binary paths.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CHROME_BIN"); v != "" && cfg.PDF.ChromePath == "" {
		cfg.PDF.ChromePath = v
	}
	if v := os.Getenv("SOFFICE_BIN"); v != "" {
		cfg.Convert.OfficeBinary = v
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Limits.MaxUploadBytes < 0:
		return fmt.Errorf("limits.max_upload_bytes must be positive")
	case c.Limits.MaxOutputBytes < 0:
		return fmt.Errorf("limits.max_output_bytes must be positive")
	case c.Limits.MaxBatchFiles < 0:
		return fmt.Errorf("limits.max_batch_files must be positive")
	case c.Limits.MaxPixels < 0:
		return fmt.Errorf("limits.max_pixels must be positive")
	case c.RateLimiter.Interval < 0:
		return fmt.Errorf("rate_limiter.interval must be positive")
	case c.RateLimiter.UserLimit < 0:
		return fmt.Errorf("rate_limiter.user_limit must not be negative")
	case c.Auth.TokenReloadInterval < 0:
		return fmt.Errorf("auth.token_reload_interval must be positive")
	case c.Convert.DefaultQuality < 1 || c.Convert.DefaultQuality > 100:
		return fmt.Errorf("convert.default_quality must be between 1 and 100")
	case c.Convert.Timeout < 0:
		return fmt.Errorf("convert.timeout must be positive")
	case c.Convert.OCRDPI < 0:
		return fmt.Errorf("convert.ocr_dpi must be positive")
	case c.Convert.OCRMaxSide < 0:
		return fmt.Errorf("convert.ocr_max_side must be positive")
	case c.Flashcards.MaxCards < 0 || c.Flashcards.MinSentenceWords < 0:
		return fmt.Errorf("flashcards limits must not be negative")
	case c.PDF.ChromePoolSize < 0:
		return fmt.Errorf("pdf.chrome_pool_size must not be negative")
	}

	switch strings.ToLower(c.Convert.TextBackend) {
	case "mupdf", "native":
	default:
		return fmt.Errorf("convert.text_backend must be 'mupdf' or 'native', got %q", c.Convert.TextBackend)
	}

	if _, ok := c.PDF.PaperSizes[strings.ToUpper(c.PDF.DefaultPaper)]; !ok {
		return fmt.Errorf("pdf.default_paper %q not in pdf.paper_sizes", c.PDF.DefaultPaper)
	}
	return nil
}
