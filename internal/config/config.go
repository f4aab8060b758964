package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит конфигурацию сервиса. Все компоненты получают её
// явно в конструкторах, прямых обращений к окружению внутри
// обработчиков нет.
type Config struct {
	ServerAddress    string `json:"server_address"`
	BaseURL          string `json:"base_url"`
	DatabaseDSN      string `json:"database_dsn"`
	RedisAddr        string `json:"redis_addr"`
	PgMigrationsPath string `json:"pg_migrations_path"`
	EnableHTTPS      bool   `json:"enable_https"`
	TLSCertPath      string `json:"tls_cert_path"`
	TLSKeyPath       string `json:"tls_key_path"`
	Environment      string `json:"environment"`
	ProxySecret      string `json:"-"`
	SMTPHost         string `json:"smtp_host"`
	SMTPPort         int    `json:"smtp_port"`
	SMTPUser         string `json:"-"`
	SMTPSecret       string `json:"-"`
	ContactCopy      string `json:"contact_copy"`
	StaticDir        string `json:"static_dir"`
	DefaultTimeout   int    `json:"default_timeout_seconds"`
	MaxTimeout       int    `json:"max_timeout_seconds"`
	BackstopMinutes  int    `json:"backstop_minutes"`
	TokenLength      int    `json:"token_length"`
	Mode             string `json:"-"`
}

// NewConfig инициализирует конфигурацию: значения по умолчанию,
// переменные окружения (и .env, если есть), флаги командной строки
// и необязательный JSON-файл.
func NewConfig() *Config {

	viper.SetDefault("SERVER_ADDRESS", "localhost:3000") // Значения по умолчанию
	viper.SetDefault("BASE_URL", "http://localhost:3000")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("PG_MIGRATIONS_PATH", "internal/migrations")
	viper.SetDefault("ENABLE_HTTPS", false)
	viper.SetDefault("TLS_CERT_PATH", "cert.pem")
	viper.SetDefault("TLS_KEY_PATH", "key.pem")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("RAPID_API_PROXY_SECRET", "")
	viper.SetDefault("SMTP_HOST", "smtp.zoho.eu")
	viper.SetDefault("SMTP_PORT", 465)
	viper.SetDefault("EMAIL_USER", "")
	viper.SetDefault("EMAIL_SECRET", "")
	viper.SetDefault("EMAIL_COPY", "")
	viper.SetDefault("STATIC_DIR", "public")
	viper.SetDefault("DEFAULT_TIMEOUT_SECONDS", 180)
	viper.SetDefault("MAX_TIMEOUT_SECONDS", 600)
	viper.SetDefault("BACKSTOP_MINUTES", 60)
	viper.SetDefault("TOKEN_LENGTH", 7)

	viper.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // Ошибку игнорируем, если файла нет

	// Определяем флаги, но НЕ задаем в них значения по умолчанию
	serverAddress := flag.String("a", "", "server address")
	baseURL := flag.String("b", "", "base URL")
	databaseDSN := flag.String("d", "", "PostgreSQL DSN")
	redisAddr := flag.String("r", "", "Redis address")
	enableHTTPS := flag.Bool("s", false, "enable HTTPS")
	tlsCertPath := flag.String("cert", "", "path to TLS certificate")
	tlsKeyPath := flag.String("key", "", "path to TLS key")
	environment := flag.String("e", "", "environment (development|production)")
	configPath := flag.String("c", "", "path to JSON config file")
	flag.StringVar(configPath, "config", "", "path to JSON config file")

	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}

	cfg := &Config{
		ServerAddress:    viper.GetString("SERVER_ADDRESS"),
		BaseURL:          viper.GetString("BASE_URL"),
		DatabaseDSN:      viper.GetString("DATABASE_DSN"),
		RedisAddr:        viper.GetString("REDIS_ADDR"),
		PgMigrationsPath: viper.GetString("PG_MIGRATIONS_PATH"),
		EnableHTTPS:      viper.GetBool("ENABLE_HTTPS"),
		TLSCertPath:      viper.GetString("TLS_CERT_PATH"),
		TLSKeyPath:       viper.GetString("TLS_KEY_PATH"),
		Environment:      viper.GetString("ENVIRONMENT"),
		ProxySecret:      viper.GetString("RAPID_API_PROXY_SECRET"),
		SMTPHost:         viper.GetString("SMTP_HOST"),
		SMTPPort:         viper.GetInt("SMTP_PORT"),
		SMTPUser:         viper.GetString("EMAIL_USER"),
		SMTPSecret:       viper.GetString("EMAIL_SECRET"),
		ContactCopy:      viper.GetString("EMAIL_COPY"),
		StaticDir:        viper.GetString("STATIC_DIR"),
		DefaultTimeout:   viper.GetInt("DEFAULT_TIMEOUT_SECONDS"),
		MaxTimeout:       viper.GetInt("MAX_TIMEOUT_SECONDS"),
		BackstopMinutes:  viper.GetInt("BACKSTOP_MINUTES"),
		TokenLength:      viper.GetInt("TOKEN_LENGTH"),
	}

	// JSON-файл заполняет только то, что не задано окружением
	if *configPath != "" {
		applyJSONFile(cfg, *configPath)
	}

	// Если флаг передан — он имеет высший приоритет
	if *serverAddress != "" {
		cfg.ServerAddress = *serverAddress
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *databaseDSN != "" {
		cfg.DatabaseDSN = *databaseDSN
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}
	if *environment != "" {
		cfg.Environment = *environment
	}
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}
	if *tlsCertPath != "" {
		cfg.TLSCertPath = *tlsCertPath
	}
	if *tlsKeyPath != "" {
		cfg.TLSKeyPath = *tlsKeyPath
	}

	// Определяем режим хранилища
	if cfg.DatabaseDSN != "" {
		cfg.Mode = "database"
	} else if cfg.RedisAddr != "" {
		cfg.Mode = "redis"
	} else {
		cfg.Mode = "memory"
	}

	log.Printf("Инициализация конфигурации: ServerAddress=%s", cfg.ServerAddress)
	log.Printf("Инициализация конфигурации: BaseURL=%s", cfg.BaseURL)
	log.Printf("Инициализация конфигурации: Mode=%s", cfg.Mode)
	log.Printf("Инициализация конфигурации: Environment=%s", cfg.Environment)
	log.Printf("Инициализация конфигурации: EnableHTTPS=%v", cfg.EnableHTTPS)

	return cfg
}

// applyJSONFile накладывает значения из JSON-файла поверх значений
// по умолчанию. Переменные окружения и флаги его переопределяют.
func applyJSONFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Не удалось прочитать JSON-файл конфигурации %q: %v", path, err)
		return
	}
	type rawJSON Config
	if err := json.Unmarshal(data, (*rawJSON)(cfg)); err != nil {
		log.Printf("Ошибка разбора JSON-файла конфигурации: %v", err)
	}
}

// Validate проверяет корректность конфигурации.
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("базовый URL не может быть пустым")
	}
	if cfg.TokenLength <= 0 {
		return fmt.Errorf("длина токена должна быть положительной")
	}
	if cfg.DefaultTimeout < 0 || cfg.MaxTimeout < cfg.DefaultTimeout {
		return fmt.Errorf("границы таймаута заданы некорректно")
	}
	if cfg.BackstopMinutes <= 0 {
		return fmt.Errorf("страховочное окно должно быть положительным")
	}
	if cfg.Environment == "production" && cfg.ProxySecret == "" {
		return fmt.Errorf("в production обязателен RAPID_API_PROXY_SECRET")
	}
	return nil
}

// DefaultLinkTTL — мягкий таймаут по умолчанию.
func (cfg *Config) DefaultLinkTTL() time.Duration {
	return time.Duration(cfg.DefaultTimeout) * time.Second
}

// MaxLinkTTL — верхняя граница мягкого таймаута.
func (cfg *Config) MaxLinkTTL() time.Duration {
	return time.Duration(cfg.MaxTimeout) * time.Second
}

// BackstopTTL — абсолютное окно жизни записи на стороне хранилища.
func (cfg *Config) BackstopTTL() time.Duration {
	return time.Duration(cfg.BackstopMinutes) * time.Minute
}
