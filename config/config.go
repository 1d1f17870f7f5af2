package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`
	CORSAllowOrigins   string        `mapstructure:"cors_allow_origins"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBSSLMode         string `mapstructure:"db_sslmode"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 缓存配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	CacheMaxCostMB     int64         `mapstructure:"cache_max_cost_mb"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`

	// 存储配置
	StorageOrigin         string `mapstructure:"storage_origin"`
	StorageBucket         string `mapstructure:"storage_bucket"`
	StorageFallbackImage  string `mapstructure:"storage_fallback_image"`
	StorageType           string `mapstructure:"storage_type"`
	StorageLocalPath      string `mapstructure:"storage_local_path"`
	StorageMinioEndpoint  string `mapstructure:"storage_minio_endpoint"`
	StorageMinioAccessKey string `mapstructure:"storage_minio_access_key"`
	StorageMinioSecretKey string `mapstructure:"storage_minio_secret_key"`
	StorageMinioUseSSL    bool   `mapstructure:"storage_minio_use_ssl"`

	// 模糊占位图配置
	BlurFetchTimeout time.Duration `mapstructure:"blur_fetch_timeout"`
	BlurMaxBytes     int64         `mapstructure:"blur_max_bytes"`

	// 画廊配置
	GalleryPerPage       int `mapstructure:"gallery_per_page"`
	AssemblerConcurrency int `mapstructure:"assembler_concurrency"`

	// 作者介绍
	ArtistBioPath string `mapstructure:"artist_bio_path"`

	// 限流配置
	RateLimitApiRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`
	MaxConcurrency      int64         `mapstructure:"max_concurrency"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	configFile := viper.GetString("config_file_path")
	if configFile == "" {
		configFile = ".env"
		viper.SetConfigType("env")
	}
	viper.SetConfigFile(configFile)

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Info: %s not found, using defaults and environment variables\n", configFile)
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", configFile)
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}

	globalConfig.normalize()
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 9090)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")
	viper.SetDefault("cors_allow_origins", "http://localhost:3000")

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "postgres")
	viper.SetDefault("db_sslmode", "require")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 20)
	viper.SetDefault("db_max_idle_conns", 5)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	// 缓存配置默认值
	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_ttl", "60s")
	viper.SetDefault("cache_max_cost_mb", 64)
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)

	// 存储配置默认值
	viper.SetDefault("storage_origin", "")
	viper.SetDefault("storage_bucket", "gallery-images")
	viper.SetDefault("storage_fallback_image", "/fallback-image.jpg")
	viper.SetDefault("storage_type", "http")
	viper.SetDefault("storage_local_path", "./data/storage")
	viper.SetDefault("storage_minio_endpoint", "")
	viper.SetDefault("storage_minio_access_key", "")
	viper.SetDefault("storage_minio_secret_key", "")
	viper.SetDefault("storage_minio_use_ssl", true)

	// 模糊占位图默认值
	viper.SetDefault("blur_fetch_timeout", "10s")
	viper.SetDefault("blur_max_bytes", 10<<20)

	// 画廊默认值
	viper.SetDefault("gallery_per_page", 12)
	viper.SetDefault("assembler_concurrency", 0) // 0 表示使用默认值

	viper.SetDefault("artist_bio_path", "")

	// 限流配置默认值
	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_expire_time", "10m")
	viper.SetDefault("max_concurrency", 100)
}

// normalize 修正非法配置值
func (c *Config) normalize() {
	c.StorageOrigin = strings.TrimRight(c.StorageOrigin, "/")
	if c.CacheTTL <= 0 {
		c.CacheTTL = 60 * time.Second
	}
	if c.GalleryPerPage <= 0 {
		c.GalleryPerPage = 12
	}
	if c.BlurMaxBytes <= 0 {
		c.BlurMaxBytes = 10 << 20
	}
	if c.BlurFetchTimeout <= 0 {
		c.BlurFetchTimeout = 10 * time.Second
	}
	// AssemblerConcurrency: 0 = 使用默认值 (CPU 线程数 * 4), >0 = 使用指定值
	if c.AssemblerConcurrency <= 0 {
		c.AssemblerConcurrency = runtime.GOMAXPROCS(0) * 4
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 100
	}
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 9090
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// AllowOrigins 返回 CORS 允许的来源列表
func (c *Config) AllowOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// PostgresDSN 构建 PostgreSQL 连接字符串
func (c *Config) PostgresDSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUsername, c.DBPassword, c.DBName, sslMode)
}
