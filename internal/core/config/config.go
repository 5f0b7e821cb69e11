package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

// DB driver: mongo | postgres | mysql | sqlite | memory
type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mongo struct {
	URI               string
	Database          string
	ConnectTimeoutSec int
	EnsureIndexes     bool
}

type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
}

type S3 struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	BaseURL   string
}

// ImageHost driver: cloudinary | s3
type ImageHost struct {
	Driver     string
	Folder     string
	Cloudinary Cloudinary
	S3         S3
}

type Upload struct {
	MaxFiles      int
	MaxFileSizeMB int
}

func (u Upload) MaxFileBytes() int64 { return int64(u.MaxFileSizeMB) << 20 }

type Admin struct {
	RequireAuth bool
}

type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	TimeoutSec  int
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Mongo     Mongo
	ImageHost ImageHost `mapstructure:"imageHost"`
	Upload    Upload
	Admin     Admin
	Limits    Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "scentify")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 60)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 3001)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)

	v.SetDefault("jwt.issuer", "scentify")
	v.SetDefault("jwt.accessTokenTTLMin", 7*24*60)

	v.SetDefault("db.driver", "mongo")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "perfume-store")
	v.SetDefault("mongo.connectTimeoutSec", 10)
	v.SetDefault("mongo.ensureIndexes", true)

	v.SetDefault("imageHost.driver", "cloudinary")
	v.SetDefault("imageHost.folder", "perfumes")

	v.SetDefault("upload.maxFiles", 10)
	v.SetDefault("upload.maxFileSizeMB", 10)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.concurrency", 256)
	v.SetDefault("limits.timeoutSec", 30)
}

// Read 读取配置；文件不存在时仅使用默认值 + 环境变量
func Read(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if c.JWT.Secret == "" && c.App.Env != "local" {
		return nil, errors.New("jwt.secret is required")
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
