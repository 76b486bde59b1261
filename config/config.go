package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Gallery GalleryConfig `yaml:"gallery"`
	Imaging ImagingConfig `yaml:"imaging"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MongoConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
	// TimeoutSeconds bounds each store call. 0 falls back to the driver
	// default.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// StreamKey is the recency index stream. MaxLen is its by-convention
	// capacity (most recent N public blogs).
	StreamKey string `yaml:"stream_key"`
	MaxLen    int64  `yaml:"max_len"`
}

// KafkaConfig configures the optional activity event publisher. An empty
// broker list disables publishing entirely.
type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

// GalleryConfig locates gallery directories on disk and the public url
// prefix their files are served under.
type GalleryConfig struct {
	RootDir         string `yaml:"root_dir"`
	PublicURLPrefix string `yaml:"public_url_prefix"`
}

type ImagingConfig struct {
	// ExiftoolPath overrides the binary looked up on PATH when set.
	ExiftoolPath string `yaml:"exiftool_path"`
}

func (m MongoConfig) Timeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyDefaults(&c)
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Mongo.DBName == "" {
		c.Mongo.DBName = "blogforge"
	}
	if c.Redis.StreamKey == "" {
		c.Redis.StreamKey = "recent_blogs"
	}
	if c.Redis.MaxLen <= 0 {
		c.Redis.MaxLen = 50
	}
	if c.Gallery.PublicURLPrefix == "" {
		c.Gallery.PublicURLPrefix = "/images"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
