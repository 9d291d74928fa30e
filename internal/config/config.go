package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	Env            string `mapstructure:"app_env" validate:"required,oneof=dev test prod"`
	LogLevel       string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ListenAddr     string `mapstructure:"listen_addr" validate:"required"`
	Port           string `mapstructure:"port" validate:"required,numeric"`
	DatabaseDriver string `mapstructure:"database_driver" validate:"required,oneof=sqlite postgres"`
	DatabaseDSN    string `mapstructure:"database_dsn" validate:"required"`
	GinMode        string `mapstructure:"gin_mode" validate:"required,oneof=debug release test"`
	MediaDir       string `mapstructure:"media_dir" validate:"required"`
	MediaURLPath   string `mapstructure:"media_url_path" validate:"required,startswith=/"`
	MetricsPath    string `mapstructure:"metrics_path" validate:"required,startswith=/"`
}

var configKeys = []string{
	"app_env",
	"log_level",
	"listen_addr",
	"port",
	"database_driver",
	"database_dsn",
	"gin_mode",
	"media_dir",
	"media_url_path",
	"metrics_path",
}

// Load 从 .env、环境变量与可选的 config.yaml 读取应用配置，并为缺失项提供默认值。
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	// 环境变量使用大写形式，例如 DATABASE_DSN
	for _, key := range configKeys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return AppConfig{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	normalize(&cfg)

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate 校验配置取值是否合法。
func Validate(cfg AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", "")
	v.SetDefault("port", "8080")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_dsn", "sensive.db")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("media_dir", "media")
	v.SetDefault("media_url_path", "/media")
	v.SetDefault("metrics_path", "/metrics")
}

func normalize(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	cfg.DatabaseDSN = strings.TrimSpace(cfg.DatabaseDSN)
	cfg.GinMode = strings.ToLower(strings.TrimSpace(cfg.GinMode))
	cfg.MediaDir = strings.TrimSpace(cfg.MediaDir)
	cfg.MediaURLPath = strings.TrimRight(strings.TrimSpace(cfg.MediaURLPath), "/")
	if cfg.MediaURLPath == "" {
		cfg.MediaURLPath = "/"
	}
}
