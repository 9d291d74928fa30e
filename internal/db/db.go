package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSQLitePath = "sensive.db"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Open 根据驱动名称建立连接，不执行迁移。
func Open(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = defaultSQLitePath
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		return gorm.Open(sqlite.Open(path), cfg)
	case DriverPostgres:
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate 为博客模型创建或更新表结构。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&Post{},
		&Tag{},
		&Comment{},
		&Like{},
	)
}

// Init 初始化全局数据库连接并执行自动迁移。
func Init(driver, dsn string, logLevel logger.LogLevel) error {
	gdb, err := Open(driver, dsn, logLevel)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
