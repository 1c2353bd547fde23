package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string

	MaxOpenConns int
	MaxIdleConns int
	LogMode      bool
}

// ParseDatabaseConfigFromEnv DB_DRIVER_TYPE, DB_DRIVER_ARGS, DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS, DB_LOG_MODE
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	config := &DatabaseConfig{
		DriverType: os.Getenv("DB_DRIVER_TYPE"),
		DriverArgs: os.Getenv("DB_DRIVER_ARGS"),
		LogMode:    os.Getenv("GIN_MODE") != "release",
	}
	if config.DriverType == "" {
		config.DriverType = "mysql"
	}
	if config.DriverArgs == "" {
		return nil, errors.New("DB_DRIVER_ARGS is required")
	}

	var err error
	if config.MaxOpenConns, err = intFromEnv("DB_MAX_OPEN_CONNS"); err != nil {
		return nil, err
	}
	if config.MaxIdleConns, err = intFromEnv("DB_MAX_IDLE_CONNS"); err != nil {
		return nil, err
	}
	if v := os.Getenv("DB_LOG_MODE"); v != "" {
		if config.LogMode, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid DB_LOG_MODE '%s': %w", v, err)
		}
	}
	return config, nil
}

func intFromEnv(name string) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, v, err)
	}
	return n, nil
}

// PrepareMysqlDatabase creates the database named in the dsn if it does not exist.
func PrepareMysqlDatabase(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	databaseName := cfg.DBName
	if databaseName == "" {
		return errors.New("database name is missing in dsn")
	}
	cfg.DBName = ""

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	return err
}
