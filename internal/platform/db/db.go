package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

const driverName = "mysql"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// RFIDConfig: バッジリーダ関連の設定
type RFIDConfig struct {
	// 同一従業員の連続打刻を弾く最小間隔（分）。リーダの二重読み対策。
	MinIntervalMinutes int `yaml:"min_interval_minutes"`
}

type NATSConfig struct {
	URL string `yaml:"url"` // 空ならNATS連携なし（プロセス内Hubのみ）
}

type AuthConfig struct {
	Secret string `yaml:"secret"`
}

type UploadsConfig struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	DB          DatabaseConfig `yaml:"database"`
	Certificate Certs          `yaml:"certificate"`
	RFID        RFIDConfig     `yaml:"rfid"`
	NATS        NATSConfig     `yaml:"nats"`
	Auth        AuthConfig     `yaml:"auth"`
	Uploads     UploadsConfig  `yaml:"uploads"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}
	if cfg.RFID.MinIntervalMinutes < 0 {
		return nil, fmt.Errorf("rfid.min_interval_minutes は0以上にすること")
	}
	if cfg.RFID.MinIntervalMinutes == 0 {
		cfg.RFID.MinIntervalMinutes = 5
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "uploads"
	}
	return &cfg, nil
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC&multiStatements=true",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("接続準備に失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB接続に失敗: %w", err)
	}

	// 接続プール（合算がMySQLの max_connections を超えないよう配分する）
	db.SetMaxOpenConns(80)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
