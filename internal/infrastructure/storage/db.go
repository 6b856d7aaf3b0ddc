package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pyassist/backend/internal/infrastructure/config"
	_ "modernc.org/sqlite"
)

// OpenDB 打开数据库连接，目录不存在时自动创建
func OpenDB(dbPath string) (*sql.DB, error) {
	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 请求并发写入运行记录，WAL 减少锁冲突
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// InitDatabase 初始化表结构
func InitDatabase(db *sql.DB) error {
	createRunsSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER
	);`

	if _, err := db.Exec(createRunsSQL); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	createParamsSQL := `
	CREATE TABLE IF NOT EXISTS run_params (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);`

	if _, err := db.Exec(createParamsSQL); err != nil {
		return fmt.Errorf("failed to create run_params table: %w", err)
	}

	// 创建索引
	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_name ON runs(name);`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create runs indexes: %w", err)
	}

	return nil
}

// ProvideDB 打开运行记录数据库；关闭跟踪时返回 nil
func ProvideDB(cfg *config.TrackingConfig) (*sql.DB, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	db, err := OpenDB(cfg.TrackingDBPath())
	if err != nil {
		return nil, nil, err
	}
	if err := InitDatabase(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}
