// Package ledger 持久化每个签名请求的终态，一个 correlation id 只记录一次。
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Outcome 取值。
const (
	OutcomeSigned   = "signed"
	OutcomeRejected = "rejected"
	OutcomeTimedOut = "timed_out"
	// OutcomeAbandoned 表示调用方在终态前取消了请求。
	OutcomeAbandoned = "abandoned"
)

// ErrNotFound 表示没有该请求的记录。
var ErrNotFound = errors.New("outcome not found")

// Entry 是一条终态记录，不包含任何凭证或签名材料。
type Entry struct {
	CorrelationID string
	Account       string
	Kind          string
	Outcome       string
	// Code 为拒绝/超时时的错误码。
	Code       string
	TxHash     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Ledger 使用 SQLite（WAL 模式）存储终态。
type Ledger struct {
	db *sql.DB
}

// Open 打开或创建数据库文件，自动应用 pragma 与表结构。
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger: %w", err)
	}
	// SQLite 只允许单写者。
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close 关闭数据库。
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Record 写入终态；同一 correlation id 的重复写入被忽略，返回 false。
func (l *Ledger) Record(ctx context.Context, e Entry) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO sign_outcomes
		(correlation_id, account, kind, outcome, code, tx_hash, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(correlation_id) DO NOTHING
	`,
		e.CorrelationID,
		e.Account,
		e.Kind,
		e.Outcome,
		e.Code,
		e.TxHash,
		e.StartedAt.UnixMilli(),
		e.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("record outcome: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record outcome: %w", err)
	}
	return n == 1, nil
}

// Get 读取单个请求的终态。
func (l *Ledger) Get(ctx context.Context, correlationID string) (Entry, error) {
	var (
		e                 Entry
		started, finished int64
	)
	err := l.db.QueryRowContext(ctx, `
		SELECT correlation_id, account, kind, outcome, code, tx_hash, started_at, finished_at
		FROM sign_outcomes WHERE correlation_id = ?
	`, correlationID).Scan(&e.CorrelationID, &e.Account, &e.Kind, &e.Outcome, &e.Code, &e.TxHash, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get outcome: %w", err)
	}
	e.StartedAt = time.UnixMilli(started)
	e.FinishedAt = time.UnixMilli(finished)
	return e, nil
}

// Counts 按终态汇总。
func (l *Ledger) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM sign_outcomes GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("count outcomes: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}
