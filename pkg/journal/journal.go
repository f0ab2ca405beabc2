package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run 一次操作执行记录
type Run struct {
	ID         int64
	Op         string
	AccountID  *string
	StartedAt  time.Time
	FinishedAt *time.Time
	OK         *bool
	Error      *string
	MetaJSON   *string
}

// Recorder 记录操作的开始和结束
type Recorder interface {
	Start(ctx context.Context, op string, accountID string, meta any) (int64, error)
	Finish(ctx context.Context, runID int64, runErr error, meta any) error
}

// Nop 不记录任何内容
type Nop struct{}

func (Nop) Start(context.Context, string, string, any) (int64, error) { return 0, nil }
func (Nop) Finish(context.Context, int64, error, any) error           { return nil }

var _ Recorder = (*Journal)(nil)

// Journal 基于 sqlite 的操作日志
type Journal struct {
	db *sql.DB
}

// Open 打开 sqlite 库并建表
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close 关闭
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS op_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  op TEXT NOT NULL,
  account_id TEXT,
  started_at TEXT NOT NULL,
  finished_at TEXT,
  ok INTEGER,
  error TEXT,
  meta_json TEXT
);`,
		`CREATE INDEX IF NOT EXISTS idx_op_runs_started_at ON op_runs(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Start 记录操作开始，返回记录 ID
func (j *Journal) Start(ctx context.Context, op string, accountID string, meta any) (int64, error) {
	metaJSON, err := encodeMeta(meta)
	if err != nil {
		return 0, err
	}
	res, err := j.db.ExecContext(ctx, `
INSERT INTO op_runs (op, account_id, started_at, meta_json)
VALUES (?,?,?,?)
`, op, nullString(accountID), time.Now().Format(time.RFC3339Nano), metaJSON)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Finish 记录操作结束，runErr 为 nil 表示成功
// meta 为 nil 时保留开始时写入的 meta
func (j *Journal) Finish(ctx context.Context, runID int64, runErr error, meta any) error {
	metaJSON, err := encodeMeta(meta)
	if err != nil {
		return err
	}
	var errMsg *string
	if runErr != nil {
		v := runErr.Error()
		errMsg = &v
	}
	_, err = j.db.ExecContext(ctx, `
UPDATE op_runs
SET finished_at=?, ok=?, error=?, meta_json=COALESCE(?, meta_json)
WHERE id=?
`, time.Now().Format(time.RFC3339Nano), boolToInt(runErr == nil), errMsg, metaJSON, runID)
	return err
}

// List 按开始时间倒序列出最近的记录
func (j *Journal) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, op, account_id, started_at, finished_at, ok, error, meta_json
FROM op_runs
ORDER BY id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			accountID  sql.NullString
			startedAt  string
			finishedAt sql.NullString
			okVal      sql.NullInt64
			errStr     sql.NullString
			meta       sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Op, &accountID, &startedAt, &finishedAt, &okVal, &errStr, &meta); err != nil {
			return nil, err
		}
		if accountID.Valid {
			v := accountID.String
			r.AccountID = &v
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			if t, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
				r.FinishedAt = &t
			}
		}
		if okVal.Valid {
			v := okVal.Int64 != 0
			r.OK = &v
		}
		if errStr.Valid {
			v := errStr.String
			r.Error = &v
		}
		if meta.Valid {
			v := meta.String
			r.MetaJSON = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func encodeMeta(meta any) (*string, error) {
	if meta == nil {
		return nil, nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	s := string(b)
	return &s, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
