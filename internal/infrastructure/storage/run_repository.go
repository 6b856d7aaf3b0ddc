package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// RunStatusRunning 运行中的状态，End 时被覆盖
const RunStatusRunning = "RUNNING"

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("run not found")

// RunRecord 一次运行的持久化记录
type RunRecord struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    string            `json:"status"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   *time.Time        `json:"ended_at,omitempty"`
	Params    map[string]string `json:"params"`
}

// RunRepository 运行记录 SQLite 仓储
type RunRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewRunRepository 创建运行记录仓储
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{
		db:     db,
		now:    time.Now,
		logger: log.NewModuleLogger("storage", "runs"),
	}
}

// ProvideRunRepository 数据库未启用时返回 nil
func ProvideRunRepository(db *sql.DB) *RunRepository {
	if db == nil {
		return nil
	}
	return NewRunRepository(db)
}

// ProvideRunTracker 将仓储作为 RunTracker 提供，未启用时返回 nil 接口
func ProvideRunTracker(repo *RunRepository) domainRAG.RunTracker {
	if repo == nil {
		return nil
	}
	return repo
}

// StartRun 插入一条运行中的记录
func (r *RunRepository) StartRun(ctx context.Context, name string) (domainRAG.Run, error) {
	run := &sqliteRun{
		repo:   r,
		id:     uuid.New().String(),
		params: make(map[string]string),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, status, started_at) VALUES (?, ?, ?, ?)`,
		run.id, name, RunStatusRunning, r.now().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// Get 按 ID 查询
func (r *RunRepository) Get(ctx context.Context, id string) (*RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, status, started_at, ended_at FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	params, err := r.loadParams(ctx, []string{rec.ID})
	if err != nil {
		return nil, err
	}
	rec.Params = params[rec.ID]
	if rec.Params == nil {
		rec.Params = map[string]string{}
	}
	return rec, nil
}

// Page 分页查询，按开始时间倒序，page 从 1 开始；返回当前页与总条数
func (r *RunRepository) Page(ctx context.Context, page, pageSize int) ([]*RunRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}
	records, err := r.list(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *RunRepository) list(ctx context.Context, limit, offset int) ([]*RunRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, status, started_at, ended_at FROM runs ORDER BY started_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	var ids []string
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	params, err := r.loadParams(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		rec.Params = params[rec.ID]
		if rec.Params == nil {
			rec.Params = map[string]string{}
		}
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		rec       RunRecord
		startedAt int64
		endedAt   sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Status, &startedAt, &endedAt); err != nil {
		return nil, err
	}
	rec.StartedAt = time.UnixMilli(startedAt)
	if endedAt.Valid {
		t := time.UnixMilli(endedAt.Int64)
		rec.EndedAt = &t
	}
	return &rec, nil
}

func (r *RunRepository) loadParams(ctx context.Context, ids []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT run_id, key, value FROM run_params WHERE run_id IN (?` + repeatPlaceholders(len(ids)-1) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run params: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var runID, key, value string
		if err := rows.Scan(&runID, &key, &value); err != nil {
			return nil, err
		}
		if out[runID] == nil {
			out[runID] = make(map[string]string)
		}
		out[runID][key] = value
	}
	return out, rows.Err()
}

func repeatPlaceholders(n int) string {
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		b = append(b, ", ?"...)
	}
	return string(b)
}

// sqliteRun 参数先缓存在内存，End 时与状态一起在一个事务中写入
type sqliteRun struct {
	repo   *RunRepository
	id     string
	mu     sync.Mutex
	params map[string]string
	ended  bool
}

func (r *sqliteRun) ID() string { return r.id }

func (r *sqliteRun) LogParam(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params[key] = fmt.Sprint(value)
}

func (r *sqliteRun) End(ctx context.Context, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ended {
		return nil
	}

	tx, err := r.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range r.params {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_params (run_id, key, value) VALUES (?, ?, ?)
			 ON CONFLICT(run_id, key) DO UPDATE SET value = excluded.value`,
			r.id, key, value)
		if err != nil {
			return fmt.Errorf("failed to save param %s: %w", key, err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, ended_at = ? WHERE id = ?`,
		status, r.repo.now().UnixMilli(), r.id)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	r.ended = true
	r.repo.logger.DebugContext(ctx, "Run ended", "run_id", r.id, "status", status, "params", len(r.params))
	return nil
}

var _ domainRAG.RunTracker = (*RunRepository)(nil)
