package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound 查無資料
var ErrNotFound = errors.New("analysis not found")

// Analysis 已保存的菜餚分析
type Analysis struct {
	ID          int64     `json:"id"`
	DishName    string    `json:"dish_name"`
	Ingredients []string  `json:"ingredients"`
	RecipeSteps []string  `json:"recipe_steps"`
	FunFacts    []string  `json:"fun_facts"`
	ImageHash   string    `json:"image_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnalysisSummary 歷史列表中的精簡資料
type AnalysisSummary struct {
	ID          int64     `json:"id"`
	DishName    string    `json:"dish_name"`
	Ingredients []string  `json:"ingredients"`
	CreatedAt   time.Time `json:"created_at"`
}

// 固定寬度，字串排序即時間排序
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore 以 SQLite 保存分析結果
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

const createTableQuery = `
CREATE TABLE IF NOT EXISTS food_analyses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dish_name TEXT NOT NULL,
	ingredients TEXT,
	recipe_steps TEXT,
	fun_facts TEXT,
	image_hash TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const createIndexQuery = `CREATE INDEX IF NOT EXISTS idx_food_analyses_created_at ON food_analyses(created_at);`

// NewSQLiteStore 開啟資料庫並建立資料表
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	common.LogInfo("資料庫已初始化", zap.String("path", dbPath))
	return store, nil
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec(createTableQuery); err != nil {
		return fmt.Errorf("failed to create food_analyses table: %w", err)
	}
	if _, err := s.db.Exec(createIndexQuery); err != nil {
		return fmt.Errorf("failed to create food_analyses index: %w", err)
	}
	return nil
}

// SaveAnalysis 保存分析並回傳新的 ID
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *Analysis) (int64, error) {
	if strings.TrimSpace(a.DishName) == "" {
		return 0, fmt.Errorf("dish name is required")
	}

	ingredients, err := encodeList(a.Ingredients)
	if err != nil {
		return 0, err
	}
	steps, err := encodeList(a.RecipeSteps)
	if err != nil {
		return 0, err
	}
	facts, err := encodeList(a.FunFacts)
	if err != nil {
		return 0, err
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	createdAt = createdAt.UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO food_analyses (dish_name, ingredients, recipe_steps, fun_facts, image_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.DishName, ingredients, steps, facts, a.ImageHash, createdAt.Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get analysis id: %w", err)
	}

	a.ID = id
	a.CreatedAt = createdAt
	return id, nil
}

// GetAnalysis 依 ID 取得分析
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id int64) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, dish_name, ingredients, recipe_steps, fun_facts, image_hash, created_at
		 FROM food_analyses WHERE id = ?`, id)

	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis %d: %w", id, err)
	}
	return a, nil
}

// ListAnalyses 依時間由新到舊列出最近的分析
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]AnalysisSummary, error) {
	if limit <= 0 {
		return []AnalysisSummary{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dish_name, ingredients, created_at
		 FROM food_analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	history := []AnalysisSummary{}
	for rows.Next() {
		var (
			item        AnalysisSummary
			ingredients sql.NullString
			createdAt   sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.DishName, &ingredients, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if item.Ingredients, err = decodeList(ingredients); err != nil {
			return nil, err
		}
		item.CreatedAt = parseTimestamp(createdAt.String)
		history = append(history, item)
	}
	return history, rows.Err()
}

// AllAnalyses 列出所有分析，由新到舊
func (s *SQLiteStore) AllAnalyses(ctx context.Context) ([]Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dish_name, ingredients, recipe_steps, fun_facts, image_hash, created_at
		 FROM food_analyses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	all := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		all = append(all, *a)
	}
	return all, rows.Err()
}

// Ping 檢查資料庫連線
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 關閉資料庫
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*Analysis, error) {
	var (
		a                         Analysis
		ingredients, steps, facts sql.NullString
		imageHash, createdAt      sql.NullString
	)
	if err := row.Scan(&a.ID, &a.DishName, &ingredients, &steps, &facts, &imageHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if a.Ingredients, err = decodeList(ingredients); err != nil {
		return nil, err
	}
	if a.RecipeSteps, err = decodeList(steps); err != nil {
		return nil, err
	}
	if a.FunFacts, err = decodeList(facts); err != nil {
		return nil, err
	}
	a.ImageHash = imageHash.String
	a.CreatedAt = parseTimestamp(createdAt.String)
	return &a, nil
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(col sql.NullString) ([]string, error) {
	list := []string{}
	if !col.Valid || col.String == "" {
		return list, nil
	}
	if err := common.ParseJSON(col.String, &list); err != nil {
		return nil, fmt.Errorf("failed to decode list column: %w", err)
	}
	return list, nil
}

// parseTimestamp 支援 RFC3339 與 SQLite CURRENT_TIMESTAMP 格式
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
