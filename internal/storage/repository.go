package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row for the given key does not exist.
var ErrNotFound = errors.New("not found")

const dateFormat = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "email", u.Email)
	return id, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// --- transactions ---

// SaveTransaction implements importer.TransactionSink.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, kind, date, description, amount, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Kind), t.Date.Format(dateFormat), t.Description,
		t.Amount.String(), t.Category)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", t.UserID,
		"kind", t.Kind,
		"amount", t.Amount.String(),
		"category", t.Category)

	return id, nil
}

// ListTransactions returns a user's ledger entries, newest first. An empty
// kind lists both sides of the ledger.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, kind core.TransactionKind) ([]core.Transaction, error) {
	query := `SELECT id, user_id, kind, date, description, amount, category
		 FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SumByKind returns the total amount on one side of a user's ledger.
func (r *SQLiteRepository) SumByKind(ctx context.Context, userID int64, kind core.TransactionKind) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount FROM transactions WHERE user_id = ? AND kind = ?`,
		userID, string(kind))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum by kind: %w", err)
	}
	defer rows.Close()

	// Amounts are stored as exact decimal strings, so the sum is computed
	// here rather than with SQL's float arithmetic.
	total := decimal.Zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", s, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// CategorySums aggregates a user's expenses by category label.
func (r *SQLiteRepository) CategorySums(ctx context.Context, userID int64) ([]core.CategoryAmount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, amount FROM transactions
		 WHERE user_id = ? AND kind = ? ORDER BY category`,
		userID, string(core.Expense))
	if err != nil {
		return nil, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	var order []string
	for rows.Next() {
		var category, s string
		if err := rows.Scan(&category, &s); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", s, err)
		}
		if _, ok := sums[category]; !ok {
			order = append(order, category)
		}
		sums[category] = sums[category].Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]core.CategoryAmount, 0, len(order))
	for _, c := range order {
		out = append(out, core.CategoryAmount{Category: c, Amount: sums[c]})
	}
	return out, nil
}

// --- goals ---

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, name, target_amount, current_amount) VALUES (?, ?, ?, ?)`,
		g.UserID, g.Name, g.Target.String(), g.Current.String())
	if err != nil {
		return 0, fmt.Errorf("create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount
		 FROM goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var g core.Goal
		var target, current string
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &target, &current); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.Target, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("parse goal target %q: %w", target, err)
		}
		if g.Current, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("parse goal progress %q: %w", current, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateGoalProgress(ctx context.Context, userID, id int64, current decimal.Decimal) error {
	if current.IsNegative() {
		return core.ErrInvalidAmount
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET current_amount = ? WHERE id = ? AND user_id = ?`,
		current.String(), id, userID)
	if err != nil {
		return fmt.Errorf("update goal progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal progress: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- import jobs ---

// ImportJob is a staged statement upload awaiting processing by the worker.
type ImportJob struct {
	ID          string
	UserID      int64
	Format      string
	Payload     []byte
	Status      string
	Error       string
	Imported    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func (r *SQLiteRepository) CreateImportJob(ctx context.Context, job ImportJob) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO import_jobs (id, user_id, format, payload) VALUES (?, ?, ?, ?)`,
		job.ID, job.UserID, job.Format, job.Payload)
	if err != nil {
		return fmt.Errorf("create import job: %w", err)
	}

	slog.InfoContext(ctx, "Import job staged",
		"job_id", job.ID,
		"user_id", job.UserID,
		"format", job.Format,
		"payload_bytes", len(job.Payload))
	return nil
}

func (r *SQLiteRepository) GetImportJob(ctx context.Context, id string) (*ImportJob, error) {
	var job ImportJob
	var processedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, format, payload, status, error, imported, created_at, processed_at
		 FROM import_jobs WHERE id = ?`, id).
		Scan(&job.ID, &job.UserID, &job.Format, &job.Payload, &job.Status,
			&job.Error, &job.Imported, &job.CreatedAt, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import job: %w", err)
	}
	if processedAt.Valid {
		job.ProcessedAt = &processedAt.Time
	}
	return &job, nil
}

func (r *SQLiteRepository) MarkImportJobDone(ctx context.Context, id string, imported int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE import_jobs SET status = 'done', imported = ?, processed_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, imported, id)
	if err != nil {
		return fmt.Errorf("mark import job done: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkImportJobFailed(ctx context.Context, id string, jobErr error) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE import_jobs SET status = 'failed', error = ?, processed_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, jobErr.Error(), id)
	if err != nil {
		return fmt.Errorf("mark import job failed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var kind, date, amount string
	if err := row.Scan(&t.ID, &t.UserID, &kind, &date, &t.Description, &amount, &t.Category); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	t.Kind = core.TransactionKind(kind)
	d, err := time.Parse(dateFormat, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	t.Date = core.Date{Time: d}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	return t, nil
}
