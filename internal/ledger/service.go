// Package ledger orchestrates transaction and goal operations and builds
// the per-user dashboard summary.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/cache"
	"financas/internal/core"
)

// Repository is the slice of storage the ledger needs.
type Repository interface {
	SaveTransaction(ctx context.Context, t core.Transaction) (int64, error)
	ListTransactions(ctx context.Context, userID int64, kind core.TransactionKind) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	SumByKind(ctx context.Context, userID int64, kind core.TransactionKind) (decimal.Decimal, error)
	CategorySums(ctx context.Context, userID int64) ([]core.CategoryAmount, error)

	CreateGoal(ctx context.Context, g core.Goal) (int64, error)
	ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	UpdateGoalProgress(ctx context.Context, userID, id int64, current decimal.Decimal) error
	DeleteGoal(ctx context.Context, userID, id int64) error
}

// Service wraps the repository with validation and summary caching.
type Service struct {
	repo      Repository
	summaries *cache.LRU[core.DashboardSummary]
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		summaries: cache.NewLRU[core.DashboardSummary](500, 5*time.Minute),
	}
}

func summaryKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// AddTransaction validates and stores a ledger entry.
func (s *Service) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.SaveTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}
	s.summaries.Invalidate(summaryKey(t.UserID))
	return id, nil
}

// Transactions lists a user's ledger entries. An empty kind lists both
// sides of the ledger.
func (s *Service) Transactions(ctx context.Context, userID int64, kind core.TransactionKind) ([]core.Transaction, error) {
	if kind != "" {
		if err := kind.Validate(); err != nil {
			return nil, err
		}
	}
	return s.repo.ListTransactions(ctx, userID, kind)
}

func (s *Service) RemoveTransaction(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}
	s.summaries.Invalidate(summaryKey(userID))
	return nil
}

// AddGoal validates and stores a savings goal.
func (s *Service) AddGoal(ctx context.Context, g core.Goal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateGoal(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("add goal: %w", err)
	}
	s.summaries.Invalidate(summaryKey(g.UserID))
	return id, nil
}

func (s *Service) Goals(ctx context.Context, userID int64) ([]core.Goal, error) {
	return s.repo.ListGoals(ctx, userID)
}

func (s *Service) SetGoalProgress(ctx context.Context, userID, id int64, current decimal.Decimal) error {
	if err := s.repo.UpdateGoalProgress(ctx, userID, id, current); err != nil {
		return fmt.Errorf("set goal progress: %w", err)
	}
	s.summaries.Invalidate(summaryKey(userID))
	return nil
}

func (s *Service) RemoveGoal(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteGoal(ctx, userID, id); err != nil {
		return fmt.Errorf("remove goal: %w", err)
	}
	s.summaries.Invalidate(summaryKey(userID))
	return nil
}

// Summary builds the dashboard overview for a user. Results are cached and
// invalidated on every write through this service.
func (s *Service) Summary(ctx context.Context, userID int64) (core.DashboardSummary, error) {
	key := summaryKey(userID)
	if cached, ok := s.summaries.Get(key); ok {
		slog.DebugContext(ctx, "Dashboard summary served from cache", "user_id", userID)
		return cached, nil
	}

	income, err := s.repo.SumByKind(ctx, userID, core.Income)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("sum income: %w", err)
	}
	expenses, err := s.repo.SumByKind(ctx, userID, core.Expense)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("sum expenses: %w", err)
	}
	goals, err := s.repo.ListGoals(ctx, userID)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list goals: %w", err)
	}
	byCategory, err := s.repo.CategorySums(ctx, userID)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("category sums: %w", err)
	}

	summary := core.DashboardSummary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Balance:       income.Sub(expenses),
		Goals:         goals,
		ByCategory:    byCategory,
	}
	s.summaries.Set(key, summary)
	return summary, nil
}
