package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionKind = "receita"
	Expense TransactionKind = "despesa"
)

type (
	TransactionKind string

	Date struct {
		time.Time
	}

	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash []byte
		CreatedAt    time.Time
	}

	// Transaction is a single ledger entry. Amount is always positive;
	// Kind tells which side of the ledger it belongs to.
	Transaction struct {
		ID          int64
		UserID      int64
		Kind        TransactionKind
		Date        Date
		Description string
		Amount      decimal.Decimal
		Category    string
	}

	// Goal is a savings target with its current progress.
	Goal struct {
		ID      int64
		UserID  int64
		Name    string
		Target  decimal.Decimal
		Current decimal.Decimal
	}

	// StatementEntry is one already-parsed bank statement line. Amount is
	// signed: positive means income, negative means expense.
	StatementEntry struct {
		Date        time.Time
		Description string
		Amount      decimal.Decimal
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidEmail     = errors.New("invalid email")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (k TransactionKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if g.Target.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if g.Current.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Name)) == 0 {
		return ErrEmptyName
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// Kind derives the ledger side for a signed statement amount.
func (e StatementEntry) Kind() TransactionKind {
	if e.Amount.IsNegative() {
		return Expense
	}
	return Income
}
