package service

import (
	"context"
	"sync"

	"github.com/nany306/bunny-assistant/internal/model"
	"github.com/nany306/bunny-assistant/internal/repository"
)

// Balance summarizes the ledger.
type Balance struct {
	Income  float64
	Expense float64
	Net     float64
}

// LedgerService wraps the append-only finance ledger.
type LedgerService struct {
	transactions *repository.TransactionRepository
	mu           sync.Mutex
}

func NewLedgerService(transactions *repository.TransactionRepository) *LedgerService {
	return &LedgerService{transactions: transactions}
}

// AddTransaction validates, appends and persists a ledger entry.
func (s *LedgerService) AddTransaction(ctx context.Context, input model.TransactionInput) (*model.Transaction, error) {
	entry, err := model.NewTransaction(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.transactions.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	ledger = append(ledger, entry)
	if err := s.transactions.SaveAll(ctx, ledger); err != nil {
		return nil, err
	}
	return entry, nil
}

// Transactions returns the ledger oldest first.
func (s *LedgerService) Transactions(ctx context.Context) ([]*model.Transaction, error) {
	return s.transactions.LoadAll(ctx)
}

// CurrentBalance totals income and expenses over the whole ledger.
func (s *LedgerService) CurrentBalance(ctx context.Context) (Balance, error) {
	ledger, err := s.transactions.LoadAll(ctx)
	if err != nil {
		return Balance{}, err
	}

	var b Balance
	for _, entry := range ledger {
		switch entry.Kind {
		case model.KindIncome:
			b.Income += entry.Amount
		case model.KindExpense:
			b.Expense += entry.Amount
		}
	}
	b.Net = b.Income - b.Expense
	return b, nil
}
