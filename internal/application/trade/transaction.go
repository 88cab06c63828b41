package trade

import (
	"context"

	"github.com/asanorder/backend/internal/domain/trade"
)

// TransactionalRepositories provides repositories bound to one transaction
type TransactionalRepositories interface {
	OrderRepo() trade.OrderRepository
	ReturnRepo() trade.OrderReturnRepository
}

// TransactionScope runs fn atomically. The transaction is rolled back when fn
// returns an error and committed otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// directScope runs fn against the service's own repositories with no
// transaction around them
type directScope struct {
	orders  trade.OrderRepository
	returns trade.OrderReturnRepository
}

func (s directScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s directScope) OrderRepo() trade.OrderRepository        { return s.orders }
func (s directScope) ReturnRepo() trade.OrderReturnRepository { return s.returns }
