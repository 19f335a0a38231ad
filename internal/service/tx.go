// internal/service/tx.go
package service

import (
	"context"
	"fmt"

	"cardvault/internal/repository"
	"cardvault/pkg/db"
)

// txRunner bundles the injected transaction functions shared by every
// service so each multi-row mutation runs as one atomic unit.
type txRunner struct {
	dbBeginner db.DBTxBeginner
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// begin starts a transaction and returns both the controller and its
// DBExecutor view for repository calls.
func (t *txRunner) begin(ctx context.Context) (db.TxController, repository.DBExecutor, error) {
	txController, err := t.beginTx(ctx, t.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		t.rollbackTx(txController)
		return nil, nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}
	return txController, txExecutor, nil
}
