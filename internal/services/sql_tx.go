package services

import (
	"context"
	"database/sql"

	"crowdfund-ledger/internal/database"
	"crowdfund-ledger/internal/repositories"
)

// NewRepositories binds every repository to db, which may be a pool or a
// transaction.
func NewRepositories(db repositories.DBTX) *Repositories {
	return &Repositories{
		Users:       repositories.NewUserRepository(db),
		Campaigns:   repositories.NewCampaignRepository(db),
		Donations:   repositories.NewDonationRepository(db),
		TopUps:      repositories.NewTopUpRepository(db),
		Withdrawals: repositories.NewWithdrawalRepository(db),
		Proposals:   repositories.NewProposalRepository(db),
		Audit:       repositories.NewAuditLogRepository(db),
	}
}

type sqlTxRunner struct {
	runner *database.TxRunner
}

// NewSQLTxRunner adapts the database transaction runner to the service layer
func NewSQLTxRunner(runner *database.TxRunner) TxRunner {
	return &sqlTxRunner{runner: runner}
}

func (s *sqlTxRunner) RunInTx(ctx context.Context, fn func(repos *Repositories) error) error {
	return s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
		return fn(NewRepositories(tx))
	})
}
