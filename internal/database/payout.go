// internal/database/payout.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// InsertPayout records a settlement made to a winner off-chain.
func InsertPayout(ctx context.Context, payout *models.Payout) error {
	q := `
		INSERT INTO payouts (id, winner_wallet, amount, transaction_hash)
		VALUES ($1, $2, $3, $4)
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			payout.ID,
			payout.WinnerWallet,
			payout.Amount,
			payout.TransactionHash,
		)
		return err
	})
}

// ListPayouts returns settlements, latest first.
func ListPayouts(ctx context.Context, limit int) ([]models.Payout, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
		SELECT id, winner_wallet, amount, transaction_hash, created_at
		FROM payouts ORDER BY created_at DESC LIMIT $1
	`
	rows, err := DB.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Payout
	for rows.Next() {
		var p models.Payout
		if err := rows.Scan(&p.ID, &p.WinnerWallet, &p.Amount, &p.TransactionHash, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
