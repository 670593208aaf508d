package notify

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// InsertFunc enqueues a notification job. Provided by main as a closure
// over river.Client.Insert.
type InsertFunc func(ctx context.Context, args DeliverJobArgs) error

// InsertTxFunc enqueues a notification job within the given transaction so
// the job only exists if the transaction commits. Provided by main as a
// closure over river.Client.InsertTx.
type InsertTxFunc func(ctx context.Context, tx pgx.Tx, args DeliverJobArgs) error
