package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/admarket/backend/internal/models"
)

// DeliverJobArgs is a queued notification. Producers enqueue it with
// river's InsertTx inside the same transaction as the business write, so a
// rolled-back settlement or acceptance never notifies anyone.
type DeliverJobArgs struct {
	UserID      uuid.UUID  `json:"user_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message,omitempty"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
}

func (DeliverJobArgs) Kind() string { return "deliver_notification" }

// NotificationStore is the persistence contract the worker needs.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

type DeliverWorker struct {
	river.WorkerDefaults[DeliverJobArgs]
	store NotificationStore
}

func NewDeliverWorker(store NotificationStore) *DeliverWorker {
	return &DeliverWorker{store: store}
}

func (w *DeliverWorker) Work(ctx context.Context, job *river.Job[DeliverJobArgs]) error {
	args := job.Args
	n := &models.Notification{
		ID:          uuid.New(),
		UserID:      args.UserID,
		Type:        args.Type,
		Title:       args.Title,
		Message:     args.Message,
		ReferenceID: args.ReferenceID,
	}
	if err := w.store.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification %s for user %s: %w", args.Type, args.UserID, err)
	}
	return nil
}
