package services

import (
	"fmt"

	"github.com/admarket/backend/internal/models"
)

// Actors in the contract lifecycle.
const (
	ActorClient     = "client"
	ActorFreelancer = "freelancer"
	ActorSystem     = "system"
)

// Lifecycle actions.
const (
	ActionSubmit          = "submit"
	ActionRequestRevision = "request_revision"
	ActionApprove         = "approve"
	ActionComplete        = "complete"
	ActionCancel          = "cancel"
)

type transitionKey struct {
	from   string
	actor  string
	action string
}

// contractTransitions is the full lifecycle. Completion belongs to
// settlement and cancellation to dispute resolution, which is why both are
// system actions.
var contractTransitions = map[transitionKey]string{
	{models.ContractStatusInProgress, ActorFreelancer, ActionSubmit}:     models.ContractStatusSubmitted,
	{models.ContractStatusNeedsRevision, ActorFreelancer, ActionSubmit}:  models.ContractStatusSubmitted,
	{models.ContractStatusSubmitted, ActorClient, ActionRequestRevision}: models.ContractStatusNeedsRevision,
	{models.ContractStatusSubmitted, ActorClient, ActionApprove}:         models.ContractStatusApproved,
	{models.ContractStatusApproved, ActorSystem, ActionComplete}:         models.ContractStatusCompleted,
	{models.ContractStatusInProgress, ActorSystem, ActionCancel}:         models.ContractStatusCancelled,
	{models.ContractStatusSubmitted, ActorSystem, ActionCancel}:          models.ContractStatusCancelled,
	{models.ContractStatusNeedsRevision, ActorSystem, ActionCancel}:      models.ContractStatusCancelled,
	{models.ContractStatusApproved, ActorSystem, ActionCancel}:           models.ContractStatusCancelled,
	{models.ContractStatusUnderReview, ActorSystem, ActionCancel}:        models.ContractStatusCancelled,
}

// NextContractStatus resolves a lifecycle step, or ErrInvalidTransition when
// the table has no entry for it.
func NextContractStatus(from, actor, action string) (string, error) {
	next, ok := contractTransitions[transitionKey{from, actor, action}]
	if !ok {
		return "", fmt.Errorf("%w: %s cannot %s from %s", ErrInvalidTransition, actor, action, from)
	}
	return next, nil
}
