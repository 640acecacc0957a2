package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/internal/store"
	"github.com/spotcheck/spotfeed/pkg/logging"
)

// VoteLedger records one user's vote state on a content item, holding the
// at-most-one-entry-per-(content, voter) invariant through upserts.
type VoteLedger struct {
	store  store.Store
	logger *zap.Logger
}

// NewVoteLedger creates a vote ledger.
func NewVoteLedger(st store.Store) *VoteLedger {
	return &VoteLedger{
		store:  st,
		logger: logging.WithComponent("vote-ledger"),
	}
}

// SetVote applies a vote by the given voter. With no prior entry the
// requested direction is stored as-is. Touching an existing non-neutral
// vote with any non-neutral direction retracts it to Neutral (tap again to
// retract), deliberately ignoring which direction was requested. The update
// is conditional on the previously read status so concurrent votes by the
// same user cannot be lost.
func (l *VoteLedger) SetVote(ctx context.Context, kind models.ContentKind, contentID, voterID string, direction models.VoteDirection) error {
	if !direction.Valid() {
		return fmt.Errorf("feed: invalid vote direction %d", direction)
	}

	entry, err := l.store.GetVote(ctx, kind, contentID, voterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return l.insertVote(ctx, kind, contentID, voterID, direction)
		}
		return fmt.Errorf("feed: failed reading vote for %s/%s: %w", kind, contentID, err)
	}

	if !entry.Status.Valid() {
		return &DataIntegrityError{ContentID: contentID, Detail: "unrecognized vote status"}
	}

	next := direction
	if entry.Status != models.VoteNeutral && direction != models.VoteNeutral {
		next = models.VoteNeutral
	}

	if err := l.store.UpdateVoteStatus(ctx, kind, contentID, entry.ID, entry.Status, next); err != nil {
		if errors.Is(err, store.ErrConflict) {
			l.logger.Warn("concurrent vote update lost the race",
				zap.String("content_id", contentID),
				zap.String("voter_id", voterID))
		}
		return fmt.Errorf("feed: failed updating vote for %s/%s: %w", kind, contentID, err)
	}
	return nil
}

func (l *VoteLedger) insertVote(ctx context.Context, kind models.ContentKind, contentID, voterID string, direction models.VoteDirection) error {
	entry := &models.VoteEntry{
		ID:      uuid.NewString(),
		VotedBy: voterID,
		Status:  direction,
	}
	if err := l.store.InsertVote(ctx, kind, contentID, entry); err != nil {
		return fmt.Errorf("feed: failed inserting vote for %s/%s: %w", kind, contentID, err)
	}
	return nil
}
