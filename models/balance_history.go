package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial     TransactionType = "initial"
	TransactionTypeStudyReward TransactionType = "study_reward"
	TransactionTypeBetStake    TransactionType = "bet_stake"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeStudySession RelatedType = "study_session"
	RelatedTypeBet          RelatedType = "bet"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              uuid.UUID       `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *uuid.UUID      `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}
