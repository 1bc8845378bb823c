// Package model holds the transsaction wallet record shared by the store, the cache
// and the cache-aside orchestrator.
package model

import (
	"fmt"
	"time"

	"dario.cat/mergo"
	"github.com/shopspring/decimal"
)

// Transsaction is a wallet transaction record.
type Transsaction struct {
	ID           string          `json:"id"`
	IdentityDni  string          `json:"identityDni"`
	PhoneNumber  string          `json:"phoneNumber"`
	Email        string          `json:"email"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	DateRegister time.Time       `json:"dateRegister"`
}

// Clone returns an independent copy of the record.
func (t *Transsaction) Clone() *Transsaction {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}

// Date truncates a timestamp to its calendar day in UTC.
func Date(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MergeInto copies every field of patch onto dst, empty values included.
// dst keeps its ID. The patch receives dst's DateRegister before the merge so the
// registration date survives every update.
func MergeInto(dst, patch *Transsaction) error {
	if dst == nil || patch == nil {
		return fmt.Errorf("merge transsaction: nil record")
	}

	id := dst.ID
	patch.DateRegister = dst.DateRegister

	if err := mergo.Merge(dst, *patch, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue); err != nil {
		return fmt.Errorf("merge transsaction %s: %w", id, err)
	}

	dst.ID = id
	return nil
}
