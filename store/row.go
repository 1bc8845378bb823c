package store

import (
	"time"

	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Row is the persisted shape of a transsaction.
type Row struct {
	bun.BaseModel `bun:"table:transsactions,alias:t"`

	ID           uuid.UUID       `bun:"id,pk,type:uuid"`
	IdentityDni  string          `bun:"identity_dni,notnull"`
	PhoneNumber  string          `bun:"phone_number"`
	Email        string          `bun:"email"`
	Type         string          `bun:"type"`
	Amount       decimal.Decimal `bun:"amount,type:varchar(64)"`
	Currency     string          `bun:"currency"`
	Description  string          `bun:"description"`
	DateRegister time.Time       `bun:"date_register,notnull"`
}

// IdentifierColumn is the secondary lookup column.
const IdentifierColumn = "identity_dni"

// ToRow maps a record onto its row. An empty or malformed ID maps to uuid.Nil.
func ToRow(record *model.Transsaction) *Row {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		id = uuid.Nil
	}
	return &Row{
		ID:           id,
		IdentityDni:  record.IdentityDni,
		PhoneNumber:  record.PhoneNumber,
		Email:        record.Email,
		Type:         record.Type,
		Amount:       record.Amount,
		Currency:     record.Currency,
		Description:  record.Description,
		DateRegister: record.DateRegister,
	}
}

// FromRow maps a row back to a record.
func FromRow(row *Row) *model.Transsaction {
	return &model.Transsaction{
		ID:           row.ID.String(),
		IdentityDni:  row.IdentityDni,
		PhoneNumber:  row.PhoneNumber,
		Email:        row.Email,
		Type:         row.Type,
		Amount:       row.Amount,
		Currency:     row.Currency,
		Description:  row.Description,
		DateRegister: model.Date(row.DateRegister),
	}
}
