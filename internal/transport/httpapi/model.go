package httpapi

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/shopspring/decimal"
)

// TranssactionModel is the wire shape of a transsaction.
type TranssactionModel struct {
	ID           string          `json:"id,omitempty"`
	IdentityDni  string          `json:"identityDni"`
	PhoneNumber  string          `json:"phoneNumber"`
	Email        string          `json:"email"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	DateRegister *time.Time      `json:"dateRegister,omitempty"`
}

// Normalize trims surrounding whitespace and upper-cases the currency code.
func (m *TranssactionModel) Normalize() {
	m.IdentityDni = strings.TrimSpace(m.IdentityDni)
	m.PhoneNumber = strings.TrimSpace(m.PhoneNumber)
	m.Email = strings.TrimSpace(m.Email)
	m.Type = strings.TrimSpace(m.Type)
	m.Currency = strings.ToUpper(strings.TrimSpace(m.Currency))
	m.Description = strings.TrimSpace(m.Description)
}

// Validate checks the fields every write request must carry.
func (m TranssactionModel) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.IdentityDni, validation.Required, validation.Length(1, 20), is.Alphanumeric),
		validation.Field(&m.PhoneNumber, validation.Length(6, 20), is.Digit),
		validation.Field(&m.Email, is.EmailFormat),
		validation.Field(&m.Type, validation.Required, validation.Length(1, 40)),
		validation.Field(&m.Amount, validation.By(nonNegative)),
		validation.Field(&m.Currency, validation.Required, is.CurrencyCode),
		validation.Field(&m.Description, validation.Length(0, 255)),
	)
}

func nonNegative(value any) error {
	amount, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal amount")
	}
	if amount.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

// ToEntity maps the request onto a record. The id and registration date are
// owned by the service and never taken from the client.
func (m *TranssactionModel) ToEntity() *model.Transsaction {
	return &model.Transsaction{
		IdentityDni: m.IdentityDni,
		PhoneNumber: m.PhoneNumber,
		Email:       m.Email,
		Type:        m.Type,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Description: m.Description,
	}
}

// FromEntity maps a record onto its wire shape.
func FromEntity(rec *model.Transsaction) TranssactionModel {
	out := TranssactionModel{
		ID:          rec.ID,
		IdentityDni: rec.IdentityDni,
		PhoneNumber: rec.PhoneNumber,
		Email:       rec.Email,
		Type:        rec.Type,
		Amount:      rec.Amount,
		Currency:    rec.Currency,
		Description: rec.Description,
	}
	if !rec.DateRegister.IsZero() {
		registered := rec.DateRegister
		out.DateRegister = &registered
	}
	return out
}
