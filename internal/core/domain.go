package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusNeeded      Status = "needed"
	StatusResearching Status = "researching"
	StatusReadyToBuy  Status = "ready_to_buy"
	StatusPurchased   Status = "purchased"
)

type (
	// Status is the lifecycle state of a gift item.
	Status string

	// Recipient is a person being shopped for.
	Recipient struct {
		ID               int64     `json:"id"`
		Name             string    `json:"name"`
		Relationship     string    `json:"relationship,omitempty"`
		BudgetAllocation Money     `json:"budget_allocation"`
		Notes            string    `json:"notes,omitempty"`
		CreatedAt        time.Time `json:"created_at"`
		UpdatedAt        time.Time `json:"updated_at"`
	}

	// GiftItem is a candidate or planned gift for a recipient. Reads carry
	// the owning recipient's name for display convenience.
	GiftItem struct {
		ID               int64     `json:"id"`
		RecipientID      int64     `json:"recipient_id"`
		RecipientName    string    `json:"recipient_name,omitempty"`
		Name             string    `json:"name"`
		Description      string    `json:"description,omitempty"`
		Priority         int       `json:"priority"`
		Status           Status    `json:"status"`
		TargetPrice      *Money    `json:"target_price,omitempty"`
		CurrentBestPrice *Money    `json:"current_best_price,omitempty"`
		Notes            string    `json:"notes,omitempty"`
		CreatedAt        time.Time `json:"created_at"`
		UpdatedAt        time.Time `json:"updated_at"`
	}

	// Purchase is a completed buy linked to exactly one gift item.
	Purchase struct {
		ID            int64     `json:"id"`
		ItemID        int64     `json:"item_id"`
		ItemName      string    `json:"item_name,omitempty"`
		RecipientName string    `json:"recipient_name,omitempty"`
		StoreName     string    `json:"store_name,omitempty"`
		PurchasePrice Money     `json:"purchase_price"`
		PurchaseDate  Date      `json:"purchase_date"`
		PaymentMethod string    `json:"payment_method,omitempty"`
		ReceiptPhoto  string    `json:"receipt_photo,omitempty"`
		WasOnSale     bool      `json:"was_on_sale"`
		Notes         string    `json:"notes,omitempty"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}

	// Budget is the planned total spend for a calendar year.
	Budget struct {
		ID          int64     `json:"id"`
		TotalBudget Money     `json:"total_budget"`
		Year        int       `json:"year"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}
)

var (
	// ErrNotFound is returned when an id-addressed row does not exist.
	ErrNotFound = errors.New("not found")

	ErrEmptyName        = errors.New("name is required")
	ErrNameTooLong      = errors.New("name too long")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPriority  = errors.New("priority must be between 1 and 5")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrMissingRecipient = errors.New("recipient_id is required")
	ErrMissingItem      = errors.New("item_id is required")
	ErrMissingDate      = errors.New("purchase_date is required")
)

// Valid reports whether s is one of the four known item states.
func (s Status) Valid() bool {
	switch s {
	case StatusNeeded, StatusResearching, StatusReadyToBuy, StatusPurchased:
		return true
	default:
		return false
	}
}

// NewRecipient carries the fields accepted when creating a recipient.
type NewRecipient struct {
	Name             string `json:"name"`
	Relationship     string `json:"relationship"`
	BudgetAllocation Money  `json:"budget_allocation"`
	Notes            string `json:"notes"`
}

func (r NewRecipient) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > 100 {
		return ErrNameTooLong
	}
	if r.BudgetAllocation.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// RecipientPatch is a partial update. Nil fields keep their stored values;
// a non-nil pointer to a zero value is still written.
type RecipientPatch struct {
	Name             *string `json:"name"`
	Relationship     *string `json:"relationship"`
	BudgetAllocation *Money  `json:"budget_allocation"`
	Notes            *string `json:"notes"`
}

func (p RecipientPatch) Validate() error {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return ErrEmptyName
		}
		if len(*p.Name) > 100 {
			return ErrNameTooLong
		}
	}
	if p.BudgetAllocation != nil && p.BudgetAllocation.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewGiftItem carries the fields accepted when creating a gift item.
// Priority is a pointer so that a payload omitting it gets the default
// while an explicit out-of-range value (including 0) is rejected.
type NewGiftItem struct {
	RecipientID      int64  `json:"recipient_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Priority         *int   `json:"priority"`
	Status           Status `json:"status"`
	TargetPrice      *Money `json:"target_price"`
	CurrentBestPrice *Money `json:"current_best_price"`
	Notes            string `json:"notes"`
}

// Normalize fills in the documented defaults for absent fields.
func (i *NewGiftItem) Normalize() {
	if i.Priority == nil {
		p := 1
		i.Priority = &p
	}
	if i.Status == "" {
		i.Status = StatusNeeded
	}
}

func (i NewGiftItem) Validate() error {
	if i.RecipientID <= 0 {
		return ErrMissingRecipient
	}
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if len(i.Name) > 200 {
		return ErrNameTooLong
	}
	if i.Priority == nil || *i.Priority < 1 || *i.Priority > 5 {
		return ErrInvalidPriority
	}
	if !i.Status.Valid() {
		return ErrInvalidStatus
	}
	if i.TargetPrice != nil && i.TargetPrice.Cents < 0 {
		return ErrInvalidAmount
	}
	if i.CurrentBestPrice != nil && i.CurrentBestPrice.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// GiftItemPatch is a partial update for a gift item.
type GiftItemPatch struct {
	RecipientID      *int64  `json:"recipient_id"`
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	Priority         *int    `json:"priority"`
	Status           *Status `json:"status"`
	TargetPrice      *Money  `json:"target_price"`
	CurrentBestPrice *Money  `json:"current_best_price"`
	Notes            *string `json:"notes"`
}

func (p GiftItemPatch) Validate() error {
	if p.RecipientID != nil && *p.RecipientID <= 0 {
		return ErrMissingRecipient
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return ErrEmptyName
		}
		if len(*p.Name) > 200 {
			return ErrNameTooLong
		}
	}
	if p.Priority != nil && (*p.Priority < 1 || *p.Priority > 5) {
		return ErrInvalidPriority
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.TargetPrice != nil && p.TargetPrice.Cents < 0 {
		return ErrInvalidAmount
	}
	if p.CurrentBestPrice != nil && p.CurrentBestPrice.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewPurchase carries the fields accepted when recording a purchase.
type NewPurchase struct {
	ItemID        int64  `json:"item_id"`
	StoreName     string `json:"store_name"`
	PurchasePrice Money  `json:"purchase_price"`
	PurchaseDate  Date   `json:"purchase_date"`
	PaymentMethod string `json:"payment_method"`
	ReceiptPhoto  string `json:"receipt_photo"`
	WasOnSale     bool   `json:"was_on_sale"`
	Notes         string `json:"notes"`
}

func (p NewPurchase) Validate() error {
	if p.ItemID <= 0 {
		return ErrMissingItem
	}
	if p.PurchasePrice.Cents < 0 {
		return ErrInvalidAmount
	}
	if p.PurchaseDate.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// PurchasePatch is a partial update for a purchase. The linked item is never
// changed by an update; only create and delete touch the item's status. The
// WasOnSale pointer distinguishes "leave as is" from an explicit false.
type PurchasePatch struct {
	StoreName     *string `json:"store_name"`
	PurchasePrice *Money  `json:"purchase_price"`
	PurchaseDate  *Date   `json:"purchase_date"`
	PaymentMethod *string `json:"payment_method"`
	ReceiptPhoto  *string `json:"receipt_photo"`
	WasOnSale     *bool   `json:"was_on_sale"`
	Notes         *string `json:"notes"`
}

func (p PurchasePatch) Validate() error {
	if p.PurchasePrice != nil && p.PurchasePrice.Cents < 0 {
		return ErrInvalidAmount
	}
	if p.PurchaseDate != nil && p.PurchaseDate.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// NewBudget carries the fields accepted when creating a budget row.
// Year defaults to the current calendar year when left zero.
type NewBudget struct {
	TotalBudget Money `json:"total_budget"`
	Year        int   `json:"year"`
}

func (b *NewBudget) Normalize() {
	if b.Year == 0 {
		b.Year = time.Now().Year()
	}
}

func (b NewBudget) Validate() error {
	if b.TotalBudget.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
