package core

import (
	"errors"
	"slices"
	"strings"
	"time"
)

const (
	CategoryFixed    ExpenseCategory = "fixed"
	CategoryVariable ExpenseCategory = "variable"
)

type (
	// ExpenseCategory distinguishes fixed costs from variable ones.
	ExpenseCategory string

	Money struct {
		Cents int64
	}

	Product struct {
		ID          string
		Name        string
		Description string
		Price       Money // non-negative
		CreatedAt   time.Time
		UpdatedAt   time.Time
		UserID      string
	}

	// LineItem references a product sold in a sale. The product may have
	// been deleted since; readers must tolerate an unresolved ProductID.
	LineItem struct {
		ProductID string
		Quantity  int
	}

	Sale struct {
		ID            string
		Items         []LineItem
		Total         Money // Σ(quantity × product price) at write time
		PaymentMethod string
		Date          time.Time
		UserID        string
	}

	Expense struct {
		ID            string
		Description   string
		Amount        Money
		Category      ExpenseCategory
		Date          time.Time
		IsRecurring   bool
		RecurrenceDay int // 1-31, meaningful only when fixed and recurring
		Tags          []string
		UserID        string
	}

	// AppState is the full business snapshot mirrored from the remote
	// backend. It is the only input to the report aggregators.
	AppState struct {
		Products       []Product
		Sales          []Sale
		Expenses       []Expense
		PaymentMethods []string
		ExpenseTags    []string
	}
)

// DefaultPaymentMethods always exist and cannot be renamed or removed.
var DefaultPaymentMethods = []string{"cash", "credit", "debit", "pix", "other"}

// DefaultExpenseTags seed a new account. Unlike payment methods they carry
// no protection and may be renamed or removed freely.
var DefaultExpenseTags = []string{"food", "supplies", "maintenance", "utilities", "rent", "taxes", "other"}

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrEmptyName            = errors.New("empty name")
	ErrEmptyDescription     = errors.New("empty description")
	ErrInvalidCategory      = errors.New("invalid expense category")
	ErrInvalidRecurrenceDay = errors.New("invalid recurrence day")
	ErrUnknownProduct       = errors.New("unknown product")
)

// IsDefaultPaymentMethod reports whether name is one of the protected
// defaults. Matching is case-sensitive and exact.
func IsDefaultPaymentMethod(name string) bool {
	return slices.Contains(DefaultPaymentMethods, name)
}

// NewAppState returns an empty snapshot seeded with the default payment
// methods and expense tags.
func NewAppState() AppState {
	return AppState{
		Products:       []Product{},
		Sales:          []Sale{},
		Expenses:       []Expense{},
		PaymentMethods: slices.Clone(DefaultPaymentMethods),
		ExpenseTags:    slices.Clone(DefaultExpenseTags),
	}
}

// Clone returns a deep copy of the snapshot. Nested slices are copied so
// readers can never observe a later in-place mutation.
func (s AppState) Clone() AppState {
	out := AppState{
		Products:       slices.Clone(s.Products),
		Sales:          make([]Sale, len(s.Sales)),
		Expenses:       make([]Expense, len(s.Expenses)),
		PaymentMethods: slices.Clone(s.PaymentMethods),
		ExpenseTags:    slices.Clone(s.ExpenseTags),
	}
	for i, sale := range s.Sales {
		sale.Items = slices.Clone(sale.Items)
		out.Sales[i] = sale
	}
	for i, exp := range s.Expenses {
		exp.Tags = slices.Clone(exp.Tags)
		out.Expenses[i] = exp
	}
	return out
}

// ProductByID looks a product up in the snapshot.
func (s AppState) ProductByID(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c ExpenseCategory) Valid() bool {
	return c == CategoryFixed || c == CategoryVariable
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if len(p.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if p.Price.Cents < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (li LineItem) Validate() error {
	if strings.TrimSpace(li.ProductID) == "" {
		return ErrUnknownProduct
	}
	if li.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.Category == CategoryFixed && e.IsRecurring {
		if e.RecurrenceDay < 1 || e.RecurrenceDay > 31 {
			return ErrInvalidRecurrenceDay
		}
	}
	return nil
}

// SaleTotal computes the sale total for the given items against the current
// product snapshot. Unknown products count as zero, matching how historical
// sales tolerate deleted products.
func (s AppState) SaleTotal(items []LineItem) Money {
	var cents int64
	for _, item := range items {
		if p, ok := s.ProductByID(item.ProductID); ok {
			cents += p.Price.Cents * int64(item.Quantity)
		}
	}
	return Money{Cents: cents}
}
