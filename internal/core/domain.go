package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Monthly RepetitionType = "monthly"
	Yearly  RepetitionType = "yearly"
	Weekly  RepetitionType = "weekly"
	Daily   RepetitionType = "daily"
)

const (
	Housing        Category = "housing"
	Food           Category = "food"
	Transportation Category = "transportation"
	Health         Category = "health"
	Entertainment  Category = "entertainment"
	Clothing       Category = "clothing"
	Education      Category = "education"
	Other          Category = "other"
)

type (
	Kind string

	RepetitionType string

	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Recurrence marks a transaction as the first occurrence of a repeating
	// series. Until is optional; a zero Until means the series is open-ended.
	Recurrence struct {
		Every RepetitionType
		Until Date
	}

	// Transaction is an immutable posted fact. Category is meaningful only
	// for expenses. A non-nil Recurrence makes the record a template: later
	// occurrences are virtual and never stored.
	Transaction struct {
		ID         string
		Owner      string
		Amount     Money
		Kind       Kind
		Category   Category
		Date       Date
		Recurrence *Recurrence
	}

	// Limits maps a category to its monthly spending cap. Categories absent
	// from the map have no cap.
	Limits map[Category]Money
)

// categories holds the fixed enumeration in display order. Reports and chart
// projections follow this order, never amount order.
var categories = []Category{
	Housing,
	Food,
	Transportation,
	Health,
	Entertainment,
	Clothing,
	Education,
	Other,
}

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrMissingCategory  = errors.New("missing category on expense")
	ErrEmptyOwner       = errors.New("empty owner")
	ErrInvalidLimit     = errors.New("limit must be positive")
	ErrInvalidFrequency = errors.New("invalid repetition type")
)

// Categories returns the fixed enumeration in its configured order.
// The returned slice is a copy and safe to modify.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes and validates a category string coming from
// storage or configuration.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (r RepetitionType) Valid() bool {
	switch r {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses an ISO day string (2006-01-02).
func ParseDay(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true if the date is zero (optional dates use the zero value)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Key returns the ISO day string, used for grouping and stable ordering.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the year+month grouping key.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Owner) == "" {
		return ErrEmptyOwner
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Kind == Expense {
		if t.Category == "" {
			return ErrMissingCategory
		}
		if !t.Category.Valid() {
			return ErrUnknownCategory
		}
	}
	if t.Recurrence != nil {
		if err := t.Recurrence.Validate(t.Date); err != nil {
			return err
		}
	}
	return nil
}

func (r Recurrence) Validate(start Date) error {
	if !r.Every.Valid() {
		return ErrInvalidFrequency
	}
	if !r.Until.IsEmpty() && r.Until.Before(start.Time) {
		return errors.New("until precedes start date")
	}
	return nil
}

func (l Limits) Validate() error {
	for c, m := range l {
		if !c.Valid() {
			return ErrUnknownCategory
		}
		if m.Cents <= 0 {
			return ErrInvalidLimit
		}
	}
	return nil
}
