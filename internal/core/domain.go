package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Food           Category = "Food"
	Transportation Category = "Transportation"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Bills          Category = "Bills"
	Healthcare     Category = "Healthcare"
	Other          Category = "Other"
)

const (
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
	InsightSuccess InsightType = "success"
	InsightTip     InsightType = "tip"
)

const (
	// MaxDescriptionLength is counted in characters, not bytes.
	MaxDescriptionLength = 500

	// RecentRecordsLimit is the size of the history view.
	RecentRecordsLimit = 10
)

type (
	Category string

	InsightType string

	// Date is a calendar day stored as the UTC instant at 12:00:00.
	Date struct {
		time.Time
	}

	// Record is a single expense owned by exactly one user.
	Record struct {
		ID          string    `json:"id"`
		Description string    `json:"text"`
		Amount      float64   `json:"amount"`
		Category    Category  `json:"category"`
		Date        Date      `json:"date"`
		UserID      string    `json:"userId"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// RecordInput carries the raw form values of a new record before validation.
	RecordInput struct {
		Description string `json:"text"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Date        string `json:"date"`
	}

	User struct {
		ID        string    `json:"id"`
		SubjectID string    `json:"subjectId"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		ImageURL  string    `json:"imageUrl,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Principal is the authenticated identity handed over by the identity provider.
	Principal struct {
		SubjectID string `json:"sub"`
		Email     string `json:"email"`
		FirstName string `json:"firstName,omitempty"`
		LastName  string `json:"lastName,omitempty"`
		Name      string `json:"name,omitempty"`
		ImageURL  string `json:"imageUrl,omitempty"`
	}

	Insight struct {
		ID         string      `json:"id"`
		Type       InsightType `json:"type"`
		Title      string      `json:"title"`
		Message    string      `json:"message"`
		Action     string      `json:"action,omitempty"`
		Confidence float64     `json:"confidence"`
	}
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{Food, Transportation, Entertainment, Shopping, Bills, Healthcare, Other}
}

func (c Category) Valid() bool {
	switch c {
	case Food, Transportation, Entertainment, Shopping, Bills, Healthcare, Other:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches an exact category label. Labels are case sensitive.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.TrimSpace(s))
	return c, c.Valid()
}

func (t InsightType) Valid() bool {
	switch t {
	case InsightWarning, InsightInfo, InsightSuccess, InsightTip:
		return true
	}
	return false
}

// DisplayName composes "First Last", falling back to the full name and then "User".
func (p Principal) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		name = strings.TrimSpace(p.Name)
	}
	if name == "" {
		return "User"
	}
	return name
}

// Validate checks the stored invariants of a record.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return NewValidationError("text", MsgMissingField)
	}
	if utf8.RuneCountInString(r.Description) > MaxDescriptionLength {
		return NewValidationError("text", MsgDescriptionTooLong)
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if !r.Category.Valid() {
		return NewValidationError("category", MsgInvalidCategory)
	}
	if r.Date.IsZero() {
		return NewValidationError("date", MsgInvalidDate)
	}
	return nil
}

// Validate parses and validates raw form values into a record without id or owner.
// Checks run in a fixed order so the first failing field decides the message.
func (in RecordInput) Validate() (Record, error) {
	desc := strings.TrimSpace(in.Description)
	amountRaw := strings.TrimSpace(in.Amount)
	catRaw := strings.TrimSpace(in.Category)
	dateRaw := strings.TrimSpace(in.Date)

	if desc == "" || amountRaw == "" || catRaw == "" || dateRaw == "" {
		return Record{}, NewValidationError("", MsgMissingField)
	}

	amount, err := ParseAmount(amountRaw)
	if err != nil {
		return Record{}, err
	}

	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return Record{}, NewValidationError("text", MsgDescriptionTooLong)
	}

	cat, ok := ParseCategory(catRaw)
	if !ok {
		return Record{}, NewValidationError("category", MsgInvalidCategory)
	}

	date, err := ParseDate(dateRaw)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Description: desc,
		Amount:      amount,
		Category:    cat,
		Date:        date,
	}, nil
}
