package domain

import (
	"errors"
	"time"
)

// SubscriptionType identifies how long a meal subscription runs.
type SubscriptionType string

const (
	SubscriptionTerm   SubscriptionType = "TERM"   // 4 months
	SubscriptionAnnual SubscriptionType = "ANNUAL" // 12 months
)

var ErrStudentNotFound = errors.New("student not found")
var ErrStudentExists = errors.New("student already exists")
var ErrInsufficientBalance = errors.New("insufficient balance")
var ErrInvalidCredit = errors.New("invalid credit request")
var ErrInvalidStudent = errors.New("invalid student")

// Duration returns the subscription length as calendar months.
func (t SubscriptionType) Duration() (months int, ok bool) {
	switch t {
	case SubscriptionTerm:
		return 4, true
	case SubscriptionAnnual:
		return 12, true
	}
	return 0, false
}

// Subscription is a prepaid meal plan held by a student. Records are
// read-only after creation; "active" means EndDate has not passed.
type Subscription struct {
	ID        string           `json:"id" bson:"_id,omitempty"`
	StudentID string           `json:"student_id" bson:"student_id"`
	Type      SubscriptionType `json:"type" bson:"type"`
	Amount    float64          `json:"amount" bson:"amount"`
	StartDate time.Time        `json:"start_date" bson:"start_date"`
	EndDate   time.Time        `json:"end_date" bson:"end_date"`
}

// Active reports whether the subscription covers the given instant.
func (s Subscription) Active(now time.Time) bool {
	return !s.EndDate.Before(now)
}

// Student is the ledger's aggregate root. Balance is denominated in
// points and must never go negative after a committed operation; it is
// mutated only by the credit and checkout operations.
type Student struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	CardID        string         `json:"card_id" bson:"card_id"`
	ExternalCode  string         `json:"external_code,omitempty" bson:"external_code,omitempty"`
	Name          string         `json:"name" bson:"name"`
	Grade         string         `json:"grade" bson:"grade"`
	Email         string         `json:"email,omitempty" bson:"email,omitempty"`
	Balance       float64        `json:"balance" bson:"balance"`
	Photo         string         `json:"photo,omitempty" bson:"photo,omitempty"`
	Subscriptions []Subscription `json:"subscriptions,omitempty" bson:"-"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" bson:"updated_at"`
}
