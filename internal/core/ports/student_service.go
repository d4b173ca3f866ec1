package ports

import (
	"context"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

// Credit kinds accepted by AddCredit.
const (
	CreditKindBalance      = "balance"
	CreditKindSubscription = "subscription"
)

// CreditInput carries a balance top-up or subscription purchase.
type CreditInput struct {
	StudentID        string
	Amount           float64
	Kind             string // CreditKindBalance or CreditKindSubscription
	SubscriptionType domain.SubscriptionType
}

// CreditResult holds whichever record the credit operation produced.
type CreditResult struct {
	Student      *domain.Student      // set for balance credits
	Subscription *domain.Subscription // set for subscription credits
}

// CreateStudentInput carries the fields accepted when enrolling a student.
type CreateStudentInput struct {
	CardID       string
	ExternalCode string
	Name         string
	Grade        string
	Email        string
}

// StudentService defines use-case operations on students.
type StudentService interface {
	Create(ctx context.Context, input CreateStudentInput) (*domain.Student, error)
	GetByCard(ctx context.Context, cardID string) (*domain.Student, error)
	AddCredit(ctx context.Context, input CreditInput) (*CreditResult, error)
	SetPhoto(ctx context.Context, externalCode, photoURL string) (*domain.Student, error)
}
