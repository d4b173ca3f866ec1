package ports

import (
	"context"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

// StudentRepository defines persistence operations for students and their
// subscriptions. Balance writes outside the checkout path go through
// IncrementBalance, which is additive only.
type StudentRepository interface {
	Create(ctx context.Context, s *domain.Student) error
	FindByID(ctx context.Context, id string) (*domain.Student, error)
	// FindByCardID resolves a student by physical card identifier. When
	// withSubscriptions is true, subscriptions active at the time of the
	// call are attached to the returned student.
	FindByCardID(ctx context.Context, cardID string, withSubscriptions bool) (*domain.Student, error)
	FindByExternalCode(ctx context.Context, code string) (*domain.Student, error)
	// IncrementBalance atomically adds amount (> 0) to the student's
	// balance and returns the updated record.
	IncrementBalance(ctx context.Context, id string, amount float64) (*domain.Student, error)
	CreateSubscription(ctx context.Context, sub *domain.Subscription) error
	UpdatePhoto(ctx context.Context, externalCode, photoURL string) (*domain.Student, error)

	Count(ctx context.Context) (int64, error)
	// CountWithSubscriptionType counts distinct students holding at least
	// one subscription of the given type, regardless of expiry.
	CountWithSubscriptionType(ctx context.Context, t domain.SubscriptionType) (int64, error)
}
