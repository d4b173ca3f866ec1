package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lacanteen/canteen-system/internal/api/metrics"
	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

type studentService struct {
	repo     ports.StudentRepository
	notifier ports.Notifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewStudentService returns a StudentService. now may be nil, in which
// case time.Now is used; tests pin it to check subscription end dates.
func NewStudentService(repo ports.StudentRepository, notifier ports.Notifier, now func() time.Time, log zerolog.Logger) ports.StudentService {
	if now == nil {
		now = time.Now
	}
	return &studentService{repo: repo, notifier: notifier, now: now, log: log}
}

func (s *studentService) Create(ctx context.Context, in ports.CreateStudentInput) (*domain.Student, error) {
	if in.CardID == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: card id and name are required", domain.ErrInvalidStudent)
	}

	now := s.now().UTC()
	student := &domain.Student{
		ID:           uuid.NewString(),
		CardID:       in.CardID,
		ExternalCode: in.ExternalCode,
		Name:         in.Name,
		Grade:        in.Grade,
		Email:        in.Email,
		Balance:      0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info().Str("student_id", student.ID).Str("card_id", student.CardID).Msg("student enrolled")
	return student, nil
}

func (s *studentService) GetByCard(ctx context.Context, cardID string) (*domain.Student, error) {
	return s.repo.FindByCardID(ctx, cardID, true)
}

// AddCredit either tops up the balance or creates a subscription. Both
// paths are additive: neither can violate balance non-negativity, so no
// transactional re-check is needed here.
func (s *studentService) AddCredit(ctx context.Context, in ports.CreditInput) (*ports.CreditResult, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidCredit)
	}

	switch in.Kind {
	case ports.CreditKindBalance:
		student, err := s.repo.IncrementBalance(ctx, in.StudentID, in.Amount)
		if err != nil {
			return nil, err
		}
		metrics.CreditsTotal.WithLabelValues(ports.CreditKindBalance).Inc()
		s.log.Info().
			Str("student_id", student.ID).
			Float64("amount", in.Amount).
			Float64("new_balance", student.Balance).
			Msg("balance credited")
		s.notifier.BalanceUpdateNotification(student.Email, student.Name, in.Amount, student.Balance)
		return &ports.CreditResult{Student: student}, nil

	case ports.CreditKindSubscription:
		months, ok := in.SubscriptionType.Duration()
		if !ok {
			return nil, fmt.Errorf("%w: unknown subscription type %q", domain.ErrInvalidCredit, in.SubscriptionType)
		}
		// The student must exist before a subscription row is attached.
		student, err := s.repo.FindByID(ctx, in.StudentID)
		if err != nil {
			return nil, err
		}

		start := s.now().UTC()
		sub := &domain.Subscription{
			ID:        uuid.NewString(),
			StudentID: student.ID,
			Type:      in.SubscriptionType,
			Amount:    in.Amount,
			StartDate: start,
			EndDate:   start.AddDate(0, months, 0),
		}
		if err := s.repo.CreateSubscription(ctx, sub); err != nil {
			return nil, err
		}
		metrics.CreditsTotal.WithLabelValues(ports.CreditKindSubscription).Inc()
		s.log.Info().
			Str("student_id", student.ID).
			Str("type", string(sub.Type)).
			Time("end_date", sub.EndDate).
			Msg("subscription created")
		return &ports.CreditResult{Subscription: sub}, nil

	default:
		return nil, fmt.Errorf("%w: unknown credit kind %q", domain.ErrInvalidCredit, in.Kind)
	}
}

func (s *studentService) SetPhoto(ctx context.Context, externalCode, photoURL string) (*domain.Student, error) {
	if photoURL == "" {
		return nil, fmt.Errorf("%w: photo url is required", domain.ErrInvalidStudent)
	}
	return s.repo.UpdatePhoto(ctx, externalCode, photoURL)
}
