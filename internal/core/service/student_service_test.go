package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

func fixedNow() time.Time {
	return time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
}

func newStudentFixture() (ports.StudentService, *stubStudentRepo, *recordNotifier) {
	repo := newStubStudentRepo(&domain.Student{
		ID:      "stu-1",
		CardID:  "card-1",
		Name:    "Student One",
		Email:   "one@school.com",
		Balance: 25,
	})
	notifier := &recordNotifier{}
	svc := NewStudentService(repo, notifier, fixedNow, zerolog.Nop())
	return svc, repo, notifier
}

func TestStudentService_Create(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	student, err := svc.Create(context.Background(), ports.CreateStudentInput{
		CardID: "card-2",
		Name:   "Student Two",
		Grade:  "3rd Grade",
		Email:  "two@school.com",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if student.ID == "" {
		t.Fatalf("expected generated id")
	}
	if student.Balance != 0 {
		t.Fatalf("new students start with zero balance, got %v", student.Balance)
	}

	stored, err := repo.FindByCardID(context.Background(), "card-2", false)
	if err != nil {
		t.Fatalf("student not persisted: %v", err)
	}
	if stored.Name != "Student Two" {
		t.Fatalf("unexpected stored name: %s", stored.Name)
	}
}

func TestStudentService_Create_Validation(t *testing.T) {
	svc, _, _ := newStudentFixture()

	if _, err := svc.Create(context.Background(), ports.CreateStudentInput{Name: "No Card"}); !errors.Is(err, domain.ErrInvalidStudent) {
		t.Fatalf("expected ErrInvalidStudent, got %v", err)
	}
	if _, err := svc.Create(context.Background(), ports.CreateStudentInput{CardID: "card-9"}); !errors.Is(err, domain.ErrInvalidStudent) {
		t.Fatalf("expected ErrInvalidStudent, got %v", err)
	}
}

func TestStudentService_Create_DuplicateCard(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.Create(context.Background(), ports.CreateStudentInput{CardID: "card-1", Name: "Clone"})
	if !errors.Is(err, domain.ErrStudentExists) {
		t.Fatalf("expected ErrStudentExists, got %v", err)
	}
}

func TestStudentService_AddCredit_Balance(t *testing.T) {
	svc, repo, notifier := newStudentFixture()

	result, err := svc.AddCredit(context.Background(), ports.CreditInput{
		StudentID: "stu-1",
		Amount:    30,
		Kind:      ports.CreditKindBalance,
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if result.Student == nil || result.Student.Balance != 55 {
		t.Fatalf("expected balance 55, got %+v", result.Student)
	}
	if result.Subscription != nil {
		t.Fatalf("balance credit must not create a subscription")
	}

	stored, _ := repo.FindByID(context.Background(), "stu-1")
	if stored.Balance != 55 {
		t.Fatalf("expected stored balance 55, got %v", stored.Balance)
	}
	if notifier.balances != 1 {
		t.Fatalf("expected one balance notification, got %d", notifier.balances)
	}
}

func TestStudentService_AddCredit_TermSubscription(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	result, err := svc.AddCredit(context.Background(), ports.CreditInput{
		StudentID:        "stu-1",
		Amount:           200,
		Kind:             ports.CreditKindSubscription,
		SubscriptionType: domain.SubscriptionTerm,
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	sub := result.Subscription
	if sub == nil {
		t.Fatalf("expected subscription in result")
	}
	if got, want := sub.EndDate, fixedNow().AddDate(0, 4, 0); !got.Equal(want) {
		t.Fatalf("term subscription must run 4 months: got %v, want %v", got, want)
	}

	// The balance is untouched by a subscription purchase.
	stored, _ := repo.FindByID(context.Background(), "stu-1")
	if stored.Balance != 25 {
		t.Fatalf("expected balance 25, got %v", stored.Balance)
	}
}

func TestStudentService_AddCredit_AnnualSubscription(t *testing.T) {
	svc, _, _ := newStudentFixture()

	result, err := svc.AddCredit(context.Background(), ports.CreditInput{
		StudentID:        "stu-1",
		Amount:           500,
		Kind:             ports.CreditKindSubscription,
		SubscriptionType: domain.SubscriptionAnnual,
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if got, want := result.Subscription.EndDate, fixedNow().AddDate(0, 12, 0); !got.Equal(want) {
		t.Fatalf("annual subscription must run 12 months: got %v, want %v", got, want)
	}
}

func TestStudentService_AddCredit_Validation(t *testing.T) {
	svc, _, _ := newStudentFixture()

	cases := []struct {
		name  string
		input ports.CreditInput
	}{
		{"zero amount", ports.CreditInput{StudentID: "stu-1", Amount: 0, Kind: ports.CreditKindBalance}},
		{"negative amount", ports.CreditInput{StudentID: "stu-1", Amount: -10, Kind: ports.CreditKindBalance}},
		{"unknown kind", ports.CreditInput{StudentID: "stu-1", Amount: 10, Kind: "voucher"}},
		{"unknown subscription type", ports.CreditInput{StudentID: "stu-1", Amount: 10, Kind: ports.CreditKindSubscription, SubscriptionType: "WEEKLY"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddCredit(context.Background(), tc.input); !errors.Is(err, domain.ErrInvalidCredit) {
				t.Fatalf("expected ErrInvalidCredit, got %v", err)
			}
		})
	}
}

func TestStudentService_AddCredit_UnknownStudent(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.AddCredit(context.Background(), ports.CreditInput{
		StudentID: "ghost",
		Amount:    10,
		Kind:      ports.CreditKindBalance,
	})
	if !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestStudentService_GetByCard(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	_ = repo.CreateSubscription(context.Background(), &domain.Subscription{
		ID:        "sub-1",
		StudentID: "stu-1",
		Type:      domain.SubscriptionTerm,
		StartDate: fixedNow(),
		EndDate:   fixedNow().AddDate(0, 4, 0),
	})

	student, err := svc.GetByCard(context.Background(), "card-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if student.Name != "Student One" {
		t.Fatalf("unexpected student: %s", student.Name)
	}
}

func TestStudentService_SetPhoto(t *testing.T) {
	repo := newStubStudentRepo(&domain.Student{ID: "stu-1", CardID: "card-1", ExternalCode: "EXT-1", Name: "Student One"})
	svc := NewStudentService(repo, &recordNotifier{}, fixedNow, zerolog.Nop())

	student, err := svc.SetPhoto(context.Background(), "EXT-1", "https://cdn.example.com/p.jpg")
	if err != nil {
		t.Fatalf("set photo failed: %v", err)
	}
	if student.Photo != "https://cdn.example.com/p.jpg" {
		t.Fatalf("photo not updated: %s", student.Photo)
	}

	if _, err := svc.SetPhoto(context.Background(), "EXT-1", ""); !errors.Is(err, domain.ErrInvalidStudent) {
		t.Fatalf("expected ErrInvalidStudent for empty url, got %v", err)
	}
}
