package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

type stubStudentService struct {
	createFn    func(ctx context.Context, input ports.CreateStudentInput) (*domain.Student, error)
	getByCardFn func(ctx context.Context, cardID string) (*domain.Student, error)
	addCreditFn func(ctx context.Context, input ports.CreditInput) (*ports.CreditResult, error)
	setPhotoFn  func(ctx context.Context, externalCode, photoURL string) (*domain.Student, error)
}

func (s *stubStudentService) Create(ctx context.Context, input ports.CreateStudentInput) (*domain.Student, error) {
	return s.createFn(ctx, input)
}

func (s *stubStudentService) GetByCard(ctx context.Context, cardID string) (*domain.Student, error) {
	return s.getByCardFn(ctx, cardID)
}

func (s *stubStudentService) AddCredit(ctx context.Context, input ports.CreditInput) (*ports.CreditResult, error) {
	return s.addCreditFn(ctx, input)
}

func (s *stubStudentService) SetPhoto(ctx context.Context, externalCode, photoURL string) (*domain.Student, error) {
	return s.setPhotoFn(ctx, externalCode, photoURL)
}

func TestStudentHandler_GetByCard(t *testing.T) {
	stub := &stubStudentService{
		getByCardFn: func(ctx context.Context, cardID string) (*domain.Student, error) {
			if cardID != "card-1" {
				t.Fatalf("unexpected card id: %s", cardID)
			}
			return &domain.Student{
				ID:      "stu-1",
				CardID:  cardID,
				Name:    "Student One",
				Grade:   "5th Grade",
				Balance: 42.5,
				Subscriptions: []domain.Subscription{{
					ID:      "sub-1",
					Type:    domain.SubscriptionTerm,
					EndDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
				}},
			}, nil
		},
	}
	h := NewStudentHandler(stub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/students/card/:cardId")
	c.SetParamNames("cardId")
	c.SetParamValues("card-1")

	if err := h.GetByCard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["cardId"] != "card-1" || resp["balance"] != 42.5 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	subs, ok := resp["subscriptions"].([]any)
	if !ok || len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %v", resp["subscriptions"])
	}
}

func TestStudentHandler_GetByCard_NotFound(t *testing.T) {
	stub := &stubStudentService{
		getByCardFn: func(ctx context.Context, cardID string) (*domain.Student, error) {
			return nil, domain.ErrStudentNotFound
		},
	}
	h := NewStudentHandler(stub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("cardId")
	c.SetParamValues("ghost")

	if err := h.GetByCard(c); !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound to propagate, got %v", err)
	}
}

func TestStudentHandler_Create(t *testing.T) {
	stub := &stubStudentService{
		createFn: func(ctx context.Context, input ports.CreateStudentInput) (*domain.Student, error) {
			if input.CardID != "card-2" || input.Name != "Student Two" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Student{ID: "stu-2", CardID: input.CardID, Name: input.Name}, nil
		},
	}
	h := NewStudentHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/students",
		`{"cardId":"card-2","name":"Student Two","grade":"3rd Grade"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestStudentHandler_Create_Validation(t *testing.T) {
	stub := &stubStudentService{
		createFn: func(ctx context.Context, input ports.CreateStudentInput) (*domain.Student, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewStudentHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/students", `{"name":"No Card"}`)
	if got := httpStatus(t, h.Create(c)); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestStudentHandler_AddCredit_Balance(t *testing.T) {
	stub := &stubStudentService{
		addCreditFn: func(ctx context.Context, input ports.CreditInput) (*ports.CreditResult, error) {
			if input.StudentID != "stu-1" || input.Kind != ports.CreditKindBalance || input.Amount != 30 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.CreditResult{Student: &domain.Student{ID: "stu-1", Balance: 55}}, nil
		},
	}
	h := NewStudentHandler(stub)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":30,"type":"balance"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("stu-1")

	if err := h.AddCredit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["balance"] != float64(55) {
		t.Fatalf("expected updated balance in response, got %v", resp["balance"])
	}
}

func TestStudentHandler_AddCredit_Subscription(t *testing.T) {
	stub := &stubStudentService{
		addCreditFn: func(ctx context.Context, input ports.CreditInput) (*ports.CreditResult, error) {
			if input.SubscriptionType != domain.SubscriptionAnnual {
				t.Fatalf("unexpected subscription type: %s", input.SubscriptionType)
			}
			return &ports.CreditResult{Subscription: &domain.Subscription{
				ID:   "sub-1",
				Type: domain.SubscriptionAnnual,
			}}, nil
		},
	}
	h := NewStudentHandler(stub)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":500,"type":"subscription","subscriptionType":"ANNUAL"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("stu-1")

	if err := h.AddCredit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["type"] != "ANNUAL" {
		t.Fatalf("expected subscription in response, got %+v", resp)
	}
}

func TestStudentHandler_AddCredit_Validation(t *testing.T) {
	stub := &stubStudentService{
		addCreditFn: func(ctx context.Context, input ports.CreditInput) (*ports.CreditResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewStudentHandler(stub)

	cases := []struct {
		name string
		body string
	}{
		{"negative amount", `{"amount":-5,"type":"balance"}`},
		{"unknown type", `{"amount":10,"type":"voucher"}`},
		{"bad subscription type", `{"amount":10,"type":"subscription","subscriptionType":"WEEKLY"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestContext(t, http.MethodPost, "/students/stu-1/credit", tc.body)
			if got := httpStatus(t, h.AddCredit(c)); got != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", got)
			}
		})
	}
}

func TestStudentHandler_SetPhoto(t *testing.T) {
	stub := &stubStudentService{
		setPhotoFn: func(ctx context.Context, externalCode, photoURL string) (*domain.Student, error) {
			if externalCode != "EXT-1" || photoURL != "https://cdn.example.com/p.jpg" {
				t.Fatalf("unexpected args: %s %s", externalCode, photoURL)
			}
			return &domain.Student{ID: "stu-1", ExternalCode: externalCode, Photo: photoURL}, nil
		},
	}
	h := NewStudentHandler(stub)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"photoUrl":"https://cdn.example.com/p.jpg"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("externalCode")
	c.SetParamValues("EXT-1")

	if err := h.SetPhoto(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
