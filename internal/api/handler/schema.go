package handler

import (
	"time"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// Response-only types owned by the transport layer. The JSON contract is
// camelCase (the terminals predate this service) and is intentionally
// decoupled from the domain types.

type subscriptionResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type studentResponse struct {
	ID            string                 `json:"id"`
	CardID        string                 `json:"cardId"`
	ExternalCode  string                 `json:"externalCode,omitempty"`
	Name          string                 `json:"name"`
	Grade         string                 `json:"grade"`
	Email         string                 `json:"email,omitempty"`
	Balance       float64                `json:"balance"`
	Photo         string                 `json:"photo,omitempty"`
	Subscriptions []subscriptionResponse `json:"subscriptions,omitempty"`
}

type productResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

func toStudentResponse(s *domain.Student) studentResponse {
	resp := studentResponse{
		ID:           s.ID,
		CardID:       s.CardID,
		ExternalCode: s.ExternalCode,
		Name:         s.Name,
		Grade:        s.Grade,
		Email:        s.Email,
		Balance:      s.Balance,
		Photo:        s.Photo,
	}
	for _, sub := range s.Subscriptions {
		resp.Subscriptions = append(resp.Subscriptions, toSubscriptionResponse(&sub))
	}
	return resp
}

func toSubscriptionResponse(sub *domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:        sub.ID,
		Type:      string(sub.Type),
		Amount:    sub.Amount,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: string(p.Category),
	}
}
