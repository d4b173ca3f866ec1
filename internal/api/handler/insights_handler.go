package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lacanteen/canteen-system/internal/core/ports"
)

type InsightsHandler struct {
	service ports.InsightsService
}

func NewInsightsHandler(service ports.InsightsService) *InsightsHandler {
	return &InsightsHandler{service: service}
}

type topProductResponse struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Count       int64  `json:"count"`
}

// The withCanteen / withGardeRepas field names are the terminals'
// dashboard contract: annual subscribers eat at the canteen, term
// subscribers are in the garde-repas program.
type insightsResponse struct {
	TotalStudents       int64                `json:"totalStudents"`
	WithCanteen         int64                `json:"withCanteen"`
	WithGardeRepas      int64                `json:"withGardeRepas"`
	WithoutSubscription int64                `json:"withoutSubscription"`
	RecentTransactions  []topProductResponse `json:"recentTransactions"`
}

type historyStudentResponse struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

type historyProductResponse struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type historyTransactionResponse struct {
	ID        string                 `json:"id"`
	StudentID string                 `json:"studentId"`
	ProductID string                 `json:"productId"`
	Quantity  int                    `json:"quantity"`
	Amount    float64                `json:"amount"`
	CreatedAt time.Time              `json:"createdAt"`
	Student   historyStudentResponse `json:"student"`
	Product   historyProductResponse `json:"product"`
}

type historyResponse struct {
	Transactions []historyTransactionResponse `json:"transactions"`
	TopProducts  []topProductResponse         `json:"topProducts"`
}

// Summary handles GET /insights.
//
// @Summary      Dashboard summary
// @Tags         insights
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  insightsResponse
// @Router       /insights [get]
func (h *InsightsHandler) Summary(c echo.Context) error {
	insights, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, insightsResponse{
		TotalStudents:       insights.TotalStudents,
		WithCanteen:         insights.WithAnnual,
		WithGardeRepas:      insights.WithTerm,
		WithoutSubscription: insights.WithoutSubscription,
		RecentTransactions:  toTopProducts(insights.TopProducts),
	})
}

// History handles GET /transactions/history.
//
// @Summary      Recent transactions with top products
// @Tags         insights
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  historyResponse
// @Router       /transactions/history [get]
func (h *InsightsHandler) History(c echo.Context) error {
	history, err := h.service.History(c.Request().Context())
	if err != nil {
		return err
	}

	txs := make([]historyTransactionResponse, 0, len(history.Transactions))
	for _, entry := range history.Transactions {
		txs = append(txs, historyTransactionResponse{
			ID:        entry.Transaction.ID,
			StudentID: entry.Transaction.StudentID,
			ProductID: entry.Transaction.ProductID,
			Quantity:  entry.Transaction.Quantity,
			Amount:    entry.Transaction.Amount,
			CreatedAt: entry.Transaction.CreatedAt,
			Student:   historyStudentResponse{Name: entry.StudentName, Grade: entry.Grade},
			Product:   historyProductResponse{Name: entry.ProductName, Price: entry.UnitPrice},
		})
	}

	return c.JSON(http.StatusOK, historyResponse{
		Transactions: txs,
		TopProducts:  toTopProducts(history.TopProducts),
	})
}

func toTopProducts(top []ports.TopProduct) []topProductResponse {
	resp := make([]topProductResponse, 0, len(top))
	for _, t := range top {
		resp = append(resp, topProductResponse{
			ProductID:   t.ProductID,
			ProductName: t.ProductName,
			Count:       t.Count,
		})
	}
	return resp
}
