package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lacanteen/canteen-system/internal/core/ports"
)

// CheckoutHandler exposes the checkout transaction over HTTP. Both the
// card-scan route and the legacy student-id route translate into the
// same service call; the handlers are translation only.
type CheckoutHandler struct {
	service ports.CheckoutService
}

func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Checkout handles POST /checkout.
//
// @Summary      Charge a student's balance for a cart
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string           false  "Key guarding against duplicate submission"
// @Param        body             body      checkoutRequest  true   "Card id and cart"
// @Success      200              {object}  checkoutResponse
// @Failure      400              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items := make([]ports.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ports.CartItem{
			ProductID: item.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	result, err := h.service.Checkout(c.Request().Context(), ports.CheckoutInput{
		CardID:         req.CardID,
		Items:          items,
		DisplayTotal:   req.Total,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, checkoutResponse{
		Success: true,
		Data: checkoutData{
			Balance:          result.NewBalance,
			StudentName:      result.StudentName,
			TransactionCount: len(result.Transactions),
		},
	})
}

// CreateTransaction handles POST /transactions, the older terminal route
// that locates the student by id and never supplies prices.
//
// @Summary      Charge a student's balance (legacy student-id route)
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      transactionRequest  true  "Student id and cart"
// @Success      200   {object}  checkoutResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /transactions [post]
func (h *CheckoutHandler) CreateTransaction(c echo.Context) error {
	var req transactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items := make([]ports.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ports.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.service.Checkout(c.Request().Context(), ports.CheckoutInput{
		StudentID: req.StudentID,
		Items:     items,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, checkoutResponse{
		Success: true,
		Data: checkoutData{
			Balance:          result.NewBalance,
			StudentName:      result.StudentName,
			TransactionCount: len(result.Transactions),
		},
	})
}
