package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

type StudentHandler struct {
	service ports.StudentService
}

func NewStudentHandler(service ports.StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

type createStudentRequest struct {
	CardID       string `json:"cardId" validate:"required"`
	ExternalCode string `json:"externalCode"`
	Name         string `json:"name"   validate:"required"`
	Grade        string `json:"grade"`
	Email        string `json:"email"  validate:"omitempty,email"`
}

type creditRequest struct {
	Amount           float64 `json:"amount"           validate:"required,gt=0"`
	Type             string  `json:"type"             validate:"required,oneof=balance subscription"`
	SubscriptionType string  `json:"subscriptionType" validate:"omitempty,oneof=TERM ANNUAL"`
}

type photoRequest struct {
	PhotoURL string `json:"photoUrl" validate:"required,url"`
}

// GetByCard handles GET /students/card/:cardId, the scan lookup. The
// response includes only subscriptions active at lookup time.
//
// @Summary      Resolve a student by card id
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        cardId  path      string  true  "Physical card identifier"
// @Success      200     {object}  studentResponse
// @Failure      404     {object}  errorResponse
// @Router       /students/card/{cardId} [get]
func (h *StudentHandler) GetByCard(c echo.Context) error {
	student, err := h.service.GetByCard(c.Request().Context(), c.Param("cardId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentResponse(student))
}

// Create handles POST /students.
//
// @Summary      Enroll a student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createStudentRequest  true  "Student details"
// @Success      201   {object}  studentResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /students [post]
func (h *StudentHandler) Create(c echo.Context) error {
	var req createStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	student, err := h.service.Create(c.Request().Context(), ports.CreateStudentInput{
		CardID:       req.CardID,
		ExternalCode: req.ExternalCode,
		Name:         req.Name,
		Grade:        req.Grade,
		Email:        req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStudentResponse(student))
}

// AddCredit handles POST /students/:id/credit. A balance credit returns
// the updated student; a subscription credit returns the new subscription.
//
// @Summary      Add balance or a subscription to a student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Student id"
// @Param        body  body      creditRequest  true  "Credit details"
// @Success      200   {object}  studentResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /students/{id}/credit [post]
func (h *StudentHandler) AddCredit(c echo.Context) error {
	var req creditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.AddCredit(c.Request().Context(), ports.CreditInput{
		StudentID:        c.Param("id"),
		Amount:           req.Amount,
		Kind:             req.Type,
		SubscriptionType: domain.SubscriptionType(req.SubscriptionType),
	})
	if err != nil {
		return err
	}

	if result.Student != nil {
		return c.JSON(http.StatusOK, toStudentResponse(result.Student))
	}
	return c.JSON(http.StatusOK, toSubscriptionResponse(result.Subscription))
}

// SetPhoto handles PUT /students/:externalCode/photo.
//
// @Summary      Update a student's photo by external code
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        externalCode  path      string        true  "External code"
// @Param        body          body      photoRequest  true  "Photo URL"
// @Success      200           {object}  studentResponse
// @Failure      400           {object}  errorResponse
// @Failure      404           {object}  errorResponse
// @Router       /students/{externalCode}/photo [put]
func (h *StudentHandler) SetPhoto(c echo.Context) error {
	var req photoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	student, err := h.service.SetPhoto(c.Request().Context(), c.Param("externalCode"), req.PhotoURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentResponse(student))
}
