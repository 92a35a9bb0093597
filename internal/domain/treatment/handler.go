package treatment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentalchart/dentalchart/internal/platform/auth"
	"github.com/dentalchart/dentalchart/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(auth.RoleDoctor, auth.RoleAssistant)
	doctor := auth.RequireRole(auth.RoleDoctor)

	read := api.Group("", staff)
	read.GET("/treatments/:id", h.GetTreatment)
	read.GET("/patients/:patient_id/treatments", h.ListTreatments)

	write := api.Group("", doctor)
	write.POST("/treatments", h.CreateTreatment)
	write.PUT("/treatments/:id", h.UpdateTreatment)
	write.DELETE("/treatments/:id", h.DeleteTreatment)
}

func treatmentError(err error) error {
	switch {
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func idParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func (h *Handler) CreateTreatment(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.CreateTreatment(c.Request().Context(), &in)
	if err != nil {
		return treatmentError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTreatment(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	t, err := h.svc.GetTreatment(c.Request().Context(), id)
	if err != nil {
		return treatmentError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTreatment(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.UpdateTreatment(c.Request().Context(), id, &in)
	if err != nil {
		return treatmentError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTreatment(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTreatment(c.Request().Context(), id); err != nil {
		return treatmentError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTreatments(c echo.Context) error {
	patientID, err := idParam(c, "patient_id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListTreatments(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return treatmentError(err)
	}
	if items == nil {
		items = []*Treatment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
