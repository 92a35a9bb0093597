package dentalchart

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentalchart/dentalchart/internal/platform/auth"
	"github.com/dentalchart/dentalchart/internal/platform/fhir"
	"github.com/dentalchart/dentalchart/pkg/toothnotation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, fhirGroup *echo.Group) {
	staff := auth.RequireRole(auth.RoleDoctor, auth.RoleAssistant)

	read := api.Group("", staff)
	read.GET("/patients/:patient_id/teeth", h.ListTeeth)
	read.GET("/patients/:patient_id/chart", h.GetChart)

	write := api.Group("", staff)
	write.PUT("/patients/:patient_id/teeth/:tooth", h.UpdateTooth)
	write.POST("/patients/:patient_id/teeth/click", h.ClickTooth)

	api.DELETE("/patients/:patient_id/teeth/:tooth", h.ClearTooth, auth.RequireRole(auth.RoleDoctor))

	fhirGroup.GET("/BodyStructure", h.SearchBodyStructuresFHIR, staff)
}

// toothStatusView adds the display notations to a stored status.
type toothStatusView struct {
	*ToothStatus
	Universal string `json:"universal"`
	Palmer    string `json:"palmer"`
}

func newView(s *ToothStatus) toothStatusView {
	universal, _ := toothnotation.FDIToUniversal(s.ToothNumber)
	return toothStatusView{ToothStatus: s, Universal: universal, Palmer: toothnotation.FDIToPalmer(s.ToothNumber)}
}

type updateToothRequest struct {
	Condition string  `json:"condition"`
	Notes     *string `json:"notes"`
}

type clickToothRequest struct {
	Universal string  `json:"universal"`
	Condition string  `json:"condition"`
	Notes     *string `json:"notes"`
}

func patientParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	return id, nil
}

// toothParam reads the :tooth path segment in the notation named by
// ?notation= (FDI when absent).
func toothParam(c echo.Context) (int, error) {
	from := toothnotation.NotationFDI
	if q := c.QueryParam("notation"); q != "" {
		n, err := toothnotation.ParseNotation(q)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		from = n
	}
	raw, err := url.PathUnescape(c.Param("tooth"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid tooth")
	}
	tooth, err := toothnotation.Parse(raw, from)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return tooth.FDI, nil
}

func pediatricParam(c echo.Context) (bool, error) {
	q := c.QueryParam("pediatric")
	if q == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(q)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, "pediatric must be a boolean")
	}
	return v, nil
}

func statusError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, toothnotation.ErrInvalidToothID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) ListTeeth(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListToothStatus(c.Request().Context(), patientID)
	if err != nil {
		return statusError(err)
	}
	views := make([]toothStatusView, len(items))
	for i, it := range items {
		views[i] = newView(it)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) GetChart(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	pediatric, err := pediatricParam(c)
	if err != nil {
		return err
	}
	chart, err := h.svc.GetChart(c.Request().Context(), patientID, pediatric)
	if err != nil {
		return statusError(err)
	}
	return c.JSON(http.StatusOK, chart)
}

func (h *Handler) UpdateTooth(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	fdi, err := toothParam(c)
	if err != nil {
		return err
	}
	var req updateToothRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st := &ToothStatus{PatientID: patientID, ToothNumber: fdi, Condition: Condition(req.Condition), Notes: req.Notes}
	if err := h.svc.UpdateToothStatus(c.Request().Context(), st); err != nil {
		return statusError(err)
	}
	return c.JSON(http.StatusOK, newView(st))
}

func (h *Handler) ClickTooth(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var req clickToothRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := h.svc.RecordClick(c.Request().Context(), patientID, req.Universal, Condition(req.Condition), req.Notes)
	if err != nil {
		return statusError(err)
	}
	return c.JSON(http.StatusOK, newView(st))
}

func (h *Handler) ClearTooth(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	fdi, err := toothParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.ClearToothStatus(c.Request().Context(), patientID, fdi); err != nil {
		return statusError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SearchBodyStructuresFHIR(c echo.Context) error {
	ref := c.QueryParam("patient")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, fhir.InvalidOutcome("patient search parameter is required"))
	}
	patientID, err := uuid.Parse(strings.TrimPrefix(ref, "Patient/"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, fhir.InvalidOutcome("invalid patient reference"))
	}
	items, err := h.svc.ListToothStatus(c.Request().Context(), patientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	resources := make([]map[string]interface{}, len(items))
	for i, it := range items {
		resources[i] = it.ToFHIR()
	}
	bundle, err := fhir.NewSearchBundle(resources, len(resources), c.Request().URL.RequestURI())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, bundle)
}
