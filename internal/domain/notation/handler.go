package notation

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dentalchart/dentalchart/internal/platform/metrics"
	"github.com/dentalchart/dentalchart/pkg/toothnotation"
)

// Handler exposes the tooth notation engine. Every endpoint is a pure
// conversion; nothing touches the database.
type Handler struct {
	metrics *metrics.Metrics
}

func NewHandler(m *metrics.Metrics) *Handler {
	return &Handler{metrics: m}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/notation")
	g.GET("/convert", h.Convert)
	g.GET("/fdi", h.ToFDI)
	g.GET("/palmer", h.FDIToPalmer)
	g.GET("/palmer-to-fdi", h.PalmerToFDI)
	g.GET("/universal-to-palmer", h.UniversalToPalmer)
	g.GET("/layout", h.Layout)
}

func boolParam(c echo.Context, name string) (bool, error) {
	q := c.QueryParam(name)
	if q == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(q)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, name+" must be a boolean")
	}
	return v, nil
}

func requireParam(c echo.Context, name string) (string, error) {
	v := c.QueryParam(name)
	if strings.TrimSpace(v) == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, name+" is required")
	}
	return v, nil
}

// Convert expands one tooth into every notation. ?from= names the input
// notation and defaults to universal.
func (h *Handler) Convert(c echo.Context) error {
	tooth, err := requireParam(c, "tooth")
	if err != nil {
		return err
	}
	from := toothnotation.NotationUniversal
	if q := c.QueryParam("from"); q != "" {
		if from, err = toothnotation.ParseNotation(q); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	t, err := toothnotation.Parse(tooth, from)
	h.metrics.ObserveConversion("convert", err == nil)
	if err != nil {
		if errors.Is(err, toothnotation.ErrInvalidToothID) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ToFDI(c echo.Context) error {
	universal, err := requireParam(c, "universal")
	if err != nil {
		return err
	}
	fdi, err := toothnotation.ToFDI(universal)
	h.metrics.ObserveConversion("to_fdi", err == nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"fdi": fdi})
}

// FDIToPalmer never fails for an integer; unknown codes come back as their
// decimal string.
func (h *Handler) FDIToPalmer(c echo.Context) error {
	raw, err := requireParam(c, "fdi")
	if err != nil {
		return err
	}
	fdi, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "fdi must be an integer")
	}
	h.metrics.ObserveConversion("fdi_to_palmer", toothnotation.ValidFDI(fdi))
	return c.JSON(http.StatusOK, map[string]string{"palmer": toothnotation.FDIToPalmer(fdi)})
}

// PalmerToFDI answers {"fdi": null} for labels that do not parse.
func (h *Handler) PalmerToFDI(c echo.Context) error {
	label, err := requireParam(c, "palmer")
	if err != nil {
		return err
	}
	fdi, ok := toothnotation.PalmerToFDI(label)
	h.metrics.ObserveConversion("palmer_to_fdi", ok)
	resp := map[string]interface{}{"fdi": nil, "valid": false}
	if ok {
		resp["fdi"] = fdi
		resp["valid"] = toothnotation.ValidFDI(fdi)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) UniversalToPalmer(c echo.Context) error {
	universal, err := requireParam(c, "universal")
	if err != nil {
		return err
	}
	pediatric, err := boolParam(c, "pediatric")
	if err != nil {
		return err
	}
	palmer := toothnotation.UniversalToPalmer(universal, pediatric)
	h.metrics.ObserveConversion("universal_to_palmer", palmer != universal)
	return c.JSON(http.StatusOK, map[string]string{"palmer": palmer})
}

func (h *Handler) Layout(c echo.Context) error {
	pediatric, err := boolParam(c, "pediatric")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toothnotation.ArchLayout(pediatric))
}
