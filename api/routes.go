package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/service/routes"
	"github.com/gin-gonic/gin"
)

type AirportView struct {
	Code    string `json:"code"`
	City    string `json:"city"`
	Country string `json:"country"`
	Display string `json:"display"`
}

type FlightView struct {
	Number      string  `json:"number"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Hours       float64 `json:"hours"`
	Domestic    bool    `json:"domestic"`
	Display     string  `json:"display"`
}

type ReturnTripView struct {
	Outbound FlightView `json:"outbound"`
	Inbound  FlightView `json:"inbound"`
}

type correctAirportRequest struct {
	City    string `json:"city" binding:"required"`
	Country string `json:"country" binding:"required"`
}

type RouteHandler struct {
	service routes.RouteUseCase
}

func NewRouteHandler(service routes.RouteUseCase) *RouteHandler {
	return &RouteHandler{service: service}
}

func (h *RouteHandler) Register(router *gin.RouterGroup) {
	router.GET("/airports", h.listAirports)
	router.GET("/airports/:code", h.getAirport)
	router.PATCH("/airports/:code", h.correctAirport)
	router.GET("/airports/:code/shortest", h.shortest)
	router.GET("/flights", h.listFlights)
	router.GET("/routes", h.findRoute)
	router.GET("/routes/return", h.findReturn)
	router.POST("/reload", h.reload)
}

func (h *RouteHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats(c.Request.Context()))
}

func (h *RouteHandler) listAirports(c *gin.Context) {
	airports := h.service.Airports(c.Request.Context())
	out := make([]AirportView, 0, len(airports))
	for _, a := range airports {
		out = append(out, toAirportView(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RouteHandler) getAirport(c *gin.Context) {
	a, err := h.service.Airport(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAirportView(a))
}

func (h *RouteHandler) correctAirport(c *gin.Context) {
	var req correctAirportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.service.CorrectAirport(c.Request.Context(), c.Param("code"), req.City, req.Country)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAirportView(a))
}

func (h *RouteHandler) shortest(c *gin.Context) {
	f, ok, err := h.service.ShortestFlightFrom(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toFlightView(f))
}

func (h *RouteHandler) listFlights(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	country := strings.TrimSpace(c.Query("country"))

	var flights []*domain.Flight
	switch {
	case city != "" && country == "":
		flights = h.service.FlightsByCity(c.Request.Context(), city)
	case country != "" && city == "":
		flights = h.service.FlightsByCountry(c.Request.Context(), country)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of city or country is required"})
		return
	}

	out := make([]FlightView, 0, len(flights))
	for _, f := range flights {
		out = append(out, toFlightView(f))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RouteHandler) findRoute(c *gin.Context) {
	from, to, ok := endpoints(c)
	if !ok {
		return
	}
	route, err := h.service.FindRoute(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (h *RouteHandler) findReturn(c *gin.Context) {
	from, to, ok := endpoints(c)
	if !ok {
		return
	}
	out, back, err := h.service.FindReturnFlight(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReturnTripView{Outbound: toFlightView(out), Inbound: toFlightView(back)})
}

func (h *RouteHandler) reload(c *gin.Context) {
	stats, err := h.service.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "stats": stats})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func endpoints(c *gin.Context) (from, to string, ok bool) {
	from = strings.TrimSpace(c.Query("from"))
	to = strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return "", "", false
	}
	return from, to, true
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUnknownAirport),
		errors.Is(err, domain.ErrNoRouteFound),
		errors.Is(err, domain.ErrNoReturnFlight):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrFormat),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidFlightNumber),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrIncompatibleRoute):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func toAirportView(a *domain.Airport) AirportView {
	return AirportView{Code: a.Code(), City: a.City(), Country: a.Country(), Display: a.String()}
}

func toFlightView(f *domain.Flight) FlightView {
	return FlightView{
		Number:      f.Number(),
		Origin:      f.Origin().Code(),
		Destination: f.Destination().Code(),
		Hours:       f.Hours(),
		Domestic:    f.IsDomestic(),
		Display:     f.String(),
	}
}
