package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/repository"
	"github.com/filmdb/contribution-service/internal/service"
)

// QueryHandler exposes the read-side endpoints: record listings,
// contribution detail and the ledger search.
type QueryHandler struct {
	Queries *service.QueryService
}

func NewQueryHandler(s *service.QueryService) *QueryHandler {
	if s == nil {
		panic("nil service passed to NewQueryHandler")
	}
	return &QueryHandler{Queries: s}
}

// recordPart is the public projection of a published record.
type recordPart struct {
	ID      uint64        `json:"id"`
	Payload model.Payload `json:"payload"`
	Created string        `json:"created"`
}

// GetRecords handles GET /v1/movies/:id/records/:field.  It is public and
// shows only ACCEPTED data.
func (h *QueryHandler) GetRecords(c echo.Context) error {
	movieID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	kind, err := paramKind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	recs, err := h.Queries.AcceptedRecords(c.Request().Context(), movieID, kind)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]recordPart, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordPart{ID: r.ID, Payload: r.Payload, Created: r.CreatedAt.Format(time.RFC3339)})
	}
	return c.JSON(http.StatusOK, echo.Map{"movie_id": movieID, "field": kind, "records": out})
}

// GetContribution handles GET /v1/contributions/:field/:id.
func (h *QueryHandler) GetContribution(c echo.Context) error {
	kind, err := paramKind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	detail, err := h.Queries.Contribution(c.Request().Context(), kind, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Search handles GET /v1/contributions with optional movie_id, field,
// status, from, to, page and per_page query parameters.
func (h *QueryHandler) Search(c echo.Context) error {
	var f repository.ContributionFilter

	if v := c.QueryParam("movie_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
		}
		f.MovieID = id
	}
	if v := c.QueryParam("field"); v != "" {
		kind, ok := model.ParseFieldKind(v)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown field kind"})
		}
		f.Field = kind
	}
	if v := c.QueryParam("status"); v != "" {
		status := model.DataStatus(v)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		f.Status = status
	}
	if v := c.QueryParam("from"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
		}
		f.FromDate = d.Time()
	}
	if v := c.QueryParam("to"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
		}
		// The upper bound is inclusive of the whole day.
		f.ToDate = d.Time().Add(24*time.Hour - time.Nanosecond)
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	perPage := 0
	if v := c.QueryParam("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perPage = n
		}
	}

	res, err := h.Queries.Find(c.Request().Context(), f, page, perPage)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
