package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/service"
)

// ContributionHandler exposes the submission endpoints.
type ContributionHandler struct {
	Contributions *service.ContributionService
}

func NewContributionHandler(s *service.ContributionService) *ContributionHandler {
	if s == nil {
		panic("nil service passed to NewContributionHandler")
	}
	return &ContributionHandler{Contributions: s}
}

// contributionReq is the wire form of a submission or amendment.  Payloads
// arrive as raw JSON and are decoded against the field kind from the URL,
// so one endpoint shape serves all thirteen kinds.
type contributionReq struct {
	ToAdd    []json.RawMessage          `json:"to_add"`
	ToUpdate map[string]json.RawMessage `json:"to_update"`
	ToDelete []uint64                   `json:"to_delete"`
	Sources  []string                   `json:"sources"`
	Comment  string                     `json:"comment"`
}

// decode turns the wire form into a service request, decoding every raw
// payload against the kind.
func (r *contributionReq) decode(kind model.FieldKind) (service.ContributionRequest, error) {
	out := service.ContributionRequest{
		ToDelete: r.ToDelete,
		Sources:  r.Sources,
		Comment:  r.Comment,
	}
	for _, raw := range r.ToAdd {
		p, err := model.DecodePayload(kind, raw)
		if err != nil {
			return out, err
		}
		out.ToAdd = append(out.ToAdd, p)
	}
	if len(r.ToUpdate) > 0 {
		out.ToUpdate = make(map[uint64]model.Payload, len(r.ToUpdate))
		for idStr, raw := range r.ToUpdate {
			id, err := strconv.ParseUint(idStr, 10, 64)
			if err != nil || id == 0 {
				return out, errInvalidTargetID
			}
			p, err := model.DecodePayload(kind, raw)
			if err != nil {
				return out, err
			}
			out.ToUpdate[id] = p
		}
	}
	return out, nil
}

// Create handles POST /v1/movies/:id/contributions/:field.
func (h *ContributionHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	kind, err := paramKind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var body contributionReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req, err := body.decode(kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	id, err := h.Contributions.Create(c.Request().Context(), uid, movieID, kind, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "field": kind, "status": model.StatusWaiting})
}

// Update handles PUT /v1/contributions/:field/:id.
func (h *ContributionHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	kind, err := paramKind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	contributionID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var body contributionReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req, err := body.decode(kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.Contributions.Update(c.Request().Context(), uid, contributionID, kind, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": contributionID, "field": kind, "status": model.StatusWaiting})
}
