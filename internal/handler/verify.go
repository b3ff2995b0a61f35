package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/service"
)

// VerifyHandler exposes the resolution endpoint used by moderators.
type VerifyHandler struct {
	Verifications *service.VerificationService
}

func NewVerifyHandler(s *service.VerificationService) *VerifyHandler {
	if s == nil {
		panic("nil service passed to NewVerifyHandler")
	}
	return &VerifyHandler{Verifications: s}
}

type verifyReq struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPT REJECT accept reject"`
	Comment  string `json:"comment" validate:"max=2000"`
}

// Resolve handles PUT /v1/contributions/:id/verify.
func (h *VerifyHandler) Resolve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	contributionID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be ACCEPT or REJECT"})
	}
	decision, ok := model.ParseDecision(req.Decision)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be ACCEPT or REJECT"})
	}

	if err := h.Verifications.Resolve(c.Request().Context(), uid, contributionID, decision, req.Comment); err != nil {
		return writeError(c, err)
	}

	status := model.StatusAccepted
	if decision == model.DecisionReject {
		status = model.StatusRejected
	}
	return c.JSON(http.StatusOK, echo.Map{"id": contributionID, "status": status})
}
