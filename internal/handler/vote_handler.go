package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"quantumvision/internal/model"
	"quantumvision/internal/service"
)

// HeaderIdempotencyKey lets clients retry a vote without spending twice.
const HeaderIdempotencyKey = "Idempotency-Key"

// VoteHandler handles voting and vote pack endpoints.
type VoteHandler struct {
	voteService     service.VoteService
	purchaseService service.PurchaseService
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(voteService service.VoteService, purchaseService service.PurchaseService) *VoteHandler {
	return &VoteHandler{voteService: voteService, purchaseService: purchaseService}
}

// PurchaseRequest selects a vote pack.
type PurchaseRequest struct {
	Pack string `json:"pack" validate:"required"`
}

// VoteHistoryResponse lists ledger entries.
type VoteHistoryResponse struct {
	Votes []model.Vote `json:"votes"`
}

// PacksResponse lists the vote pack catalogue.
type PacksResponse struct {
	Packs []service.VotePack `json:"packs"`
}

// PurchaseHistoryResponse lists completed purchases.
type PurchaseHistoryResponse struct {
	Purchases []model.VotePurchase `json:"purchases"`
}

// Cast godoc
// @Summary Vote for an approved video
// @Description Spends one vote, awards points and may level up the voter or grant badges.
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Param Idempotency-Key header string false "Replays the first result for a repeated key"
// @Success 200 {object} service.VoteResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /videos/{id}/vote [post]
func (h *VoteHandler) Cast(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	videoID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.voteService.CastVote(
		c.Request().Context(),
		session.UserID,
		videoID,
		c.Request().Header.Get(HeaderIdempotencyKey),
	)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Eligibility godoc
// @Summary Whether the caller can vote now
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Eligibility
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /votes/eligibility [get]
func (h *VoteHandler) Eligibility(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	eligibility, err := h.voteService.Eligibility(c.Request().Context(), session.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, eligibility)
}

// History godoc
// @Summary The caller's votes, newest first
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} VoteHistoryResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /votes/history [get]
func (h *VoteHandler) History(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	votes, err := h.voteService.History(c.Request().Context(), session.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, VoteHistoryResponse{Votes: votes})
}

// Packs godoc
// @Summary Vote pack catalogue
// @Tags votes
// @Produce json
// @Success 200 {object} PacksResponse
// @Router /votes/packs [get]
func (h *VoteHandler) Packs(c echo.Context) error {
	return c.JSON(http.StatusOK, PacksResponse{Packs: h.purchaseService.Packs()})
}

// Purchase godoc
// @Summary Buy a vote pack
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PurchaseRequest true "Pack name"
// @Success 200 {object} service.PurchaseResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /votes/purchase [post]
func (h *VoteHandler) Purchase(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	var req PurchaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.purchaseService.Purchase(c.Request().Context(), session.UserID, req.Pack)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Purchases godoc
// @Summary The caller's vote pack purchases
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PurchaseHistoryResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /votes/purchases [get]
func (h *VoteHandler) Purchases(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	purchases, err := h.purchaseService.History(c.Request().Context(), session.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, PurchaseHistoryResponse{Purchases: purchases})
}
