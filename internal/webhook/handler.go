package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/stepup/internal/errors"
	"github.com/allisson/stepup/internal/httputil"
	policyUseCase "github.com/allisson/stepup/internal/policy/usecase"
)

// Event kinds the listener acts on. Unknown kinds are acknowledged and
// ignored so the sender does not retry them.
const (
	EventApprovalPending  = "policy.approval.pending"
	EventApprovalResolved = "policy.approval.resolved"
)

// maxEventBytes bounds the event body read into memory.
const maxEventBytes = 1 << 20

// Event is the envelope the remote service pushes.
type Event struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	CreatedAt time.Time       `json:"createdAt"`
	Data      json.RawMessage `json:"data"`
}

// ApprovalEventData is the payload of approval events.
type ApprovalEventData struct {
	ApprovalID string `json:"approvalId"`
	Status     string `json:"status"`
}

// Handler serves the event listener endpoints.
type Handler struct {
	approvals policyUseCase.ApprovalUseCase
	verifier  *SignatureVerifier
	logger    *slog.Logger
}

// NewHandler creates the event listener handler.
func NewHandler(
	approvals policyUseCase.ApprovalUseCase,
	verifier *SignatureVerifier,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		approvals: approvals,
		verifier:  verifier,
		logger:    logger,
	}
}

// HandleEvent verifies the event signature and applies the update. The event
// payload is only a hint: the tracked approval is refreshed from the remote
// service rather than trusted from the pushed body.
func (h *Handler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBytes))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.verifier.Verify(body, c.GetHeader(SignatureHeader)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	switch event.Kind {
	case EventApprovalPending, EventApprovalResolved:
		var data ApprovalEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
		if data.ApprovalID == "" {
			httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "event carries no approval id"), h.logger)
			return
		}

		view, err := h.approvals.ApplyStatusEvent(c.Request.Context(), data.ApprovalID)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}

		h.logger.Info("approval event applied",
			slog.String("event_id", event.ID),
			slog.String("event_kind", event.Kind),
			slog.String("approval_id", data.ApprovalID),
			slog.String("status", string(view.Status)),
		)
		c.JSON(http.StatusOK, gin.H{"status": "accepted"})

	default:
		h.logger.Debug("event ignored",
			slog.String("event_id", event.ID),
			slog.String("event_kind", event.Kind),
		)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

// approvalResponse is the read model served by the introspection endpoints.
type approvalResponse struct {
	ID          string             `json:"id"`
	Status      string             `json:"status"`
	InitiatorID string             `json:"initiatorId"`
	PolicyID    string             `json:"policyId,omitempty"`
	Decisions   []decisionResponse `json:"decisions"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type decisionResponse struct {
	UserID    string    `json:"userId"`
	Value     string    `json:"value"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

// GetApproval serves one tracked approval with its resolved status.
func (h *Handler) GetApproval(c *gin.Context) {
	view, err := h.approvals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, approvalToResponse(view))
}

// ListApprovals serves the tracked approvals with resolved statuses.
func (h *Handler) ListApprovals(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	views, err := h.approvals.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if offset > len(views) {
		offset = len(views)
	}
	end := offset + limit
	if end > len(views) {
		end = len(views)
	}

	items := make([]*approvalResponse, 0, end-offset)
	for _, view := range views[offset:end] {
		items = append(items, approvalToResponse(view))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func approvalToResponse(view *policyUseCase.ApprovalView) *approvalResponse {
	resp := &approvalResponse{
		ID:          view.Approval.ID,
		Status:      string(view.Status),
		InitiatorID: view.Approval.InitiatorID,
		PolicyID:    view.Approval.Snapshot.PolicyID,
		Decisions:   make([]decisionResponse, 0, len(view.Approval.Decisions)),
		CreatedAt:   view.Approval.CreatedAt,
	}
	for _, d := range view.Approval.Decisions {
		resp.Decisions = append(resp.Decisions, decisionResponse{
			UserID:    d.UserID,
			Value:     string(d.Value),
			Reason:    d.Reason,
			DecidedAt: d.DecidedAt,
		})
	}
	return resp
}
