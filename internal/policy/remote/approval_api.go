// Package remote holds the HTTP clients for the policy engine surfaces of
// the remote service: approval workflows and policy management.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/allisson/stepup/internal/errors"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
	"github.com/allisson/stepup/internal/remote"
)

// ApprovalClient implements usecase.ApprovalAPI over the remote HTTP
// service. Submitting a decision is a mutation and is signed with a user
// action token; reads are not.
type ApprovalClient struct {
	client *remote.Client
	tokens remote.TokenProvider
}

// NewApprovalClient creates the approval workflow client.
func NewApprovalClient(client *remote.Client, tokens remote.TokenProvider) *ApprovalClient {
	return &ApprovalClient{client: client, tokens: tokens}
}

type wireDecision struct {
	UserID    string    `json:"userId"`
	Value     string    `json:"value"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

type wireEvaluation struct {
	PolicyID  string `json:"policyId"`
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason,omitempty"`
}

type wireApproval struct {
	ID                string           `json:"id"`
	InitiatorID       string           `json:"initiatorId"`
	Decisions         []wireDecision   `json:"decisions"`
	EvaluatedPolicies []wireEvaluation `json:"evaluatedPolicies"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// GetApproval retrieves an approval by id. The remote representation
// carries no policy snapshot; the caller freezes one at tracking time.
func (c *ApprovalClient) GetApproval(ctx context.Context, approvalID string) (*policyDomain.Approval, error) {
	var resp wireApproval
	path := fmt.Sprintf("/policies/approvals/%s", approvalID)
	if err := c.client.Do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return approvalFromWire(&resp), nil
}

type createDecisionRequest struct {
	Value  string `json:"value"`
	Reason string `json:"reason,omitempty"`
}

// CreateApprovalDecision submits a decision and returns the updated
// approval with the decision log as the remote service accepted it.
func (c *ApprovalClient) CreateApprovalDecision(
	ctx context.Context,
	approvalID string,
	decision policyDomain.ApprovalDecision,
) (*policyDomain.Approval, error) {
	payload, err := json.Marshal(createDecisionRequest{
		Value:  string(decision.Value),
		Reason: decision.Reason,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal decision request")
	}

	var resp wireApproval
	path := fmt.Sprintf("/policies/approvals/%s/decisions", approvalID)
	if err := c.client.SignAndDo(ctx, c.tokens, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}
	return approvalFromWire(&resp), nil
}

type listApprovalsResponse struct {
	Items []wireApproval `json:"items"`
}

// ListApprovals lists approvals visible to the caller.
func (c *ApprovalClient) ListApprovals(ctx context.Context) ([]*policyDomain.Approval, error) {
	var resp listApprovalsResponse
	if err := c.client.Do(ctx, http.MethodGet, "/policies/approvals", nil, nil, &resp); err != nil {
		return nil, err
	}

	approvals := make([]*policyDomain.Approval, 0, len(resp.Items))
	for i := range resp.Items {
		approvals = append(approvals, approvalFromWire(&resp.Items[i]))
	}
	return approvals, nil
}

func approvalFromWire(resp *wireApproval) *policyDomain.Approval {
	approval := &policyDomain.Approval{
		ID:          resp.ID,
		InitiatorID: resp.InitiatorID,
		CreatedAt:   resp.CreatedAt,
	}
	for _, d := range resp.Decisions {
		approval.Decisions = append(approval.Decisions, policyDomain.ApprovalDecision{
			UserID:    d.UserID,
			Value:     policyDomain.DecisionValue(d.Value),
			Reason:    d.Reason,
			DecidedAt: d.DecidedAt,
		})
	}
	for _, e := range resp.EvaluatedPolicies {
		approval.Evaluations = append(approval.Evaluations, policyDomain.PolicyEvaluation{
			PolicyID:  e.PolicyID,
			Triggered: e.Triggered,
			Reason:    e.Reason,
		})
	}
	return approval
}
