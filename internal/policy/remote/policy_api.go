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

// PolicyClient implements usecase.PolicyAPI over the remote HTTP service.
// Updates and archival are mutations and are signed; the remote service may
// gate them behind their own approval, in which case the returned policy
// carries a pending change request instead of the applied edit.
type PolicyClient struct {
	client *remote.Client
	tokens remote.TokenProvider
}

// NewPolicyClient creates the policy management client.
func NewPolicyClient(client *remote.Client, tokens remote.TokenProvider) *PolicyClient {
	return &PolicyClient{client: client, tokens: tokens}
}

type wireRule struct {
	Kind          string          `json:"kind"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

type wireApprovalGroup struct {
	Name         string   `json:"name"`
	Approvers    []string `json:"approvers,omitempty"`
	Quorum       int      `json:"quorum"`
	DenyBehavior string   `json:"denyBehavior,omitempty"`
	DenyQuorum   int      `json:"denyQuorum,omitempty"`
}

type wireAction struct {
	Kind                     string              `json:"kind"`
	ApprovalGroups           []wireApprovalGroup `json:"approvalGroups,omitempty"`
	AutoRejectTimeoutSeconds int64               `json:"autoRejectTimeoutSeconds,omitempty"`
}

type wireChangeRequest struct {
	ID          string    `json:"id"`
	ApprovalID  string    `json:"approvalId"`
	Kind        string    `json:"kind"`
	RequestedBy string    `json:"requestedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type wirePolicy struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Status               string             `json:"status"`
	ActivityKind         string             `json:"activityKind"`
	Rule                 wireRule           `json:"rule"`
	Action               wireAction         `json:"action"`
	Filters              json.RawMessage    `json:"filters,omitempty"`
	PendingChangeRequest *wireChangeRequest `json:"pendingChangeRequest,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
}

// GetPolicy retrieves a policy by id. Reads are not signed.
func (c *PolicyClient) GetPolicy(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	var resp wirePolicy
	path := fmt.Sprintf("/policies/%s", policyID)
	if err := c.client.Do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return policyFromWire(&resp), nil
}

type listPoliciesResponse struct {
	Items []wirePolicy `json:"items"`
}

// ListPolicies lists the organization's policies.
func (c *PolicyClient) ListPolicies(ctx context.Context) ([]*policyDomain.Policy, error) {
	var resp listPoliciesResponse
	if err := c.client.Do(ctx, http.MethodGet, "/policies", nil, nil, &resp); err != nil {
		return nil, err
	}

	policies := make([]*policyDomain.Policy, 0, len(resp.Items))
	for i := range resp.Items {
		policies = append(policies, policyFromWire(&resp.Items[i]))
	}
	return policies, nil
}

type updatePolicyRequest struct {
	Name         string          `json:"name"`
	ActivityKind string          `json:"activityKind"`
	Rule         wireRule        `json:"rule"`
	Action       wireAction      `json:"action"`
	Filters      json.RawMessage `json:"filters,omitempty"`
}

// UpdatePolicy edits a policy. When the edit is itself approval-gated, the
// returned policy keeps its previous configuration and carries a pending
// change request referencing the approval that gates the edit.
func (c *PolicyClient) UpdatePolicy(ctx context.Context, policy *policyDomain.Policy) (*policyDomain.Policy, error) {
	payload, err := json.Marshal(updatePolicyRequest{
		Name:         policy.Name,
		ActivityKind: policy.ActivityKind,
		Rule:         ruleToWire(policy.Rule),
		Action:       actionToWire(policy.Action),
		Filters:      policy.Filters,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal policy update request")
	}

	var resp wirePolicy
	path := fmt.Sprintf("/policies/%s", policy.ID)
	if err := c.client.SignAndDo(ctx, c.tokens, http.MethodPut, path, payload, &resp); err != nil {
		return nil, err
	}
	return policyFromWire(&resp), nil
}

// ArchivePolicy archives a policy. Approvals pending under it are
// unaffected; they resolve under the snapshot taken at trigger time.
func (c *PolicyClient) ArchivePolicy(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	var resp wirePolicy
	path := fmt.Sprintf("/policies/%s/archive", policyID)
	if err := c.client.SignAndDo(ctx, c.tokens, http.MethodPut, path, nil, &resp); err != nil {
		return nil, err
	}
	return policyFromWire(&resp), nil
}

func policyFromWire(resp *wirePolicy) *policyDomain.Policy {
	policy := &policyDomain.Policy{
		ID:           resp.ID,
		Name:         resp.Name,
		Status:       policyDomain.PolicyStatus(resp.Status),
		ActivityKind: resp.ActivityKind,
		Rule: policyDomain.Rule{
			Kind:          policyDomain.RuleKind(resp.Rule.Kind),
			Configuration: resp.Rule.Configuration,
		},
		Action: policyDomain.Action{
			Kind:              policyDomain.ActionKind(resp.Action.Kind),
			AutoRejectTimeout: time.Duration(resp.Action.AutoRejectTimeoutSeconds) * time.Second,
		},
		Filters:   resp.Filters,
		CreatedAt: resp.CreatedAt,
	}
	for _, g := range resp.Action.ApprovalGroups {
		policy.Action.ApprovalGroups = append(policy.Action.ApprovalGroups, policyDomain.ApprovalGroup{
			Name:         g.Name,
			Approvers:    g.Approvers,
			Quorum:       g.Quorum,
			DenyBehavior: denyBehaviorFromWire(g.DenyBehavior),
			DenyQuorum:   g.DenyQuorum,
		})
	}
	if resp.PendingChangeRequest != nil {
		policy.PendingChangeRequest = &policyDomain.ChangeRequest{
			ID:          resp.PendingChangeRequest.ID,
			ApprovalID:  resp.PendingChangeRequest.ApprovalID,
			Kind:        resp.PendingChangeRequest.Kind,
			RequestedBy: resp.PendingChangeRequest.RequestedBy,
			CreatedAt:   resp.PendingChangeRequest.CreatedAt,
		}
	}
	return policy
}

// denyBehaviorFromWire defaults an absent deny behavior to short-circuit,
// matching the resolver's default.
func denyBehaviorFromWire(value string) policyDomain.DenyBehavior {
	if value == "" {
		return policyDomain.DenyShortCircuit
	}
	return policyDomain.DenyBehavior(value)
}

func ruleToWire(rule policyDomain.Rule) wireRule {
	return wireRule{
		Kind:          string(rule.Kind),
		Configuration: rule.Configuration,
	}
}

func actionToWire(action policyDomain.Action) wireAction {
	wire := wireAction{
		Kind:                     string(action.Kind),
		AutoRejectTimeoutSeconds: int64(action.AutoRejectTimeout / time.Second),
	}
	for _, g := range action.ApprovalGroups {
		wire.ApprovalGroups = append(wire.ApprovalGroups, wireApprovalGroup{
			Name:         g.Name,
			Approvers:    g.Approvers,
			Quorum:       g.Quorum,
			DenyBehavior: string(g.DenyBehavior),
			DenyQuorum:   g.DenyQuorum,
		})
	}
	return wire
}
