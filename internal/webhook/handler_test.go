package webhook

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/stepup/internal/errors"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
	policyUseCase "github.com/allisson/stepup/internal/policy/usecase"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockApprovalUseCase struct {
	mock.Mock
}

func (m *mockApprovalUseCase) Track(ctx context.Context, approvalID string) (*policyUseCase.ApprovalView, error) {
	args := m.Called(ctx, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policyUseCase.ApprovalView), args.Error(1)
}

func (m *mockApprovalUseCase) Decide(
	ctx context.Context,
	approvalID string,
	decision policyDomain.ApprovalDecision,
) (*policyUseCase.ApprovalView, error) {
	args := m.Called(ctx, approvalID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policyUseCase.ApprovalView), args.Error(1)
}

func (m *mockApprovalUseCase) Get(ctx context.Context, approvalID string) (*policyUseCase.ApprovalView, error) {
	args := m.Called(ctx, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policyUseCase.ApprovalView), args.Error(1)
}

func (m *mockApprovalUseCase) List(ctx context.Context) ([]*policyUseCase.ApprovalView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*policyUseCase.ApprovalView), args.Error(1)
}

func (m *mockApprovalUseCase) Watch(ctx context.Context, approvalID string) (*policyUseCase.ApprovalView, error) {
	args := m.Called(ctx, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policyUseCase.ApprovalView), args.Error(1)
}

func (m *mockApprovalUseCase) WatchMany(
	ctx context.Context,
	approvalIDs []string,
) (map[string]*policyUseCase.ApprovalView, error) {
	args := m.Called(ctx, approvalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*policyUseCase.ApprovalView), args.Error(1)
}

func (m *mockApprovalUseCase) ApplyStatusEvent(
	ctx context.Context,
	approvalID string,
) (*policyUseCase.ApprovalView, error) {
	args := m.Called(ctx, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policyUseCase.ApprovalView), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testVerifier(t *testing.T) *SignatureVerifier {
	t.Helper()
	verifier, err := NewSignatureVerifier("shared-secret")
	require.NoError(t, err)
	return verifier
}

func testView(id string, status policyDomain.ApprovalStatus) *policyUseCase.ApprovalView {
	return &policyUseCase.ApprovalView{
		Approval: &policyDomain.Approval{
			ID:          id,
			InitiatorID: "us-1",
			Snapshot: policyDomain.PolicySnapshot{
				PolicyID: "plc-1",
				ApprovalGroups: []policyDomain.ApprovalGroup{
					{Name: "operators", Approvers: []string{"us-2"}, Quorum: 1, DenyBehavior: policyDomain.DenyShortCircuit},
				},
			},
			Decisions: []policyDomain.ApprovalDecision{
				{UserID: "us-2", Value: policyDomain.ApprovedDecision, DecidedAt: time.Now()},
			},
			CreatedAt: time.Now().Add(-time.Minute),
		},
		Status: status,
	}
}

func eventRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/webhook/events", handler.HandleEvent)
	router.GET("/approvals", handler.ListApprovals)
	router.GET("/approvals/:id", handler.GetApproval)
	return router
}

func postEvent(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/events", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_HandleEvent(t *testing.T) {
	t.Run("ResolvedEventAppliesUpdate", func(t *testing.T) {
		approvals := new(mockApprovalUseCase)
		approvals.On("ApplyStatusEvent", mock.Anything, "ap-1").
			Return(testView("ap-1", policyDomain.ApprovedApproval), nil)

		verifier := testVerifier(t)
		router := eventRouter(NewHandler(approvals, verifier, testLogger()))

		body := []byte(`{
			"id": "evt-1",
			"kind": "policy.approval.resolved",
			"createdAt": "2026-01-01T10:00:00Z",
			"data": {"approvalId": "ap-1", "status": "Approved"}
		}`)
		w := postEvent(router, body, verifier.Sign(body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status": "accepted"}`, w.Body.String())
		approvals.AssertExpectations(t)
	})

	t.Run("UnsignedEventRejected", func(t *testing.T) {
		approvals := new(mockApprovalUseCase)
		router := eventRouter(NewHandler(approvals, testVerifier(t), testLogger()))

		body := []byte(`{"id": "evt-1", "kind": "policy.approval.resolved", "data": {"approvalId": "ap-1"}}`)
		w := postEvent(router, body, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		approvals.AssertNotCalled(t, "ApplyStatusEvent", mock.Anything, mock.Anything)
	})

	t.Run("TamperedEventRejected", func(t *testing.T) {
		approvals := new(mockApprovalUseCase)
		verifier := testVerifier(t)
		router := eventRouter(NewHandler(approvals, verifier, testLogger()))

		signature := verifier.Sign([]byte(`{"id": "evt-1", "kind": "policy.approval.resolved", "data": {"approvalId": "ap-1"}}`))
		w := postEvent(router, []byte(`{"id": "evt-1", "kind": "policy.approval.resolved", "data": {"approvalId": "ap-666"}}`), signature)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		approvals.AssertNotCalled(t, "ApplyStatusEvent", mock.Anything, mock.Anything)
	})

	t.Run("UnknownKindAcknowledgedAndIgnored", func(t *testing.T) {
		approvals := new(mockApprovalUseCase)
		verifier := testVerifier(t)
		router := eventRouter(NewHandler(approvals, verifier, testLogger()))

		body := []byte(`{"id": "evt-2", "kind": "wallet.created", "data": {"walletId": "wa-1"}}`)
		w := postEvent(router, body, verifier.Sign(body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status": "ignored"}`, w.Body.String())
		approvals.AssertNotCalled(t, "ApplyStatusEvent", mock.Anything, mock.Anything)
	})

	t.Run("MissingApprovalIDRejected", func(t *testing.T) {
		approvals := new(mockApprovalUseCase)
		verifier := testVerifier(t)
		router := eventRouter(NewHandler(approvals, verifier, testLogger()))

		body := []byte(`{"id": "evt-3", "kind": "policy.approval.pending", "data": {}}`)
		w := postEvent(router, body, verifier.Sign(body))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("UnknownApprovalMapsToNotFound", func(t *testing.T) {
		approvals := new(mockApprovalUseCase)
		approvals.On("ApplyStatusEvent", mock.Anything, "ap-missing").
			Return(nil, policyDomain.ErrApprovalNotFound)

		verifier := testVerifier(t)
		router := eventRouter(NewHandler(approvals, verifier, testLogger()))

		body := []byte(`{"id": "evt-4", "kind": "policy.approval.resolved", "data": {"approvalId": "ap-missing"}}`)
		w := postEvent(router, body, verifier.Sign(body))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MalformedBodyRejected", func(t *testing.T) {
		approvals := new(mockApprovalUseCase)
		verifier := testVerifier(t)
		router := eventRouter(NewHandler(approvals, verifier, testLogger()))

		body := []byte(`{not json`)
		w := postEvent(router, body, verifier.Sign(body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetApproval(t *testing.T) {
	approvals := new(mockApprovalUseCase)
	approvals.On("Get", mock.Anything, "ap-1").
		Return(testView("ap-1", policyDomain.ApprovedApproval), nil)
	approvals.On("Get", mock.Anything, "ap-missing").
		Return(nil, apperrors.Wrap(policyDomain.ErrApprovalNotFound, "ap-missing"))

	router := eventRouter(NewHandler(approvals, testVerifier(t), testLogger()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/approvals/ap-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Approved"`)
	assert.Contains(t, w.Body.String(), `"policyId":"plc-1"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/approvals/ap-missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListApprovals(t *testing.T) {
	views := []*policyUseCase.ApprovalView{
		testView("ap-1", policyDomain.ApprovedApproval),
		testView("ap-2", policyDomain.PendingApproval),
		testView("ap-3", policyDomain.DeniedApproval),
	}
	approvals := new(mockApprovalUseCase)
	approvals.On("List", mock.Anything).Return(views, nil)

	router := eventRouter(NewHandler(approvals, testVerifier(t), testLogger()))

	t.Run("Defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/approvals", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ap-1"`)
		assert.Contains(t, w.Body.String(), `"ap-3"`)
	})

	t.Run("Paginated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/approvals?offset=1&limit=1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `"ap-1"`)
		assert.Contains(t, w.Body.String(), `"ap-2"`)
		assert.NotContains(t, w.Body.String(), `"ap-3"`)
	})

	t.Run("InvalidPaginationRejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/approvals?limit=0", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
