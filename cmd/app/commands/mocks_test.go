package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
	policyUseCase "github.com/allisson/stepup/internal/policy/usecase"
)

type mockUserActionUseCase struct {
	mock.Mock
}

func (m *mockUserActionUseCase) SignAction(
	ctx context.Context,
	action *authDomain.UserAction,
) (*authDomain.UserActionToken, error) {
	args := m.Called(ctx, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.UserActionToken), args.Error(1)
}

func (m *mockUserActionUseCase) AuthorizeExecution(
	token *authDomain.UserActionToken,
	action *authDomain.UserAction,
) error {
	args := m.Called(token, action)
	return args.Error(0)
}

type mockCredentialUseCase struct {
	mock.Mock
}

func (m *mockCredentialUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterCredentialInput,
) (*authDomain.Credential, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) Activate(ctx context.Context, credentialID string) error {
	args := m.Called(ctx, credentialID)
	return args.Error(0)
}

func (m *mockCredentialUseCase) Archive(ctx context.Context, credentialID string) error {
	args := m.Called(ctx, credentialID)
	return args.Error(0)
}

func (m *mockCredentialUseCase) Delegate(ctx context.Context, credentialID, userID string) error {
	args := m.Called(ctx, credentialID, userID)
	return args.Error(0)
}

func (m *mockCredentialUseCase) Update(
	ctx context.Context,
	credentialID string,
	input *authDomain.UpdateCredentialInput,
) (*authDomain.Credential, error) {
	args := m.Called(ctx, credentialID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) Get(ctx context.Context, credentialID string) (*authDomain.Credential, error) {
	args := m.Called(ctx, credentialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) List(ctx context.Context) ([]*authDomain.Credential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) CreateRegistrationCode(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
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

type mockPolicyUseCase struct {
	mock.Mock
}

func (m *mockPolicyUseCase) Get(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policyDomain.Policy), args.Error(1)
}

func (m *mockPolicyUseCase) List(ctx context.Context) ([]*policyDomain.Policy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*policyDomain.Policy), args.Error(1)
}

func (m *mockPolicyUseCase) Update(ctx context.Context, policy *policyDomain.Policy) (*policyDomain.Policy, error) {
	args := m.Called(ctx, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policyDomain.Policy), args.Error(1)
}

func (m *mockPolicyUseCase) Archive(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policyDomain.Policy), args.Error(1)
}
