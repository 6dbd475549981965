package app

import (
	"fmt"
	"sync"

	policyRemote "github.com/allisson/stepup/internal/policy/remote"
	policyRepository "github.com/allisson/stepup/internal/policy/repository"
	policyUseCase "github.com/allisson/stepup/internal/policy/usecase"
)

// policyDependencies holds the lazily initialized policy engine components.
type policyDependencies struct {
	repositoryInit  sync.Once
	repository      policyUseCase.ApprovalRepository
	approvalInit    sync.Once
	approvalUseCase policyUseCase.ApprovalUseCase
	policyInit      sync.Once
	policyUseCase   policyUseCase.PolicyUseCase
}

// ApprovalRepository returns the approval snapshot repository instance.
func (c *Container) ApprovalRepository() (policyUseCase.ApprovalRepository, error) {
	var err error
	c.policyDeps.repositoryInit.Do(func() {
		c.policyDeps.repository, err = c.initApprovalRepository()
		if err != nil {
			c.initErrors["approvalRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["approvalRepository"]; exists {
		return nil, storedErr
	}
	return c.policyDeps.repository, nil
}

// ApprovalUseCase returns the approval workflow use case instance.
func (c *Container) ApprovalUseCase() (policyUseCase.ApprovalUseCase, error) {
	var err error
	c.policyDeps.approvalInit.Do(func() {
		c.policyDeps.approvalUseCase, err = c.initApprovalUseCase()
		if err != nil {
			c.initErrors["approvalUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["approvalUseCase"]; exists {
		return nil, storedErr
	}
	return c.policyDeps.approvalUseCase, nil
}

// PolicyUseCase returns the policy management use case instance.
func (c *Container) PolicyUseCase() (policyUseCase.PolicyUseCase, error) {
	var err error
	c.policyDeps.policyInit.Do(func() {
		c.policyDeps.policyUseCase, err = c.initPolicyUseCase()
		if err != nil {
			c.initErrors["policyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyUseCase"]; exists {
		return nil, storedErr
	}
	return c.policyDeps.policyUseCase, nil
}

// initApprovalRepository creates the approval repository based on the database driver.
func (c *Container) initApprovalRepository() (policyUseCase.ApprovalRepository, error) {
	switch c.config.DBDriver {
	case "memory":
		return policyRepository.NewMemoryApprovalRepository(), nil
	case "postgres", "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for approval repository: %w", err)
		}
		if c.config.DBDriver == "postgres" {
			return policyRepository.NewPostgreSQLApprovalRepository(db), nil
		}
		return policyRepository.NewMySQLApprovalRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initApprovalUseCase creates the approval use case with all its dependencies.
func (c *Container) initApprovalUseCase() (policyUseCase.ApprovalUseCase, error) {
	userActionUseCase, err := c.UserActionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user action use case for approval use case: %w", err)
	}

	repository, err := c.ApprovalRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get approval repository for approval use case: %w", err)
	}

	approvalClient := policyRemote.NewApprovalClient(c.RemoteClient(), userActionUseCase)
	policyClient := policyRemote.NewPolicyClient(c.RemoteClient(), userActionUseCase)

	baseUseCase := policyUseCase.NewApprovalUseCase(
		c.config,
		approvalClient,
		policyClient,
		repository,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for approval use case: %w", err)
		}
		return policyUseCase.NewApprovalUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initPolicyUseCase creates the policy use case with all its dependencies.
func (c *Container) initPolicyUseCase() (policyUseCase.PolicyUseCase, error) {
	userActionUseCase, err := c.UserActionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user action use case for policy use case: %w", err)
	}

	policyClient := policyRemote.NewPolicyClient(c.RemoteClient(), userActionUseCase)

	baseUseCase := policyUseCase.NewPolicyUseCase(policyClient, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for policy use case: %w", err)
		}
		return policyUseCase.NewPolicyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
