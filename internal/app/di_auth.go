package app

import (
	"fmt"
	"sync"

	authRemote "github.com/allisson/stepup/internal/auth/remote"
	authService "github.com/allisson/stepup/internal/auth/service"
	authUseCase "github.com/allisson/stepup/internal/auth/usecase"
)

// authDependencies holds the lazily initialized authentication components.
type authDependencies struct {
	signerInit        sync.Once
	signer            authService.CredentialSigner
	secondSignerInit  sync.Once
	secondSigner      authService.SecondFactorSigner
	userActionInit    sync.Once
	userActionUseCase authUseCase.UserActionUseCase
	credentialInit    sync.Once
	credentialUseCase authUseCase.CredentialUseCase
}

// CredentialSigner returns the first-factor signer selected by the
// configuration.
func (c *Container) CredentialSigner() (authService.CredentialSigner, error) {
	var err error
	c.authDeps.signerInit.Do(func() {
		c.authDeps.signer, err = c.initCredentialSigner()
		if err != nil {
			c.initErrors["credentialSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialSigner"]; exists {
		return nil, storedErr
	}
	return c.authDeps.signer, nil
}

// SecondFactorSigner returns the TOTP second-factor signer, or nil when no
// seed is configured.
func (c *Container) SecondFactorSigner() (authService.SecondFactorSigner, error) {
	var err error
	c.authDeps.secondSignerInit.Do(func() {
		c.authDeps.secondSigner, err = c.initSecondFactorSigner()
		if err != nil {
			c.initErrors["secondFactorSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secondFactorSigner"]; exists {
		return nil, storedErr
	}
	return c.authDeps.secondSigner, nil
}

// UserActionUseCase returns the user action signing use case instance.
func (c *Container) UserActionUseCase() (authUseCase.UserActionUseCase, error) {
	var err error
	c.authDeps.userActionInit.Do(func() {
		c.authDeps.userActionUseCase, err = c.initUserActionUseCase()
		if err != nil {
			c.initErrors["userActionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userActionUseCase"]; exists {
		return nil, storedErr
	}
	return c.authDeps.userActionUseCase, nil
}

// CredentialUseCase returns the credential management use case instance.
func (c *Container) CredentialUseCase() (authUseCase.CredentialUseCase, error) {
	var err error
	c.authDeps.credentialInit.Do(func() {
		c.authDeps.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.authDeps.credentialUseCase, nil
}

// initCredentialSigner creates the first-factor signer based on the signer kind.
func (c *Container) initCredentialSigner() (authService.CredentialSigner, error) {
	switch c.config.SignerKind {
	case "key":
		privateKey, err := authService.LoadEd25519PrivateKey(c.config.SignerPrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		return authService.NewKeySigner(c.config.SignerCredentialID, privateKey), nil
	case "password":
		return authService.NewStaticPasswordSigner(c.config.SignerPassword), nil
	default:
		return nil, fmt.Errorf("unsupported signer kind: %s", c.config.SignerKind)
	}
}

// initSecondFactorSigner creates the TOTP signer when a seed is configured.
func (c *Container) initSecondFactorSigner() (authService.SecondFactorSigner, error) {
	if c.config.SignerTOTPSeed == "" {
		return nil, nil
	}

	signer, err := authService.NewTOTPSigner(c.config.SignerTOTPSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to create totp signer: %w", err)
	}
	return signer, nil
}

// initUserActionUseCase creates the user action use case with all its dependencies.
func (c *Container) initUserActionUseCase() (authUseCase.UserActionUseCase, error) {
	signer, err := c.CredentialSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get signer for user action use case: %w", err)
	}

	secondSigner, err := c.SecondFactorSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get second factor signer for user action use case: %w", err)
	}

	challengeClient := authRemote.NewChallengeClient(c.RemoteClient())
	builder := authService.NewAssertionBuilder()

	baseUseCase := authUseCase.NewUserActionUseCase(
		c.config,
		challengeClient,
		builder,
		signer,
		secondSigner,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user action use case: %w", err)
		}
		return authUseCase.NewUserActionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (authUseCase.CredentialUseCase, error) {
	userActionUseCase, err := c.UserActionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user action use case for credential use case: %w", err)
	}

	credentialClient := authRemote.NewCredentialClient(c.RemoteClient(), userActionUseCase)
	codes := authService.NewCodeService()

	baseUseCase := authUseCase.NewCredentialUseCase(credentialClient, codes, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
		}
		return authUseCase.NewCredentialUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
