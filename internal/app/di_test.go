package app

import (
	"context"
	"testing"
	"time"

	"github.com/allisson/stepup/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		APIBaseURL:           "https://api.example.com",
		APIAppID:             "ap-test",
		APIAuthToken:         "token",
		APIRequestTimeout:    time.Second,
		SignerTimeout:        time.Second,
		SignerKind:           "password",
		SignerPassword:       "hunter2",
		ChallengeRetryMax:    2,
		UserActionTokenTTL:   5 * time.Minute,
		ApprovalPollInterval: time.Second,
		WebhookHost:          "localhost",
		WebhookPort:          8080,
		WebhookSecret:        "webhook-secret",
		DBDriver:             "memory",
		LogLevel:             "info",
		MetricsNamespace:     "stepup",
		MetricsPort:          8081,
	}
}

// TestNewContainer verifies that a new container can be created with a valid configuration.
func TestNewContainer(t *testing.T) {
	cfg := testConfig()

	container := NewContainer(cfg)

	if container == nil {
		t.Fatal("expected non-nil container")
	}

	if container.Config() != cfg {
		t.Error("container config does not match provided config")
	}
}

// TestContainerLogger verifies that the logger can be retrieved from the container.
func TestContainerLogger(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "debug"

	container := NewContainer(cfg)
	logger := container.Logger()

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	// Calling Logger() again should return the same instance (singleton)
	logger2 := container.Logger()
	if logger != logger2 {
		t.Error("expected same logger instance on multiple calls")
	}
}

// TestContainerDBMemoryDriver verifies that the memory driver needs no connection.
func TestContainerDBMemoryDriver(t *testing.T) {
	container := NewContainer(testConfig())

	db, err := container.DB()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != nil {
		t.Error("expected nil database connection for memory driver")
	}
}

// TestContainerBusinessMetricsDisabled verifies the no-op fallback when metrics are off.
func TestContainerBusinessMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false

	container := NewContainer(cfg)

	businessMetrics, err := container.BusinessMetrics()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if businessMetrics == nil {
		t.Fatal("expected non-nil business metrics")
	}

	provider, err := container.MetricsProvider()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider != nil {
		t.Error("expected nil metrics provider when metrics are disabled")
	}
}

// TestContainerCredentialSigner verifies signer construction per signer kind.
func TestContainerCredentialSigner(t *testing.T) {
	t.Run("PasswordSigner", func(t *testing.T) {
		container := NewContainer(testConfig())

		signer, err := container.CredentialSigner()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if signer == nil {
			t.Fatal("expected non-nil signer")
		}
	})

	t.Run("UnsupportedKind", func(t *testing.T) {
		cfg := testConfig()
		cfg.SignerKind = "smartcard"

		container := NewContainer(cfg)

		if _, err := container.CredentialSigner(); err == nil {
			t.Fatal("expected error for unsupported signer kind")
		}

		// The failure is remembered on subsequent calls.
		if _, err := container.CredentialSigner(); err == nil {
			t.Fatal("expected stored error on second call")
		}
	})

	t.Run("KeySignerMissingFile", func(t *testing.T) {
		cfg := testConfig()
		cfg.SignerKind = "key"
		cfg.SignerPrivateKeyFile = "/nonexistent/key.pem"

		container := NewContainer(cfg)

		if _, err := container.CredentialSigner(); err == nil {
			t.Fatal("expected error for missing key file")
		}
	})
}

// TestContainerSecondFactorSigner verifies the optional TOTP signer wiring.
func TestContainerSecondFactorSigner(t *testing.T) {
	t.Run("DisabledWithoutSeed", func(t *testing.T) {
		container := NewContainer(testConfig())

		signer, err := container.SecondFactorSigner()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if signer != nil {
			t.Error("expected nil second factor signer without a seed")
		}
	})

	t.Run("EnabledWithSeed", func(t *testing.T) {
		cfg := testConfig()
		cfg.SignerTOTPSeed = "JBSWY3DPEHPK3PXP"

		container := NewContainer(cfg)

		signer, err := container.SecondFactorSigner()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if signer == nil {
			t.Fatal("expected non-nil second factor signer")
		}
	})
}

// TestContainerApprovalRepository verifies repository selection per database driver.
func TestContainerApprovalRepository(t *testing.T) {
	t.Run("MemoryDriver", func(t *testing.T) {
		container := NewContainer(testConfig())

		repository, err := container.ApprovalRepository()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repository == nil {
			t.Fatal("expected non-nil repository")
		}
	})

	t.Run("UnsupportedDriver", func(t *testing.T) {
		cfg := testConfig()
		cfg.DBDriver = "sqlite"

		container := NewContainer(cfg)

		if _, err := container.ApprovalRepository(); err == nil {
			t.Fatal("expected error for unsupported database driver")
		}
	})
}

// TestContainerUseCases verifies that the use case graph assembles on top of
// the in-memory store without external services.
func TestContainerUseCases(t *testing.T) {
	container := NewContainer(testConfig())

	userActionUseCase, err := container.UserActionUseCase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userActionUseCase == nil {
		t.Fatal("expected non-nil user action use case")
	}

	credentialUseCase, err := container.CredentialUseCase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credentialUseCase == nil {
		t.Fatal("expected non-nil credential use case")
	}

	approvalUseCase, err := container.ApprovalUseCase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approvalUseCase == nil {
		t.Fatal("expected non-nil approval use case")
	}

	policyUseCase, err := container.PolicyUseCase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policyUseCase == nil {
		t.Fatal("expected non-nil policy use case")
	}
}

// TestContainerWebhookServer verifies the event listener assembly.
func TestContainerWebhookServer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		container := NewContainer(testConfig())

		server, err := container.WebhookServer()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if server == nil {
			t.Fatal("expected non-nil webhook server")
		}
	})

	t.Run("MissingSecret", func(t *testing.T) {
		cfg := testConfig()
		cfg.WebhookSecret = ""

		container := NewContainer(cfg)

		if _, err := container.WebhookServer(); err == nil {
			t.Fatal("expected error for missing webhook secret")
		}
	})
}

// TestContainerShutdown verifies that shutdown succeeds on a fully assembled container.
func TestContainerShutdown(t *testing.T) {
	container := NewContainer(testConfig())

	if _, err := container.WebhookServer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := container.MetricsServer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := container.Shutdown(ctx); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}
