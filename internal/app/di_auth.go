package app

import (
	"fmt"

	"github.com/printops/printserver/internal/audit"
	authRepository "github.com/printops/printserver/internal/auth/repository"
	authService "github.com/printops/printserver/internal/auth/service"
	authUsecase "github.com/printops/printserver/internal/auth/usecase"
	"github.com/printops/printserver/internal/config"
)

// fileStore caches the shared snapshot so the user and grant repositories
// load the files once.
func (c *Container) fileStore() (*authRepository.FileStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if storedErr, exists := c.initErrors["fileStore"]; exists {
		return nil, storedErr
	}
	if c.cachedFileStore != nil {
		return c.cachedFileStore, nil
	}

	store, err := authRepository.NewFileStore(c.config.PasswordFilePath, c.config.AccessFilePath)
	if err != nil {
		c.initErrors["fileStore"] = err
		return nil, err
	}
	c.cachedFileStore = store
	return store, nil
}

// UserRepository returns the user repository for the configured store driver.
func (c *Container) UserRepository() (authUsecase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		switch c.config.StoreDriver {
		case config.StoreDriverFile:
			store, err := c.fileStore()
			if err != nil {
				c.initErrors["userRepo"] = err
				return
			}
			c.userRepo = store

		case config.StoreDriverPostgres, config.StoreDriverMySQL:
			db, err := c.DB()
			if err != nil {
				c.initErrors["userRepo"] = err
				return
			}
			if c.config.StoreDriver == config.StoreDriverPostgres {
				c.userRepo = authRepository.NewPostgreSQLUserRepository(db)
			} else {
				c.userRepo = authRepository.NewMySQLUserRepository(db)
			}

		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported store driver: %q", c.config.StoreDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// GrantRepository returns the grant repository for the configured store driver.
func (c *Container) GrantRepository() (authUsecase.GrantRepository, error) {
	c.grantRepoInit.Do(func() {
		switch c.config.StoreDriver {
		case config.StoreDriverFile:
			store, err := c.fileStore()
			if err != nil {
				c.initErrors["grantRepo"] = err
				return
			}
			c.grantRepo = store.Grants()

		case config.StoreDriverPostgres, config.StoreDriverMySQL:
			db, err := c.DB()
			if err != nil {
				c.initErrors["grantRepo"] = err
				return
			}
			if c.config.StoreDriver == config.StoreDriverPostgres {
				c.grantRepo = authRepository.NewPostgreSQLGrantRepository(db)
			} else {
				c.grantRepo = authRepository.NewMySQLGrantRepository(db)
			}

		default:
			c.initErrors["grantRepo"] = fmt.Errorf("unsupported store driver: %q", c.config.StoreDriver)
		}
	})
	if storedErr, exists := c.initErrors["grantRepo"]; exists {
		return nil, storedErr
	}
	return c.grantRepo, nil
}

// SecretVerifier returns the Argon2id secret verifier.
func (c *Container) SecretVerifier() (authService.SecretVerifier, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.secretVerifier != nil {
		return c.secretVerifier, nil
	}
	if storedErr, exists := c.initErrors["secretVerifier"]; exists {
		return nil, storedErr
	}

	verifier, err := authService.NewSecretVerifier()
	if err != nil {
		c.initErrors["secretVerifier"] = err
		return nil, err
	}
	c.secretVerifier = verifier
	return verifier, nil
}

// CredentialUseCase returns the credential verification use case, decorated
// with metrics recording.
func (c *Container) CredentialUseCase() (authUsecase.CredentialUseCase, error) {
	c.credentialUCInit.Do(func() {
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["credentialUC"] = err
			return
		}

		verifier, err := c.SecretVerifier()
		if err != nil {
			c.initErrors["credentialUC"] = err
			return
		}

		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["credentialUC"] = err
			return
		}

		useCase := authUsecase.NewCredentialUseCase(
			userRepo,
			verifier,
			c.config.StoreRetryAttempts,
			c.config.StoreRetryInterval,
		)
		c.credentialUC = authUsecase.NewCredentialUseCaseWithMetrics(useCase, bm)
	})
	if storedErr, exists := c.initErrors["credentialUC"]; exists {
		return nil, storedErr
	}
	return c.credentialUC, nil
}

// AccessUseCase returns the authorization use case, decorated with metrics
// recording.
func (c *Container) AccessUseCase() (authUsecase.AccessUseCase, error) {
	c.accessUCInit.Do(func() {
		grantRepo, err := c.GrantRepository()
		if err != nil {
			c.initErrors["accessUC"] = err
			return
		}

		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["accessUC"] = err
			return
		}

		c.accessUC = authUsecase.NewAccessUseCaseWithMetrics(authUsecase.NewAccessUseCase(grantRepo), bm)
	})
	if storedErr, exists := c.initErrors["accessUC"]; exists {
		return nil, storedErr
	}
	return c.accessUC, nil
}

// AuditRecorder returns the audit recorder. Every deployment logs audit
// records; database-backed deployments persist them to audit_logs as well.
func (c *Container) AuditRecorder() (audit.Recorder, error) {
	c.auditRecorderInit.Do(func() {
		logRecorder := audit.NewLogRecorder(c.Logger())

		db, err := c.DB()
		if err != nil {
			c.initErrors["auditRecorder"] = err
			return
		}
		if db == nil {
			c.auditRecorder = logRecorder
			return
		}

		switch c.config.StoreDriver {
		case config.StoreDriverPostgres:
			c.auditRecorder = audit.NewMultiRecorder(audit.NewPostgreSQLRecorder(db), logRecorder)
		case config.StoreDriverMySQL:
			c.auditRecorder = audit.NewMultiRecorder(audit.NewMySQLRecorder(db), logRecorder)
		default:
			c.auditRecorder = logRecorder
		}
	})
	if storedErr, exists := c.initErrors["auditRecorder"]; exists {
		return nil, storedErr
	}
	return c.auditRecorder, nil
}
