package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authService "github.com/printops/printserver/internal/auth/service"
	authUsecase "github.com/printops/printserver/internal/auth/usecase"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// RunCreateUser provisions a user with a hashed verifier. The plaintext
// secret exists only for the duration of the hash; neither the log output nor
// the store ever sees it. When secret is empty it is read from io.Reader so
// the value stays out of shell history.
func RunCreateUser(
	ctx context.Context,
	userRepo authUsecase.UserRepository,
	verifier authService.SecretVerifier,
	logger *slog.Logger,
	io IOTuple,
	username, secret string,
) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username must not be blank")
	}

	if secret == "" {
		fmt.Fprint(io.Writer, "Secret: ")
		line, err := bufio.NewReader(io.Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		return fmt.Errorf("secret must not be empty")
	}

	hashed, err := verifier.HashSecret(secret)
	if err != nil {
		return fmt.Errorf("failed to hash secret: %w", err)
	}

	user := &printerDomain.User{
		Username:  username,
		Verifier:  hashed,
		CreatedAt: time.Now().UTC(),
	}

	if err := userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created", slog.String("username", username))
	fmt.Fprintf(io.Writer, "user %q created\n", username)
	return nil
}
