package repository

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// ErrReadOnlyStore indicates a write was attempted against the file store.
// File snapshots are provisioned out of band and loaded once at startup.
var ErrReadOnlyStore = apperrors.Wrap(apperrors.ErrInvalidInput, "file store is read-only")

// FileStore is a read-only credential and grant store backed by two snapshot
// files: a passwords file ("username:verifier" per line) and an access-list
// file ("username:op1,op2" per line). Lines starting with '#' and blank lines
// are skipped. Both files are loaded once; the in-memory snapshot is never
// mutated afterwards, so concurrent reads need no locking.
type FileStore struct {
	users  map[string]*printerDomain.User
	grants map[string]*printerDomain.Grant
}

// NewFileStore loads both snapshot files. A missing or malformed file is a
// startup failure; a user present in the access list but not in the passwords
// file is tolerated (they can never authenticate, so the grant is inert).
func NewFileStore(passwordPath, accessPath string) (*FileStore, error) {
	users, err := loadPasswordFile(passwordPath)
	if err != nil {
		return nil, err
	}

	grants, err := loadAccessFile(accessPath)
	if err != nil {
		return nil, err
	}

	return &FileStore{users: users, grants: grants}, nil
}

// Get returns the user from the snapshot or ErrUserNotFound.
func (f *FileStore) Get(ctx context.Context, username string) (*printerDomain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, ok := f.users[username]
	if !ok {
		return nil, printerDomain.ErrUserNotFound
	}
	return user, nil
}

// Create always fails: the snapshot is read-only.
func (f *FileStore) Create(ctx context.Context, user *printerDomain.User) error {
	return ErrReadOnlyStore
}

// GetGrant returns the grant from the snapshot or errors.ErrNotFound.
// Named distinctly so one FileStore can back both repository interfaces.
func (f *FileStore) GetGrant(ctx context.Context, username string) (*printerDomain.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grant, ok := f.grants[username]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "grant not found")
	}
	return grant, nil
}

// Grants returns a GrantRepository view of the snapshot.
func (f *FileStore) Grants() *FileGrantRepository {
	return &FileGrantRepository{store: f}
}

// FileGrantRepository adapts FileStore to the GrantRepository interface.
type FileGrantRepository struct {
	store *FileStore
}

// Get returns the grant from the snapshot or errors.ErrNotFound.
func (g *FileGrantRepository) Get(ctx context.Context, username string) (*printerDomain.Grant, error) {
	return g.store.GetGrant(ctx, username)
}

// Upsert always fails: the snapshot is read-only.
func (g *FileGrantRepository) Upsert(ctx context.Context, grant *printerDomain.Grant) error {
	return ErrReadOnlyStore
}

// loadPasswordFile parses "username:verifier" lines. The verifier is an
// Argon2id PHC string, which never contains a colon, so the first colon is
// the only separator.
func loadPasswordFile(path string) (map[string]*printerDomain.User, error) {
	users := make(map[string]*printerDomain.User)

	err := scanLines(path, func(lineno int, line string) error {
		username, verifier, ok := strings.Cut(line, ":")
		if !ok || username == "" || verifier == "" {
			return fmt.Errorf("%s:%d: malformed password entry", path, lineno)
		}
		users[username] = &printerDomain.User{
			Username: username,
			Verifier: verifier,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

// loadAccessFile parses "username:op1,op2" lines. Unknown operation names are
// a startup failure rather than a silent grant drop.
func loadAccessFile(path string) (map[string]*printerDomain.Grant, error) {
	grants := make(map[string]*printerDomain.Grant)
	now := time.Now().UTC()

	err := scanLines(path, func(lineno int, line string) error {
		username, opList, ok := strings.Cut(line, ":")
		if !ok || username == "" {
			return fmt.Errorf("%s:%d: malformed access entry", path, lineno)
		}

		grant := &printerDomain.Grant{Username: username, UpdatedAt: now}
		if opList != "" {
			for _, name := range strings.Split(opList, ",") {
				op, err := printerDomain.ParseOperation(strings.TrimSpace(name))
				if err != nil {
					return fmt.Errorf("%s:%d: %s: %w", path, lineno, name, err)
				}
				grant.Add(op)
			}
		}
		grants[username] = grant
		return nil
	})
	if err != nil {
		return nil, err
	}

	return grants, nil
}

// scanLines reads a file line by line, skipping blanks and '#' comments.
func scanLines(path string, fn func(lineno int, line string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return apperrors.Wrap(err, "failed to open store file")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(lineno, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return apperrors.Wrap(err, "failed to read store file")
	}
	return nil
}
