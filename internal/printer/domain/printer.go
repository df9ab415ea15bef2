// Package domain defines the print-management domain models.
//
// The privileged surface of the server is a closed enumeration of operations;
// authorization is grant-based and default-deny: a username may invoke an
// operation only when it appears in the grant set on record for that user.
package domain

import (
	"slices"
	"time"
)

// Operation is one member of the fixed enumeration of privileged actions the
// server exposes. The set is closed on purpose: adding an operation requires a
// code change, so no capability ships without its gate and audit wiring.
type Operation string

const (
	// OperationPrint submits a file to a printer.
	OperationPrint Operation = "print"

	// OperationQueue lists the jobs queued on a printer.
	OperationQueue Operation = "queue"

	// OperationTopQueue moves a queued job to the head of a printer's queue.
	OperationTopQueue Operation = "topQueue"

	// OperationStart starts the print service.
	OperationStart Operation = "start"

	// OperationStop stops the print service.
	OperationStop Operation = "stop"

	// OperationRestart restarts the print service, clearing all queues.
	OperationRestart Operation = "restart"

	// OperationStatus reports the status of a printer.
	OperationStatus Operation = "status"

	// OperationReadConfig reads a configuration parameter.
	OperationReadConfig Operation = "readConfig"

	// OperationSetConfig sets a configuration parameter.
	OperationSetConfig Operation = "setConfig"
)

// operations is the canonical ordering of the surface, used for discovery
// and route registration.
var operations = []Operation{
	OperationPrint,
	OperationQueue,
	OperationTopQueue,
	OperationStart,
	OperationStop,
	OperationRestart,
	OperationStatus,
	OperationReadConfig,
	OperationSetConfig,
}

// Operations returns the full operation surface in registration order.
// The returned slice is a copy; callers may not mutate the enumeration.
func Operations() []Operation {
	return slices.Clone(operations)
}

// ParseOperation maps an operation name to its Operation value.
// Returns ErrUnknownOperation for anything outside the closed set.
func ParseOperation(name string) (Operation, error) {
	op := Operation(name)
	if !slices.Contains(operations, op) {
		return "", ErrUnknownOperation
	}
	return op, nil
}

// User represents a provisioned identity. Verifier is a one-way, salted
// transformation of the user's secret (Argon2id PHC string), never the secret
// itself.
type User struct {
	Username  string
	Verifier  string //nolint:gosec // hashed verifier (not plaintext)
	CreatedAt time.Time
}

// Grant is the set of operations a username is authorized to invoke.
type Grant struct {
	Username   string
	Operations []Operation
	UpdatedAt  time.Time
}

// Allows reports whether the grant set contains the operation. Absence means
// denial; there is no explicit deny entry.
func (g *Grant) Allows(operation Operation) bool {
	if g == nil || operation == "" {
		return false
	}
	return slices.Contains(g.Operations, operation)
}

// Add returns true and appends the operation when it is not already granted.
func (g *Grant) Add(operation Operation) bool {
	if g.Allows(operation) {
		return false
	}
	g.Operations = append(g.Operations, operation)
	return true
}

// Remove returns true and removes the operation when it is currently granted.
func (g *Grant) Remove(operation Operation) bool {
	idx := slices.Index(g.Operations, operation)
	if idx < 0 {
		return false
	}
	g.Operations = slices.Delete(g.Operations, idx, idx+1)
	return true
}
