package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DomainError is the base error type for all allocation domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// ValidationError reports an invalid field on a domain object

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DuplicateMachineError is returned when a machine is added to an allocation
// set that already contains it

type DuplicateMachineError struct {
	*DomainError
	MachineID string
}

func NewDuplicateMachineError(machineID string) *DuplicateMachineError {
	return &DuplicateMachineError{
		DomainError: &DomainError{Message: fmt.Sprintf("machine %s is already allocated to this lot", machineID)},
		MachineID:   machineID,
	}
}

// GaugeMismatchError is returned when a machine's diameter or gauge does not
// match the lot's fabric spec

type GaugeMismatchError struct {
	*DomainError
	MachineID  string
	MachineDia int
	MachineGG  int
	LotDia     int
	LotGG      int
}

func NewGaugeMismatchError(machineID string, machineDia, machineGG, lotDia, lotGG int) *GaugeMismatchError {
	return &GaugeMismatchError{
		DomainError: &DomainError{Message: fmt.Sprintf(
			"machine %s (dia %d, gg %d) is not compatible with lot fabric (dia %d, gg %d)",
			machineID, machineDia, machineGG, lotDia, lotGG,
		)},
		MachineID:  machineID,
		MachineDia: machineDia,
		MachineGG:  machineGG,
		LotDia:     lotDia,
		LotGG:      lotGG,
	}
}

// FloorViolationError is returned when an operation would drop an allocation
// below the number of rolls whose stickers have already been printed.
// Printing is irreversible, so the floor can never be edited away.

type FloorViolationError struct {
	*DomainError
	MachineID       string
	RequiredMinimum int
	Requested       decimal.Decimal
}

func NewFloorViolationError(machineID string, requiredMinimum int, requested decimal.Decimal) *FloorViolationError {
	return &FloorViolationError{
		DomainError: &DomainError{Message: fmt.Sprintf(
			"machine %s has %d rolls with printed stickers; cannot reduce allocation to %s",
			machineID, requiredMinimum, requested.String(),
		)},
		MachineID:       machineID,
		RequiredMinimum: requiredMinimum,
		Requested:       requested,
	}
}

// ZeroAllocationError is returned for a machine left at zero rolls. A machine
// that should knit nothing must be removed from the set, not parked at zero.

type ZeroAllocationError struct {
	*DomainError
	MachineID string
}

func NewZeroAllocationError(machineID string) *ZeroAllocationError {
	return &ZeroAllocationError{
		DomainError: &DomainError{Message: fmt.Sprintf(
			"machine %s has no rolls allocated; remove it or assign a quantity", machineID,
		)},
		MachineID: machineID,
	}
}

// QuantityMismatchError is returned when the allocated total does not
// reconcile with the lot's required roll quantity within tolerance

type QuantityMismatchError struct {
	*DomainError
	Total    decimal.Decimal
	Expected decimal.Decimal
	Diff     decimal.Decimal
}

func NewQuantityMismatchError(total, expected decimal.Decimal) *QuantityMismatchError {
	diff := expected.Sub(total)
	return &QuantityMismatchError{
		DomainError: &DomainError{Message: fmt.Sprintf(
			"allocated %s rolls but lot requires %s (difference %s)",
			total.String(), expected.String(), diff.String(),
		)},
		Total:    total,
		Expected: expected,
		Diff:     diff,
	}
}

// MachineNotAllocatedError is returned when an operation references a machine
// that is not part of the allocation set

type MachineNotAllocatedError struct {
	*DomainError
	MachineID string
}

func NewMachineNotAllocatedError(machineID string) *MachineNotAllocatedError {
	return &MachineNotAllocatedError{
		DomainError: &DomainError{Message: fmt.Sprintf("machine %s is not allocated to this lot", machineID)},
		MachineID:   machineID,
	}
}

// PersistenceFailureError wraps a commit failure from the persister. The
// session stays open in draft state; the cause is surfaced verbatim so the
// operator can decide whether to retry.

type PersistenceFailureError struct {
	*DomainError
	Cause error
}

func NewPersistenceFailureError(cause error) *PersistenceFailureError {
	return &PersistenceFailureError{
		DomainError: &DomainError{Message: fmt.Sprintf("failed to commit allocations: %v", cause)},
		Cause:       cause,
	}
}

func (e *PersistenceFailureError) Unwrap() error {
	return e.Cause
}

// InvalidStateError is returned when a reconciliation operation is attempted
// from a state that does not allow it

type InvalidStateError struct {
	*DomainError
	Current ReconciliationStatus
}

func NewInvalidStateError(current ReconciliationStatus, operation string) *InvalidStateError {
	return &InvalidStateError{
		DomainError: &DomainError{Message: fmt.Sprintf("cannot %s from state %s", operation, current)},
		Current:     current,
	}
}
