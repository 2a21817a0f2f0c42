package ptx

import (
	"fmt"

	"tlog.app/go/errors"
)

// ErrorKind categorizes translation errors.
type ErrorKind uint8

const (
	// ErrDuplicateRegisterDeclaration indicates a source register id was
	// declared twice in one kernel.
	ErrDuplicateRegisterDeclaration ErrorKind = iota

	// ErrUnresolvedRegister indicates a source register was used without
	// a declaration.
	ErrUnresolvedRegister

	// ErrUnresolvedGlobal indicates an address operand named an unknown
	// module global.
	ErrUnresolvedGlobal

	// ErrUnresolvedBasicBlock indicates a label operand named an unknown
	// basic block.
	ErrUnresolvedBasicBlock

	// ErrUnresolvedArgument indicates a parameter operand named an
	// unknown kernel argument.
	ErrUnresolvedArgument

	// ErrUnsupportedInstruction indicates a source instruction with no
	// translation.
	ErrUnsupportedInstruction

	// ErrUnsupportedOperandAddressingMode indicates an operand addressing
	// mode with no translation.
	ErrUnsupportedOperandAddressingMode

	// ErrUnknownType indicates a source type with no target type.
	ErrUnknownType
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrDuplicateRegisterDeclaration:
		return "DuplicateRegisterDeclaration"
	case ErrUnresolvedRegister:
		return "UnresolvedRegister"
	case ErrUnresolvedGlobal:
		return "UnresolvedGlobal"
	case ErrUnresolvedBasicBlock:
		return "UnresolvedBasicBlock"
	case ErrUnresolvedArgument:
		return "UnresolvedArgument"
	case ErrUnsupportedInstruction:
		return "UnsupportedInstruction"
	case ErrUnsupportedOperandAddressingMode:
		return "UnsupportedOperandAddressingMode"
	case ErrUnknownType:
		return "UnknownType"
	default:
		return "Unknown"
	}
}

// Error represents a translation error. Translation failures are fatal
// to their kernel; nothing is retried.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Kernel names the kernel under translation, empty for module-scope
	// failures.
	Kernel string

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kernel != "" {
		return fmt.Sprintf("ptx %s in kernel %s: %s", e.Kind, e.Kernel, e.Message)
	}
	return fmt.Sprintf("ptx %s: %s", e.Kind, e.Message)
}

// NewError creates a new translation error.
func NewError(kind ErrorKind, kernel, message string) *Error {
	return &Error{
		Kind:    kind,
		Kernel:  kernel,
		Message: message,
	}
}

// IsKind reports whether err is, or wraps, a translation Error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsDuplicateRegisterDeclaration reports an ErrDuplicateRegisterDeclaration.
func IsDuplicateRegisterDeclaration(err error) bool {
	return IsKind(err, ErrDuplicateRegisterDeclaration)
}

// IsUnresolvedRegister reports an ErrUnresolvedRegister.
func IsUnresolvedRegister(err error) bool {
	return IsKind(err, ErrUnresolvedRegister)
}

// IsUnsupportedInstruction reports an ErrUnsupportedInstruction.
func IsUnsupportedInstruction(err error) bool {
	return IsKind(err, ErrUnsupportedInstruction)
}

// IsUnknownType reports an ErrUnknownType.
func IsUnknownType(err error) bool {
	return IsKind(err, ErrUnknownType)
}
