package domain

import (
	"errors"
	"fmt"
)

// ValidationKind classifica uma falha de validação (culpa do cliente).
type ValidationKind string

const (
	KindTooLong       ValidationKind = "TooLong"
	KindInvalidFormat ValidationKind = "InvalidFormat"
	KindEmpty         ValidationKind = "Empty"
)

var (
	ErrTooLong       = errors.New("too long")
	ErrInvalidFormat = errors.New("invalid format")
	ErrEmpty         = errors.New("empty")

	// ErrStore casa com qualquer *StoreError via errors.Is.
	ErrStore = errors.New("store error")
)

type ValidationError struct {
	Field string
	Kind  ValidationKind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrTooLong:
		return e.Kind == KindTooLong
	case ErrInvalidFormat:
		return e.Kind == KindInvalidFormat
	case ErrEmpty:
		return e.Kind == KindEmpty
	}
	return false
}

// StoreKind é a categoria de uma falha de infraestrutura.
// O valor em string é o que o handler devolve no corpo de um 500 de inserção.
type StoreKind string

const (
	StoreConnectivity  StoreKind = "connectivity"
	StoreTimeout       StoreKind = "timeout"
	StoreSerialization StoreKind = "serialization"
	StoreServer        StoreKind = "server"
)

type StoreError struct {
	Op   string
	Kind StoreKind
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// Operações do Gateway, usadas em StoreError.Op.
const (
	OpEmailExists   = "email_exists"
	OpInsertEmail   = "insert_email"
	OpInsertMessage = "insert_message"
)
