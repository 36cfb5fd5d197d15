package application

import (
	"regexp"
	"unicode/utf8"

	"submission-service/submission/domain"
)

const (
	MaxEmailChars = 1024
	// MaxTextChars é exclusivo: campos de texto precisam ter menos que isso.
	MaxTextChars = 50_000
)

// Gramática usual de endereço: local-part (atom ou quoted-string) @ domínio
// (labels ou literal entre colchetes). \x60 é o backtick.
const emailPattern = `(?i)^(?:[a-z0-9!#$%&'*+/=?^_\x60{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_\x60{|}~-]+)*` +
	`|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21\x23-\x5b\x5d-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*")` +
	`@(?:(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?` +
	`|\[(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?` +
	`|[a-z0-9-]*[a-z0-9]:(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21-\x5a\x53-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])+)\])$`

// Validator é imutável depois de criado e pode ser compartilhado entre requests.
type Validator struct {
	email *regexp.Regexp
}

func NewValidator() *Validator {
	return &Validator{email: regexp.MustCompile(emailPattern)}
}

// ValidateEmail é puramente sintático (sem DNS).
func (v *Validator) ValidateEmail(candidate string) error {
	if utf8.RuneCountInString(candidate) > MaxEmailChars {
		return &domain.ValidationError{Field: "email", Kind: domain.KindTooLong}
	}
	if !v.email.MatchString(candidate) {
		return &domain.ValidationError{Field: "email", Kind: domain.KindInvalidFormat}
	}
	return nil
}

// ValidateTextField aceita de 1 a MaxTextChars-1 caracteres.
func (v *Validator) ValidateTextField(field, candidate string) error {
	n := utf8.RuneCountInString(candidate)
	if n == 0 {
		return &domain.ValidationError{Field: field, Kind: domain.KindEmpty}
	}
	if n >= MaxTextChars {
		return &domain.ValidationError{Field: field, Kind: domain.KindTooLong}
	}
	return nil
}
