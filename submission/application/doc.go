// Package application contém os casos de uso das submissões: validação de entrada
// e a composição Validator + Gateway.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.AddEmail(ctx, email) retorna (domain.Inserted|domain.AlreadyExists, erro).
package application
