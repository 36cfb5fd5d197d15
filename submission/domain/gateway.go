package domain

import "context"

// InsertResult é o resultado de InsertEmailIfAbsent.
type InsertResult int

const (
	Inserted InsertResult = iota
	AlreadyExists
)

func (r InsertResult) String() string {
	if r == AlreadyExists {
		return "already_exists"
	}
	return "inserted"
}

// Gateway é o contrato de persistência das duas coleções.
//
// Cada operação é uma única chamada ao document store. Falhas retornam *StoreError
// e nunca são engolidas.
type Gateway interface {
	EmailExists(ctx context.Context, email string) (bool, error)

	// InsertEmail grava sem checar duplicata. O serviço não chama direto: ele usa
	// InsertEmailIfAbsent, que nos gateways é construído sobre esta escrita.
	InsertEmail(ctx context.Context, rec EmailSubmission) error
	InsertMessage(ctx context.Context, rec MessageSubmission) error

	// InsertEmailIfAbsent insere de forma atômica: duas chamadas concorrentes
	// com o mesmo email resultam em exatamente um Inserted.
	InsertEmailIfAbsent(ctx context.Context, rec EmailSubmission) (InsertResult, error)
}

// StoreSlots limita quantas chamadas ao store ficam em andamento ao mesmo tempo.
// Acquire respeita o ctx; release deve ser chamado exatamente uma vez.
type StoreSlots interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
