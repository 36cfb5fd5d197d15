package domain

import (
	"context"
	"errors"
)

// ErrSaturated indica que nenhuma vaga abriu dentro do tempo de espera.
var ErrSaturated = errors.New("slot pool saturated")

// SlotPool é um recurso com capacidade finita. O mesmo contrato limita requests
// em andamento no middleware e chamadas simultâneas ao document store.
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// O release retornado deve ser chamado exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InUse() int
	Cap() int
}
