package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"submission-service/submission/domain"
)

const DefaultStoreTimeout = 5 * time.Second

// sharedValidator evita recompilar a regex de email quando Service.Validator é nil.
var sharedValidator = sync.OnceValue(NewValidator)

// MessageInput é o corpo já decodificado de uma mensagem.
type MessageInput struct {
	Email   string
	Subject string
	Content string
}

// Service concentra a regra de aplicação das submissões.
//
// Ele não sabe nada sobre HTTP. Erros retornados são *domain.ValidationError
// ou *domain.StoreError (com Op indicando qual chamada falhou).
type Service struct {
	Gateway   domain.Gateway
	Validator *Validator
	// StoreTimeout limita cada chamada ao store. Se 0, usa DefaultStoreTimeout.
	StoreTimeout time.Duration
	// Slots, se não nil, limita chamadas simultâneas ao store. A espera pela vaga
	// conta dentro do StoreTimeout da chamada.
	Slots domain.StoreSlots
	Now   func() time.Time
}

// AddEmail valida, consulta e insere o email se ainda não existir.
//
// A consulta prévia mantém a resposta barata para o caso comum de duplicata;
// a inserção é InsertEmailIfAbsent, então a janela entre as duas não gera documentos repetidos.
func (s Service) AddEmail(ctx context.Context, email string) (domain.InsertResult, error) {
	if err := s.validator().ValidateEmail(email); err != nil {
		return domain.Inserted, err
	}

	exists, err := s.emailExists(ctx, email)
	if err != nil {
		return domain.Inserted, err
	}
	if exists {
		return domain.AlreadyExists, nil
	}

	var res domain.InsertResult
	err = s.call(ctx, domain.OpInsertEmail, func(cctx context.Context) error {
		var err error
		res, err = s.Gateway.InsertEmailIfAbsent(cctx, domain.EmailSubmission{
			Email:     email,
			CreatedAt: domain.Timestamp(s.now()),
		})
		return err
	})
	if err != nil {
		return domain.Inserted, err
	}
	return res, nil
}

// SubmitMessage valida email, subject e content (nessa ordem) e grava a mensagem.
func (s Service) SubmitMessage(ctx context.Context, in MessageInput) error {
	v := s.validator()
	if err := v.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := v.ValidateTextField("subject", in.Subject); err != nil {
		return err
	}
	if err := v.ValidateTextField("content", in.Content); err != nil {
		return err
	}

	return s.call(ctx, domain.OpInsertMessage, func(cctx context.Context) error {
		return s.Gateway.InsertMessage(cctx, domain.MessageSubmission{
			Email:     in.Email,
			Subject:   in.Subject,
			Content:   in.Content,
			CreatedAt: domain.Timestamp(s.now()),
		})
	})
}

func (s Service) emailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.call(ctx, domain.OpEmailExists, func(cctx context.Context) error {
		var err error
		exists, err = s.Gateway.EmailExists(cctx, email)
		return err
	})
	return exists, err
}

// call roda uma ida ao store com prazo próprio e, se houver Slots, dentro de uma vaga.
// Qualquer falha sai como *domain.StoreError com o op dado.
func (s Service) call(ctx context.Context, op string, fn func(context.Context) error) error {
	d := s.StoreTimeout
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	if s.Slots != nil {
		release, ok := s.Slots.Acquire(cctx)
		if !ok {
			err := cctx.Err()
			if err == nil {
				err = context.DeadlineExceeded
			}
			return asStoreError(op, err)
		}
		defer release()
	}

	if err := fn(cctx); err != nil {
		return asStoreError(op, err)
	}
	return nil
}

func (s Service) validator() *Validator {
	if s.Validator == nil {
		return sharedValidator()
	}
	return s.Validator
}

func (s Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// asStoreError garante que o chamador sempre receba *domain.StoreError com o Op certo,
// mesmo que o gateway devolva um erro cru.
func asStoreError(op string, err error) error {
	var se *domain.StoreError
	if errors.As(err, &se) {
		if se.Op == op {
			return se
		}
		return &domain.StoreError{Op: op, Kind: se.Kind, Err: se.Err}
	}
	kind := domain.StoreServer
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = domain.StoreTimeout
	case errors.Is(err, context.Canceled):
		kind = domain.StoreConnectivity
	}
	return &domain.StoreError{Op: op, Kind: kind, Err: err}
}
