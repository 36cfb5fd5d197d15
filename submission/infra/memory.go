package infra

import (
	"context"
	"sync"

	"submission-service/submission/domain"
)

// MemoryGateway é uma implementação simples em memória.
// Útil para testes e desenvolvimento; não persiste nada.
type MemoryGateway struct {
	mu       sync.Mutex
	emails   []domain.EmailSubmission
	messages []domain.MessageSubmission
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

func (g *MemoryGateway) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, storeError(domain.OpEmailExists, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.indexOf(email) >= 0, nil
}

func (g *MemoryGateway) InsertEmail(ctx context.Context, rec domain.EmailSubmission) error {
	if err := ctx.Err(); err != nil {
		return storeError(domain.OpInsertEmail, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.emails = append(g.emails, rec)
	return nil
}

func (g *MemoryGateway) InsertEmailIfAbsent(ctx context.Context, rec domain.EmailSubmission) (domain.InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.Inserted, storeError(domain.OpInsertEmail, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexOf(rec.Email) >= 0 {
		return domain.AlreadyExists, nil
	}
	g.emails = append(g.emails, rec)
	return domain.Inserted, nil
}

func (g *MemoryGateway) InsertMessage(ctx context.Context, rec domain.MessageSubmission) error {
	if err := ctx.Err(); err != nil {
		return storeError(domain.OpInsertMessage, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages = append(g.messages, rec)
	return nil
}

// Emails devolve uma cópia da coleção de emails.
func (g *MemoryGateway) Emails() []domain.EmailSubmission {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.EmailSubmission, len(g.emails))
	copy(out, g.emails)
	return out
}

// Messages devolve uma cópia da coleção de mensagens.
func (g *MemoryGateway) Messages() []domain.MessageSubmission {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.MessageSubmission, len(g.messages))
	copy(out, g.messages)
	return out
}

// chamador segura g.mu
func (g *MemoryGateway) indexOf(email string) int {
	for i, e := range g.emails {
		if e.Email == email {
			return i
		}
	}
	return -1
}
