package domain

import "time"

// Coleções lógicas no document store.
const (
	EmailsCollection   = "emails"
	MessagesCollection = "messages"
)

// EmailSubmission é um email inscrito. O campo Email é a chave natural:
// no máximo um documento por valor.
type EmailSubmission struct {
	Email     string `bson:"email" json:"email"`
	CreatedAt string `bson:"created_at" json:"created_at"`
}

// MessageSubmission é uma mensagem enviada. Não há supressão de duplicatas.
type MessageSubmission struct {
	Email     string `bson:"email" json:"email"`
	Subject   string `bson:"subject" json:"subject"`
	Content   string `bson:"content" json:"content"`
	CreatedAt string `bson:"created_at" json:"created_at"`
}

// Timestamp formata o instante de inserção (RFC3339, UTC).
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
