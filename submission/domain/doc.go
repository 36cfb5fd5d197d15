// Package domain define os tipos e contratos das submissões (email e mensagem).
//
// Este pacote não depende de net/http nem do driver do banco.
// Os erros são valores (ValidationError, StoreError) inspecionados com errors.As/errors.Is
// pela camada HTTP, que os traduz para status.
package domain
