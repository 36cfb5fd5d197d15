// Package infra contém implementações concretas do domain.Gateway.
//
// Exemplos:
//   - MongoGateway: coleções emails/messages via go.mongodb.org/mongo-driver
//   - MemoryGateway: em memória, para testes e desenvolvimento
package infra
