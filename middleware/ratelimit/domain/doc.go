// Package domain define contratos e tipos de domínio para rate limit e concorrência.
//
// Não depende de net/http nem de implementações concretas, o que mantém os testes
// de unidade puros.
package domain
