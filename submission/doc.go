// Package submission expõe as rotas HTTP de inscrição de email e envio de mensagem.
//
// Os handlers chamam application.Service e traduzem o resultado para status/corpo:
// ValidationError vira 4xx (413/406), StoreError vira 500. Rate limit e limite de
// concorrência ficam em middleware/ratelimit e são plugados via RouterOptions.Middlewares.
package submission
