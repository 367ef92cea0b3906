package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNaoEncontrado     = errors.New("recurso não encontrado")
	ErrDuplicado         = errors.New("recurso duplicado")
	ErrEntradaInvalida   = errors.New("entrada inválida")
	ErrDocumentoSemArray = errors.New("nenhum array de clientes localizado no documento")
	ErrConfigInvalida    = errors.New("configuração de sincronização inválida")
	ErrLoteIrrecuperavel = errors.New("lote falhou por completo mesmo no fallback linha a linha")
)
