package repository

import "context"

// Row linha genérica de uma coleção persistida (coluna -> valor).
// Valores aceitos: string, int64, decimal.Decimal, time.Time ou nil.
type Row map[string]any

// Store define o porte de persistência genérico usado pelo motor de
// reconciliação: insert/upsert/update/select/delete sobre coleções nomeadas.
// O backend (PostgreSQL aqui) garante unicidade das chaves naturais e as
// constraints de chave estrangeira; o motor só depende deste contrato.
type Store interface {
	// Insert insere todas as linhas em uma única chamada; falha a chamada
	// inteira se qualquer linha violar uma constraint.
	Insert(ctx context.Context, colecao string, linhas []Row) error

	// Upsert insere ou atualiza pelo valor da coluna chave natural.
	Upsert(ctx context.Context, colecao, chave string, linhas []Row) error

	// Update aplica mudanças pontuais na linha identificada pelo id interno.
	Update(ctx context.Context, colecao string, id int64, mudancas Row) error

	// SelectIn devolve as linhas cuja coluna está no conjunto de valores,
	// incluindo sempre a coluna "id" interna.
	SelectIn(ctx context.Context, colecao, coluna string, valores []string) ([]Row, error)

	// Keys devolve todos os valores persistidos da coluna chave (para poda
	// de órfãos).
	Keys(ctx context.Context, colecao, coluna string) ([]string, error)

	// DeleteIn remove as linhas cuja coluna chave está no conjunto.
	DeleteIn(ctx context.Context, colecao, coluna string, valores []string) error

	// DeleteIDs remove as linhas pelos ids internos (para coleções cuja
	// identidade é composta e não cabe em uma única coluna).
	DeleteIDs(ctx context.Context, colecao string, ids []int64) error
}
