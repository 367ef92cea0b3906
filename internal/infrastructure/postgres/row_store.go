package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/repository"
)

// Querier abstrai pool ou tx do pgx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ repository.Store = (*RowStore)(nil)

// RowStore adaptador PostgreSQL do porte genérico repository.Store: monta o
// SQL a partir das colunas presentes nas linhas. Unicidade das chaves naturais
// e as FKs ficam no schema (ver migrations).
type RowStore struct {
	q Querier
}

// NewRowStore constrói o adaptador. Passar pool ou tx (Querier).
func NewRowStore(q Querier) *RowStore {
	return &RowStore{q: q}
}

// Insert insere todas as linhas em um único INSERT multi-valores.
func (s *RowStore) Insert(ctx context.Context, colecao string, linhas []repository.Row) error {
	if len(linhas) == 0 {
		return nil
	}
	colunas := colunasDe(linhas)

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		pgx.Identifier{colecao}.Sanitize(), listaColunas(colunas))
	args := make([]any, 0, len(linhas)*len(colunas))
	for i, linha := range linhas {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholders(len(args)+1, len(colunas)))
		for _, c := range colunas {
			args = append(args, linha[c])
		}
	}

	if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert em %s: %w", colecao, domain.ErrDuplicado)
		}
		return fmt.Errorf("insert em %s: %w", colecao, err)
	}
	return nil
}

// Upsert insere ou atualiza pela coluna de chave natural.
func (s *RowStore) Upsert(ctx context.Context, colecao, chave string, linhas []repository.Row) error {
	if len(linhas) == 0 {
		return nil
	}
	colunas := colunasDe(linhas)

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		pgx.Identifier{colecao}.Sanitize(), listaColunas(colunas))
	args := make([]any, 0, len(linhas)*len(colunas))
	for i, linha := range linhas {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholders(len(args)+1, len(colunas)))
		for _, c := range colunas {
			args = append(args, linha[c])
		}
	}
	fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET ", pgx.Identifier{chave}.Sanitize())
	primeira := true
	for _, c := range colunas {
		if c == chave {
			continue
		}
		if !primeira {
			sb.WriteString(", ")
		}
		primeira = false
		id := pgx.Identifier{c}.Sanitize()
		fmt.Fprintf(&sb, "%s = EXCLUDED.%s", id, id)
	}

	if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("upsert em %s: %w", colecao, domain.ErrDuplicado)
		}
		return fmt.Errorf("upsert em %s: %w", colecao, err)
	}
	return nil
}

// Update aplica mudanças pontuais pelo id interno.
func (s *RowStore) Update(ctx context.Context, colecao string, id int64, mudancas repository.Row) error {
	if len(mudancas) == 0 {
		return nil
	}
	colunas := colunasDe([]repository.Row{mudancas})

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET ", pgx.Identifier{colecao}.Sanitize())
	args := make([]any, 0, len(colunas)+1)
	for i, c := range colunas {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = $%d", pgx.Identifier{c}.Sanitize(), i+1)
		args = append(args, mudancas[c])
	}
	fmt.Fprintf(&sb, " WHERE id = $%d", len(args)+1)
	args = append(args, id)

	tag, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("update em %s: %w", colecao, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNaoEncontrado
	}
	return nil
}

// SelectIn devolve as linhas cuja coluna está no conjunto, com todas as
// colunas da tabela (inclui o id interno).
func (s *RowStore) SelectIn(ctx context.Context, colecao, coluna string, valores []string) ([]repository.Row, error) {
	if len(valores) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ANY($1)",
		pgx.Identifier{colecao}.Sanitize(), pgx.Identifier{coluna}.Sanitize())
	rows, err := s.q.Query(ctx, query, valores)
	if err != nil {
		return nil, fmt.Errorf("select em %s: %w", colecao, err)
	}
	defer rows.Close()

	var out []repository.Row
	descs := rows.FieldDescriptions()
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("ler linha de %s: %w", colecao, err)
		}
		linha := make(repository.Row, len(descs))
		for i, d := range descs {
			linha[d.Name] = vals[i]
		}
		out = append(out, linha)
	}
	return out, rows.Err()
}

// Keys devolve todos os valores não-nulos da coluna chave.
func (s *RowStore) Keys(ctx context.Context, colecao, coluna string) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NOT NULL",
		pgx.Identifier{coluna}.Sanitize(), pgx.Identifier{colecao}.Sanitize(),
		pgx.Identifier{coluna}.Sanitize())
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listar chaves de %s: %w", colecao, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan chave de %s: %w", colecao, err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// DeleteIn remove as linhas cuja coluna está no conjunto.
func (s *RowStore) DeleteIn(ctx context.Context, colecao, coluna string, valores []string) error {
	if len(valores) == 0 {
		return nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1)",
		pgx.Identifier{colecao}.Sanitize(), pgx.Identifier{coluna}.Sanitize())
	if _, err := s.q.Exec(ctx, query, valores); err != nil {
		return fmt.Errorf("delete em %s: %w", colecao, err)
	}
	return nil
}

// DeleteIDs remove as linhas pelos ids internos.
func (s *RowStore) DeleteIDs(ctx context.Context, colecao string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", pgx.Identifier{colecao}.Sanitize())
	if _, err := s.q.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete por id em %s: %w", colecao, err)
	}
	return nil
}

// colunasDe devolve a união ordenada das colunas presentes nas linhas, para
// SQL estável entre chamadas.
func colunasDe(linhas []repository.Row) []string {
	vistas := map[string]bool{}
	var out []string
	for _, l := range linhas {
		for c := range l {
			if !vistas[c] {
				vistas[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

func listaColunas(colunas []string) string {
	partes := make([]string, len(colunas))
	for i, c := range colunas {
		partes[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(partes, ", ")
}

// placeholders monta "($n, $n+1, ...)" com k posições começando em inicio.
func placeholders(inicio, k int) string {
	partes := make([]string, k)
	for i := 0; i < k; i++ {
		partes[i] = fmt.Sprintf("$%d", inicio+i)
	}
	return "(" + strings.Join(partes, ", ") + ")"
}
