package sync_test

import (
	"context"
	"fmt"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/repository"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/config"
)

// fakeStore implementação em memória de repository.Store para os testes do
// writer e do engine. Reproduz os contratos que o motor depende: id interno
// crescente, unicidade da chave composta de clientes_produtos e unicidade da
// chave natural nos upserts.
type fakeStore struct {
	colecoes map[string][]repository.Row
	nextID   int64

	// hooks de falha
	falhaBloco bool                       // primeira chamada em bloco falha
	falhaLinha func(repository.Row) error // erro por linha (bloco e unitário)
	erroSelect error

	// trilha de chamadas para asserções de ordem e contagem
	eventos []string
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{colecoes: map[string][]repository.Row{}}
}

func (f *fakeStore) seed(colecao string, r repository.Row) {
	f.nextID++
	linha := repository.Row{"id": f.nextID}
	for k, v := range r {
		linha[k] = v
	}
	f.colecoes[colecao] = append(f.colecoes[colecao], linha)
}

func (f *fakeStore) Insert(_ context.Context, colecao string, linhas []repository.Row) error {
	f.eventos = append(f.eventos, "insert:"+colecao)
	if f.falhaBloco && len(linhas) > 1 {
		return fmt.Errorf("falha de bloco injetada")
	}
	for _, l := range linhas {
		if f.falhaLinha != nil {
			if err := f.falhaLinha(l); err != nil {
				return err
			}
		}
		if colecao == config.TableProdutos && f.achaLinhaComposta(l) != nil {
			return domain.ErrDuplicado
		}
	}
	for _, l := range linhas {
		f.seed(colecao, l)
	}
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, colecao, chave string, linhas []repository.Row) error {
	f.eventos = append(f.eventos, "upsert:"+colecao)
	if f.falhaBloco && len(linhas) > 1 {
		return fmt.Errorf("falha de bloco injetada")
	}
	for _, l := range linhas {
		if f.falhaLinha != nil {
			if err := f.falhaLinha(l); err != nil {
				return err
			}
		}
	}
	for _, l := range linhas {
		if existente := f.achaPorChave(colecao, chave, l[chave]); existente != nil {
			id := existente["id"]
			for k := range existente {
				delete(existente, k)
			}
			existente["id"] = id
			for k, v := range l {
				existente[k] = v
			}
			continue
		}
		f.seed(colecao, l)
	}
	return nil
}

func (f *fakeStore) Update(_ context.Context, colecao string, id int64, mudancas repository.Row) error {
	f.eventos = append(f.eventos, "update:"+colecao)
	f.updates++
	for _, l := range f.colecoes[colecao] {
		if l["id"] == id {
			for k, v := range mudancas {
				l[k] = v
			}
			return nil
		}
	}
	return domain.ErrNaoEncontrado
}

func (f *fakeStore) SelectIn(_ context.Context, colecao, coluna string, valores []string) ([]repository.Row, error) {
	f.eventos = append(f.eventos, "select:"+colecao)
	if f.erroSelect != nil {
		return nil, f.erroSelect
	}
	quer := make(map[string]bool, len(valores))
	for _, v := range valores {
		quer[v] = true
	}
	var out []repository.Row
	for _, l := range f.colecoes[colecao] {
		if s, ok := l[coluna].(string); ok && quer[s] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) Keys(_ context.Context, colecao, coluna string) ([]string, error) {
	var out []string
	for _, l := range f.colecoes[colecao] {
		if s, ok := l[coluna].(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteIn(_ context.Context, colecao, coluna string, valores []string) error {
	f.eventos = append(f.eventos, "delete:"+colecao)
	remover := make(map[string]bool, len(valores))
	for _, v := range valores {
		remover[v] = true
	}
	var restam []repository.Row
	for _, l := range f.colecoes[colecao] {
		if s, ok := l[coluna].(string); ok && remover[s] {
			continue
		}
		restam = append(restam, l)
	}
	f.colecoes[colecao] = restam
	return nil
}

func (f *fakeStore) DeleteIDs(_ context.Context, colecao string, ids []int64) error {
	f.eventos = append(f.eventos, "deleteids:"+colecao)
	remover := make(map[int64]bool, len(ids))
	for _, id := range ids {
		remover[id] = true
	}
	var restam []repository.Row
	for _, l := range f.colecoes[colecao] {
		if id, ok := l["id"].(int64); ok && remover[id] {
			continue
		}
		restam = append(restam, l)
	}
	f.colecoes[colecao] = restam
	return nil
}

func (f *fakeStore) achaPorChave(colecao, chave string, valor any) repository.Row {
	for _, l := range f.colecoes[colecao] {
		if l[chave] == valor {
			return l
		}
	}
	return nil
}

func (f *fakeStore) achaLinhaComposta(nova repository.Row) repository.Row {
	for _, l := range f.colecoes[config.TableProdutos] {
		if l["cliente_codigo"] == nova["cliente_codigo"] &&
			l["produto_codigo"] == nova["produto_codigo"] &&
			l["pedido_codigo"] == nova["pedido_codigo"] {
			return l
		}
	}
	return nil
}

var _ repository.Store = (*fakeStore)(nil)
