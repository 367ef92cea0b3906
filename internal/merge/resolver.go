// Package merge decide identidade e reconciliação: deduplica clientes dentro
// do lote, funde linhas de produto que compartilham a mesma chave composta e
// produz o plano de insert/update/no-op contra o estado persistido.
// Tudo aqui é puro; nenhuma chamada ao store.
package merge

import (
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/entity"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/normalize"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/config"
)

// DeduplicateCustomers resolve colisões de código dentro do lote segundo a
// política configurada. keep-first mantém a ordem de aparição; keep-most-recent
// compara o timestamp inferido (data_cadastro) e fica com o mais novo — se
// nenhum dos dois tiver timestamp parseável, mantém o primeiro visto, por
// estabilidade. Uma política por execução, nunca misturadas.
func DeduplicateCustomers(in []*entity.Customer, policy string) ([]*entity.Customer, int) {
	out := make([]*entity.Customer, 0, len(in))
	porCodigo := make(map[string]int, len(in))
	removidos := 0

	for _, c := range in {
		idx, visto := porCodigo[c.Codigo]
		if !visto {
			porCodigo[c.Codigo] = len(out)
			out = append(out, c)
			continue
		}
		removidos++
		if policy != config.DedupKeepMostRecent {
			continue
		}
		atual, okAtual := normalize.ParseCanonical(out[idx].DataCadastro)
		candidato, okCand := normalize.ParseCanonical(c.DataCadastro)
		if okCand && (!okAtual || candidato.After(atual)) {
			out[idx] = c
		}
	}
	return out, removidos
}

// DeduplicateOrders mantém o primeiro pedido visto por código. O upsert em
// lote não aceita a mesma chave natural duas vezes na mesma chamada.
func DeduplicateOrders(in []*entity.Order) ([]*entity.Order, int) {
	out := make([]*entity.Order, 0, len(in))
	visto := make(map[string]bool, len(in))
	removidos := 0
	for _, p := range in {
		if visto[p.CodigoPedido] {
			removidos++
			continue
		}
		visto[p.CodigoPedido] = true
		out = append(out, p)
	}
	return out, removidos
}

// MergeLines funde as linhas que compartilham a mesma chave composta antes da
// comparação com o estado persistido. Em modo delta a quantidade resultante é
// a soma das recebidas (nil ignorado); em modo absoluto vale a última não-nil
// na ordem do documento. Atributos nil da primeira linha são completados pelas
// seguintes. A ordem de primeira aparição é preservada.
func MergeLines(in []*entity.ProductLine, mode string) []*entity.ProductLine {
	out := make([]*entity.ProductLine, 0, len(in))
	porChave := make(map[entity.LineKey]int, len(in))

	for _, l := range in {
		chave := l.Key()
		idx, visto := porChave[chave]
		if !visto {
			copia := *l
			copia.PedidoCodigo = chave.Pedido
			porChave[chave] = len(out)
			out = append(out, &copia)
			continue
		}
		base := out[idx]
		switch mode {
		case config.ModeAbsolute:
			if l.Quantidade != nil {
				q := *l.Quantidade
				base.Quantidade = &q
			}
		default: // delta
			if l.Quantidade != nil {
				soma := *l.Quantidade
				if base.Quantidade != nil {
					soma += *base.Quantidade
				}
				base.Quantidade = &soma
			}
		}
		completa(base, l)
	}
	return out
}

// completa preenche atributos nil de base com os da linha seguinte.
func completa(base, l *entity.ProductLine) {
	if base.Titulo == nil {
		base.Titulo = l.Titulo
	}
	if base.CategoriaPrincipal == nil {
		base.CategoriaPrincipal = l.CategoriaPrincipal
	}
	if base.Categoria == nil {
		base.Categoria = l.Categoria
	}
	if base.Marca == nil {
		base.Marca = l.Marca
	}
	if base.Tamanho == nil {
		base.Tamanho = l.Tamanho
	}
	if base.Cor == nil {
		base.Cor = l.Cor
	}
	if base.SKU == nil {
		base.SKU = l.SKU
	}
	if base.DataPedido == nil {
		base.DataPedido = l.DataPedido
	}
}
