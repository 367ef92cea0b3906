package sync

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/entity"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/repository"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/merge"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/normalize"
)

// Colunas de chave natural por coleção.
const (
	colClienteCodigo = "codigo"
	colPedidoCodigo  = "codigo_pedido"
	colProdutoCodigo = "produto_codigo"
	colFingerprint   = "sync_fingerprint"
)

func rowCliente(c *entity.Customer) repository.Row {
	return repository.Row{
		"codigo":               c.Codigo,
		"nome":                 strOrNil(c.Nome),
		"email":                strOrNil(c.Email),
		"data_cadastro":        strOrNil(c.DataCadastro),
		"whatsapp":             strOrNil(c.Whatsapp),
		"cidade":               strOrNil(c.Cidade),
		"estado":               strOrNil(c.Estado),
		"loja_drop":            strOrNil(c.LojaDrop),
		"representante":        strOrNil(c.Representante),
		"total_pedidos":        intOrNil(c.TotalPedidos),
		"valor_total_comprado": decOrNil(c.ValorTotalComprado),
		"criado_em":            c.CriadoEm.UTC(),
	}
}

func rowPedido(p *entity.Order) repository.Row {
	return repository.Row{
		"codigo_pedido":              p.CodigoPedido,
		"cliente_codigo":             p.ClienteCodigo,
		"situacao":                   strOrNil(p.Situacao),
		"data_hora_pedido":           strOrNil(p.DataHoraPedido),
		"data_confirmacao_pagamento": strOrNil(p.DataConfirmacaoPagamento),
		"data_hora_confirmacao":      strOrNil(p.DataHoraConfirmacao),
		"valor_total_produtos":       decOrNil(p.ValorTotalProdutos),
		"valor_frete":                decOrNil(p.ValorFrete),
		"desconto":                   decOrNil(p.Desconto),
		"valor_total_pedido":         decOrNil(p.ValorTotalPedido),
		"percentual_comissao":        decOrNil(p.PercentualComissao),
		"origem_pedido":              strOrNil(p.OrigemPedido),
		"tipo_compra":                strOrNil(p.TipoCompra),
		"cidade":                     strOrNil(p.Cidade),
		"estado":                     strOrNil(p.Estado),
	}
}

func rowLinha(l *entity.ProductLine, fingerprint string) repository.Row {
	k := l.Key()
	return repository.Row{
		"cliente_codigo":      k.Cliente,
		"produto_codigo":      k.Produto,
		"pedido_codigo":       k.Pedido,
		"titulo":              strOrNil(l.Titulo),
		"categoria_principal": strOrNil(l.CategoriaPrincipal),
		"categoria":           strOrNil(l.Categoria),
		"marca":               strOrNil(l.Marca),
		"tamanho":             strOrNil(l.Tamanho),
		"cor":                 strOrNil(l.Cor),
		"sku":                 strOrNil(l.SKU),
		"quantidade":          intOrNil(l.Quantidade),
		"data_pedido":         strOrNil(l.DataPedido),
		colFingerprint:        fingerprint,
	}
}

// sanitizeRow defesa em profundidade, independente do normalizador aplicado na
// extração: qualquer valor string que bata com um sentinela de data zero vira
// nil antes da escrita, cubra ele uma coluna de data ou não.
func sanitizeRow(r repository.Row) repository.Row {
	for k, v := range r {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if normalize.IsZeroDate(s) || (isColunaData(k) && strings.TrimSpace(s) == "") {
			r[k] = nil
		}
	}
	return r
}

func isColunaData(coluna string) bool {
	return strings.Contains(coluna, "data") || strings.HasSuffix(coluna, "_em")
}

// persistedLine converte uma linha lida do store na projeção usada pelo plano.
// Valores de tipo inesperado degradam para o zero value correspondente.
func persistedLine(r repository.Row) merge.PersistedLine {
	return merge.PersistedLine{
		ID: rowInt64(r["id"]),
		Key: entity.LineKey{
			Cliente: rowString(r["cliente_codigo"]),
			Produto: rowString(r["produto_codigo"]),
			Pedido:  rowString(r["pedido_codigo"]),
		},
		Quantidade:  rowInt64Ptr(r["quantidade"]),
		Fingerprint: rowString(r[colFingerprint]),
	}
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intOrNil(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func decOrNil(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func rowString(v any) string {
	s, _ := v.(string)
	return s
}

func rowInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func rowInt64Ptr(v any) *int64 {
	if v == nil {
		return nil
	}
	n := rowInt64(v)
	return &n
}
