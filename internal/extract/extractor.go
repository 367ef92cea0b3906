// Package extract percorre o array de clientes localizado e projeta cada
// entrada no shape canônico: um cliente, zero ou mais pedidos e zero ou mais
// linhas de produto, resolvendo sinônimos de campo e referências cruzadas.
package extract

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/document"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/entity"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/normalize"
)

// Result saída da extração de um snapshot.
type Result struct {
	Clientes []*entity.Customer
	Pedidos  []*entity.Order
	Linhas   []*entity.ProductLine
	// SemIdentidade conta clientes extraídos sem nenhum código resolvível;
	// entram no diagnóstico mas não podem ser chaveados nem persistidos.
	SemIdentidade int
}

// Extractor projeta entradas cruas nos registros canônicos.
type Extractor struct {
	// StripZeros remove zeros à esquerda dos identificadores normalizados.
	StripZeros bool

	agora  func() time.Time
	sufixo func() string
}

// New constrói o extractor com relógio e gerador de sufixo reais.
func New() *Extractor {
	return &Extractor{
		agora:  time.Now,
		sufixo: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
	}
}

// Snapshot extrai todos os registros do documento: o array de clientes já
// localizado mais, se existirem, arrays de pedidos e produtos no nível raiz
// (layout alternativo em que não vêm embutidos por cliente).
func (e *Extractor) Snapshot(raiz any, clientes []any) *Result {
	res := &Result{}
	for _, item := range clientes {
		e.cliente(item, res)
	}

	for _, item := range document.LocateNamed(raiz, document.CandidatosPedidos) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		res.Pedidos = append(res.Pedidos, e.pedido(m, "", nil, nil))
	}
	for _, item := range document.LocateNamed(raiz, document.CandidatosProdutos) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if linha := e.linha("", m, ""); linha != nil {
			res.Linhas = append(res.Linhas, linha)
		}
	}
	return res
}

func (e *Extractor) cliente(item any, res *Result) {
	m, ok := item.(map[string]any)
	if !ok {
		return
	}

	codigo := e.id(Primeiro(m, SinClienteCodigo))
	c := &entity.Customer{
		Nome:               texto(m["nome"]),
		Email:              texto(m["email"]),
		DataCadastro:       normalize.Timestamp(m["data_cadastro"]),
		Whatsapp:           texto(m["whatsapp"]),
		Cidade:             texto(m["cidade"]),
		Estado:             texto(m["estado"]),
		LojaDrop:           texto(m["loja_drop"]),
		Representante:      texto(m["representante"]),
		TotalPedidos:       normalize.Integer(m["total_pedidos"]),
		ValorTotalComprado: normalize.Number(m["valor_total_comprado"]),
		CriadoEm:           e.agora(),
	}
	if codigo == "" {
		// Sem identidade: contabiliza e segue; pedidos/produtos embutidos
		// ainda são extraídos com posse sentinela.
		res.SemIdentidade++
	} else {
		c.Codigo = codigo
		res.Clientes = append(res.Clientes, c)
	}

	if pedidos, ok := m["pedidos"].([]any); ok {
		for _, p := range pedidos {
			pm, ok := p.(map[string]any)
			if !ok {
				continue
			}
			res.Pedidos = append(res.Pedidos, e.pedido(pm, codigo, c.Cidade, c.Estado))
		}
	}

	if produtos, ok := m["produtos_comprados"].(map[string]any); ok {
		// Ordena as chaves do map para saída estável entre execuções.
		chaves := make([]string, 0, len(produtos))
		for k := range produtos {
			chaves = append(chaves, k)
		}
		sort.Strings(chaves)
		for _, k := range chaves {
			if linha := e.linha(k, produtos[k], codigo); linha != nil {
				res.Linhas = append(res.Linhas, linha)
			}
		}
	}
}

// pedido projeta um pedido. A posse resolve na ordem: cliente dono (quando o
// pedido veio embutido), referência local do próprio pedido, sentinela "0".
func (e *Extractor) pedido(m map[string]any, dono string, cidadeDono, estadoDono *string) *entity.Order {
	cliente := dono
	if cliente == "" {
		cliente = e.id(Primeiro(m, SinPedidoCliente))
	}
	if cliente == "" {
		cliente = entity.CodigoSentinela
	}

	codigo := e.id(Primeiro(m, SinPedidoCodigo))
	if codigo == "" {
		// Sem código na origem: sintetiza. Unicidade é melhor-esforço.
		codigo = fmt.Sprintf("P_%s_%s", cliente, e.sufixo())
	}

	p := &entity.Order{
		CodigoPedido:             codigo,
		ClienteCodigo:            cliente,
		Situacao:                 texto(Primeiro(m, SinPedidoSituacao)),
		DataHoraPedido:           normalize.Timestamp(Primeiro(m, SinPedidoData)),
		DataConfirmacaoPagamento: normalize.Timestamp(Primeiro(m, SinPedidoPagamento)),
		DataHoraConfirmacao:      normalize.Timestamp(Primeiro(m, SinPedidoConfirmacao)),
		ValorTotalProdutos:       normalize.Number(m["valor_total_produtos"]),
		ValorFrete:               normalize.Number(m["valor_frete"]),
		Desconto:                 normalize.Number(m["desconto"]),
		ValorTotalPedido:         normalize.Number(m["valor_total_pedido"]),
		PercentualComissao:       normalize.Number(m["percentual_comissao"]),
		OrigemPedido:             texto(m["origem_pedido"]),
		TipoCompra:               texto(m["tipo_compra"]),
		Cidade:                   texto(m["cidade"]),
		Estado:                   texto(m["estado"]),
	}
	if p.Cidade == nil {
		p.Cidade = cidadeDono
	}
	if p.Estado == nil {
		p.Estado = estadoDono
	}
	return p
}

// linha projeta uma entrada de produtos_comprados. A chave do map é o
// fallback do código do produto; o cliente dono é o da entrada envolvente.
func (e *Extractor) linha(chave string, v any, dono string) *entity.ProductLine {
	cliente := dono

	m, ok := v.(map[string]any)
	if !ok {
		// Entrada escalar: valor é a própria quantidade.
		produto := e.id(chave)
		if produto == "" {
			return nil
		}
		if cliente == "" {
			cliente = entity.CodigoSentinela
		}
		return &entity.ProductLine{
			ClienteCodigo: cliente,
			ProdutoCodigo: produto,
			PedidoCodigo:  entity.CodigoSentinela,
			Quantidade:    normalize.Integer(v),
		}
	}

	produto := e.id(Primeiro(m, SinProdutoCodigo))
	if produto == "" {
		produto = e.id(chave)
	}
	if produto == "" {
		return nil
	}
	if cliente == "" {
		cliente = e.id(Primeiro(m, SinLinhaCliente))
	}
	if cliente == "" {
		cliente = entity.CodigoSentinela
	}
	pedido := e.id(Primeiro(m, SinLinhaPedido))
	if pedido == "" {
		pedido = entity.CodigoSentinela
	}

	return &entity.ProductLine{
		ClienteCodigo:      cliente,
		ProdutoCodigo:      produto,
		PedidoCodigo:       pedido,
		Titulo:             texto(m["titulo"]),
		CategoriaPrincipal: texto(m["categoria_principal"]),
		Categoria:          texto(m["categoria"]),
		Marca:              texto(m["marca"]),
		Tamanho:            texto(m["tamanho"]),
		Cor:                texto(m["cor"]),
		SKU:                texto(m["sku"]),
		Quantidade:         normalize.Integer(Primeiro(m, SinQuantidade)),
		DataPedido:         normalize.Timestamp(m["data_pedido"]),
	}
}

func (e *Extractor) id(v any) string {
	s := normalize.Identifier(v, e.StripZeros)
	if s == nil {
		return ""
	}
	return *s
}

// texto converte um escalar em *string com trim; vazio ou não-escalar -> nil.
func texto(v any) *string {
	switch s := v.(type) {
	case string:
		t := strings.TrimSpace(s)
		if t == "" {
			return nil
		}
		return &t
	case float64, int, int64:
		if id := normalize.Identifier(v, false); id != nil {
			return id
		}
		return nil
	default:
		return nil
	}
}
