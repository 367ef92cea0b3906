package entity

import "github.com/shopspring/decimal"

// Order registro canônico de pedido.
// ClienteCodigo nunca é vazio: posse irresolúvel degrada para CodigoSentinela.
type Order struct {
	CodigoPedido             string // normalizado ou sintetizado P_<cliente>_<sufixo>
	ClienteCodigo            string
	Situacao                 *string
	DataHoraPedido           *string
	DataConfirmacaoPagamento *string
	DataHoraConfirmacao      *string
	ValorTotalProdutos       *decimal.Decimal
	ValorFrete               *decimal.Decimal
	Desconto                 *decimal.Decimal
	ValorTotalPedido         *decimal.Decimal
	PercentualComissao       *decimal.Decimal
	OrigemPedido             *string
	TipoCompra               *string
	Cidade                   *string
	Estado                   *string
}
