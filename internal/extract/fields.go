package extract

// Tabelas de sinônimos por campo canônico, em ordem de prioridade: o primeiro
// nome presente e não-nil no objeto de origem vence. Declarativas para serem
// testáveis fora da extração.
var (
	SinClienteCodigo = []string{"codigo", "cliente_codigo", "id"}

	SinPedidoCodigo      = []string{"codigo_pedido", "id", "numero_pedido", "order_id"}
	SinPedidoCliente     = []string{"cliente_codigo", "codigo_cliente", "customer_id"}
	SinPedidoData        = []string{"data_hora_pedido", "data_pedido", "created_at"}
	SinPedidoPagamento   = []string{"data_confirmacao_pagamento", "data_pagamento"}
	SinPedidoConfirmacao = []string{"data_hora_confirmacao"}
	SinPedidoSituacao    = []string{"situacao_pedido", "status"}

	SinProdutoCodigo = []string{"codigo", "produto_codigo", "id"}
	SinLinhaPedido   = []string{"id_pedido", "codigo_pedido", "pedido_codigo"}
	SinLinhaCliente  = []string{"cliente_codigo", "codigo_cliente"}
	SinQuantidade    = []string{"quantidade", "qtd", "quantity"}
)

// Primeiro devolve o valor do primeiro nome presente e não-nil em m.
func Primeiro(m map[string]any, nomes []string) any {
	for _, nome := range nomes {
		if v, ok := m[nome]; ok && v != nil {
			return v
		}
	}
	return nil
}
