package entity

// LineKey identidade composta de uma linha de produto: cliente × produto ×
// pedido (ou sentinela "0" quando a linha não está ligada a pedido).
// É um value type comparável, usável como chave de map; nunca concatenação de
// strings, para evitar colisões com separadores presentes nos códigos.
type LineKey struct {
	Cliente string
	Produto string
	Pedido  string
}

// ProductLine registro canônico de produto comprado por cliente.
// Quantidade nil significa "desconhecida na origem": nunca sobrescreve uma
// quantidade persistida conhecida.
type ProductLine struct {
	ClienteCodigo      string
	ProdutoCodigo      string
	PedidoCodigo       string // "0" quando sem pedido associado
	Titulo             *string
	CategoriaPrincipal *string
	Categoria          *string
	Marca              *string
	Tamanho            *string
	Cor                *string
	SKU                *string
	Quantidade         *int64
	DataPedido         *string
}

// Key devolve a identidade composta da linha.
func (l *ProductLine) Key() LineKey {
	pedido := l.PedidoCodigo
	if pedido == "" {
		pedido = CodigoSentinela
	}
	return LineKey{Cliente: l.ClienteCodigo, Produto: l.ProdutoCodigo, Pedido: pedido}
}
