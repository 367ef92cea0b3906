package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CodigoSentinela é o cliente reservado usado quando a posse de um pedido ou
// linha de produto não pode ser resolvida. Uma linha placeholder garante que
// ele sempre exista antes das escritas dependentes.
const CodigoSentinela = "0"

// NomePlaceholder marca clientes sintetizados apenas para satisfazer a
// integridade referencial; uma sincronização posterior pode preenchê-los.
const NomePlaceholder = "[AGUARDANDO SINCRONIZACAO]"

// Customer registro canônico de cliente extraído do snapshot.
// Campos opcionais são ponteiros: nil significa ausente na origem.
// Datas canônicas são strings ISO-8601 UTC (YYYY-MM-DDTHH:MM:SSZ).
type Customer struct {
	Codigo             string // identidade normalizada; nunca vazio ao persistir
	Nome               *string
	Email              *string
	DataCadastro       *string
	Whatsapp           *string
	Cidade             *string
	Estado             *string
	LojaDrop           *string
	Representante      *string
	TotalPedidos       *int64
	ValorTotalComprado *decimal.Decimal
	CriadoEm           time.Time // carimbado pelo motor, não pela origem
}

// Placeholder sintetiza um cliente mínimo para um código referenciado mas
// ausente do lote, de forma que constraints de chave estrangeira nunca quebrem.
func Placeholder(codigo string, agora time.Time) *Customer {
	nome := NomePlaceholder
	return &Customer{
		Codigo:   codigo,
		Nome:     &nome,
		CriadoEm: agora,
	}
}
