package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/entity"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/merge"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/config"
)

func cliente(codigo, dataCadastro string) *entity.Customer {
	c := &entity.Customer{Codigo: codigo}
	if dataCadastro != "" {
		c.DataCadastro = &dataCadastro
	}
	return c
}

func linha(cliente, produto, pedido string, qtd *int64) *entity.ProductLine {
	return &entity.ProductLine{
		ClienteCodigo: cliente,
		ProdutoCodigo: produto,
		PedidoCodigo:  pedido,
		Quantidade:    qtd,
	}
}

func qtd(n int64) *int64 { return &n }

func TestDeduplicateCustomers_KeepFirst(t *testing.T) {
	in := []*entity.Customer{
		cliente("C1", "2023-01-01T00:00:00Z"),
		cliente("C2", ""),
		cliente("C1", "2024-06-01T00:00:00Z"),
	}

	out, removidos := merge.DeduplicateCustomers(in, config.DedupKeepFirst)
	require.Len(t, out, 2)
	assert.Equal(t, 1, removidos)
	assert.Equal(t, "2023-01-01T00:00:00Z", *out[0].DataCadastro, "keep-first mantém o primeiro visto")
}

func TestDeduplicateCustomers_KeepMostRecent(t *testing.T) {
	in := []*entity.Customer{
		cliente("C1", "2023-01-01T00:00:00Z"),
		cliente("C1", "2024-06-01T00:00:00Z"),
	}

	out, removidos := merge.DeduplicateCustomers(in, config.DedupKeepMostRecent)
	require.Len(t, out, 1)
	assert.Equal(t, 1, removidos)
	assert.Equal(t, "2024-06-01T00:00:00Z", *out[0].DataCadastro, "vence o timestamp mais novo")
}

func TestDeduplicateCustomers_KeepMostRecentSemTimestampCaiParaPrimeiro(t *testing.T) {
	primeiro := cliente("C1", "")
	primeiro.Nome = ptr("primeiro")
	segundo := cliente("C1", "")
	segundo.Nome = ptr("segundo")

	out, _ := merge.DeduplicateCustomers([]*entity.Customer{primeiro, segundo}, config.DedupKeepMostRecent)
	require.Len(t, out, 1)
	assert.Equal(t, "primeiro", *out[0].Nome, "sem timestamp parseável em ambos, mantém o primeiro por estabilidade")
}

func TestDeduplicateCustomers_CandidatoComTimestampVenceSemTimestamp(t *testing.T) {
	out, _ := merge.DeduplicateCustomers([]*entity.Customer{
		cliente("C1", ""),
		cliente("C1", "2024-01-01T00:00:00Z"),
	}, config.DedupKeepMostRecent)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].DataCadastro)
}

func TestDeduplicateOrders(t *testing.T) {
	out, removidos := merge.DeduplicateOrders([]*entity.Order{
		{CodigoPedido: "P1"}, {CodigoPedido: "P2"}, {CodigoPedido: "P1"},
	})
	assert.Len(t, out, 2)
	assert.Equal(t, 1, removidos)
}

func TestMergeLines_DeltaSoma(t *testing.T) {
	in := []*entity.ProductLine{
		linha("C1", "P1", "O1", qtd(2)),
		linha("C1", "P1", "O1", qtd(3)),
		linha("C1", "P2", "O1", qtd(1)),
	}

	out := merge.MergeLines(in, config.ModeDelta)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].Quantidade)
	assert.Equal(t, int64(5), *out[0].Quantidade)
}

func TestMergeLines_AbsolutoUltimaVence(t *testing.T) {
	in := []*entity.ProductLine{
		linha("C1", "P1", "O1", qtd(2)),
		linha("C1", "P1", "O1", qtd(3)),
	}

	out := merge.MergeLines(in, config.ModeAbsolute)
	require.Len(t, out, 1)
	assert.Equal(t, int64(3), *out[0].Quantidade)
}

func TestMergeLines_NilNaoApaga(t *testing.T) {
	in := []*entity.ProductLine{
		linha("C1", "P1", "O1", qtd(4)),
		linha("C1", "P1", "O1", nil),
	}

	out := merge.MergeLines(in, config.ModeAbsolute)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Quantidade)
	assert.Equal(t, int64(4), *out[0].Quantidade)
}

func TestMergeLines_CompletaAtributos(t *testing.T) {
	com := linha("C1", "P1", "O1", qtd(1))
	com.Marca = ptr("Aurora")
	in := []*entity.ProductLine{linha("C1", "P1", "O1", qtd(1)), com}

	out := merge.MergeLines(in, config.ModeDelta)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Marca)
	assert.Equal(t, "Aurora", *out[0].Marca)
}

func TestMergeLines_PedidoVazioNormalizaParaSentinela(t *testing.T) {
	in := []*entity.ProductLine{linha("C1", "P1", "", qtd(1))}
	out := merge.MergeLines(in, config.ModeDelta)
	require.Len(t, out, 1)
	assert.Equal(t, entity.CodigoSentinela, out[0].PedidoCodigo)
}

func ptr(s string) *string { return &s }
