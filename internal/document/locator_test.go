package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/document"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestLocate_CandidatoPrioritario(t *testing.T) {
	raiz := decode(t, `{"meta": {"v": 1}, "customers": [{"a": 1}], "clientes": [{"b": 2}]}`)

	arr := document.Locate(raiz, document.CandidatosClientes)
	require.Len(t, arr, 1)
	// "clientes" vem antes de "customers" na lista de candidatos
	assert.Equal(t, map[string]any{"b": float64(2)}, arr[0])
}

func TestLocate_CandidatoPrecisaSerArray(t *testing.T) {
	// "clientes" existe mas não é array; deve cair para o próximo candidato.
	raiz := decode(t, `{"clientes": "oops", "data": [{"x": 1}]}`)

	arr := document.Locate(raiz, document.CandidatosClientes)
	require.Len(t, arr, 1)
}

func TestLocate_VarreduraDePropriedades(t *testing.T) {
	// Nenhum candidato bate; o único array do topo é escolhido.
	raiz := decode(t, `{"qualquer_nome": [{"x": 1}, {"y": 2}], "outro": 3}`)

	arr := document.Locate(raiz, document.CandidatosClientes)
	assert.Len(t, arr, 2)
}

func TestLocate_VarreduraEhDeterministica(t *testing.T) {
	// Vários arrays sem nome candidato: vence sempre o de nome lexicograficamente
	// menor, em qualquer execução.
	raiz := decode(t, `{"zzz": [{"z": 1}], "bbb": [{"b": 1}, {"b": 2}], "mmm": [{"m": 1}]}`)

	for i := 0; i < 20; i++ {
		arr := document.Locate(raiz, document.CandidatosClientes)
		require.Len(t, arr, 2, "deve resolver para \"bbb\" em toda execução")
	}
}

func TestLocate_RaizComoArray(t *testing.T) {
	raiz := decode(t, `[{"codigo": "C1"}]`)

	arr := document.Locate(raiz, document.CandidatosClientes)
	assert.Len(t, arr, 1)
}

func TestLocate_NadaEncontrado(t *testing.T) {
	assert.Nil(t, document.Locate(decode(t, `{"a": 1}`), document.CandidatosClientes))
	assert.Nil(t, document.Locate(decode(t, `"texto"`), document.CandidatosClientes))
	assert.Nil(t, document.Locate(nil, document.CandidatosClientes))
}

func TestLocateNamed_SemFallback(t *testing.T) {
	raiz := decode(t, `{"clientes": [{"a": 1}], "sem_nome": [{"b": 2}]}`)

	assert.Nil(t, document.LocateNamed(raiz, document.CandidatosPedidos))
	assert.Len(t, document.LocateNamed(raiz, document.CandidatosClientes), 1)
}
