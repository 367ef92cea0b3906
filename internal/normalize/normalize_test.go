package normalize_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/normalize"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		nome       string
		entrada    any
		stripZeros bool
		esperado   *string
	}{
		{"nil vira nil", nil, true, nil},
		{"trim e zeros à esquerda", "  007-A ", true, ptr("7-A")},
		{"sem strip mantém zeros", "  007-A ", false, ptr("007-A")},
		{"remove caracteres fora do conjunto", "AB#12 /X", false, ptr("AB12X")},
		{"número JSON vira string", float64(42), false, ptr("42")},
		{"só lixo vira nil", " @#$ ", false, nil},
		{"só zeros com strip vira nil", "000", true, nil},
		{"vazio vira nil", "   ", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			got := normalize.Identifier(tt.entrada, tt.stripZeros)
			if tt.esperado == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.esperado, *got)
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		nome     string
		entrada  any
		esperado string // decimal como string; "" significa nil
	}{
		{"formato pt-BR completo", "1.234,56", "1234.56"},
		{"vírgula sozinha é decimal", "12,5", "12.5"},
		{"ponto sozinho é decimal", "12.5", "12.5"},
		{"prefixo de moeda descartado", "R$ 1.999,90", "1999.9"},
		{"negativo", "-3,25", "-3.25"},
		{"múltiplos pontos são milhar", "1.234.567", "1234567"},
		{"float JSON", float64(10.25), "10.25"},
		{"nil vira nil", nil, ""},
		{"texto puro vira nil", "abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			got := normalize.Number(tt.entrada)
			if tt.esperado == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			esperado, err := decimal.NewFromString(tt.esperado)
			require.NoError(t, err)
			assert.True(t, esperado.Equal(*got), "esperado %s, obtido %s", esperado, got)
		})
	}
}

func TestInteger(t *testing.T) {
	assert.Nil(t, normalize.Integer(nil))
	assert.Nil(t, normalize.Integer("x"))

	q := normalize.Integer("3")
	require.NotNil(t, q)
	assert.Equal(t, int64(3), *q)

	// Fração trunca em direção a zero
	q = normalize.Integer("2,9")
	require.NotNil(t, q)
	assert.Equal(t, int64(2), *q)

	q = normalize.Integer(float64(5))
	require.NotNil(t, q)
	assert.Equal(t, int64(5), *q)
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		nome     string
		entrada  any
		esperado string // "" significa nil
	}{
		{"data brasileira", "29/11/2025", "2025-11-29T00:00:00Z"},
		{"data brasileira com hora", "29/11/2025 08:30", "2025-11-29T08:30:00Z"},
		{"datetime SQL", "2024-03-18 10:12:40", "2024-03-18T10:12:40Z"},
		{"ISO já válido", "2024-03-18T10:12:40Z", "2024-03-18T10:12:40Z"},
		{"ISO sem zona", "2024-03-18T10:12:40", "2024-03-18T10:12:40Z"},
		{"data pura ISO", "2024-03-18", "2024-03-18T00:00:00Z"},
		{"sentinela zero SQL", "0000-00-00 00:00:00", ""},
		{"sentinela zero data", "0000-00-00", ""},
		{"sentinela zero brasileira", "00/00/0000", ""},
		{"lixo vira nil", "ontem de manhã", ""},
		{"vazio vira nil", "", ""},
		{"nil vira nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			got := normalize.Timestamp(tt.entrada)
			if tt.esperado == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.esperado, *got)
		})
	}
}

func TestTimestampNuncaEntraEmPanico(t *testing.T) {
	// Valores estruturais não devem derrubar o parser.
	assert.NotPanics(t, func() {
		normalize.Timestamp(map[string]any{"x": 1})
		normalize.Timestamp([]any{1, 2})
		normalize.Timestamp(true)
	})
}

func TestParseCanonical(t *testing.T) {
	s := "2024-06-01T00:00:00Z"
	tm, ok := normalize.ParseCanonical(&s)
	require.True(t, ok)
	assert.Equal(t, 2024, tm.Year())

	_, ok = normalize.ParseCanonical(nil)
	assert.False(t, ok)
}

func TestIsZeroDate(t *testing.T) {
	assert.True(t, normalize.IsZeroDate("0000-00-00 00:00:00"))
	assert.True(t, normalize.IsZeroDate("0000-00-00"))
	assert.False(t, normalize.IsZeroDate("2024-01-01"))
	assert.False(t, normalize.IsZeroDate("texto"))
}

func ptr(s string) *string { return &s }
