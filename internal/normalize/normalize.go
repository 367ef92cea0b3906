// Package normalize contém funções puras que convertem valores crus do
// snapshot JSON (datas em várias codificações, números em formato pt-BR,
// identificadores frouxos) em formas canônicas tipadas ou nil.
// Tudo aqui é fail-soft: valor irreconhecível vira nil, nunca panic.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	reIdentifier = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)
	reNumber     = regexp.MustCompile(`[^0-9,.\-]`)
	// Sentinelas de "sem data" do sistema de origem: ano ou data inteira
	// composta de zeros (0000-00-00, 00/00/0000, com ou sem hora).
	reZeroDate = regexp.MustCompile(`^0{1,4}[-/]0{1,2}[-/]0{1,4}([ T]0{1,2}:0{1,2}(:0{1,2})?)?Z?$`)
)

// Identifier normaliza um identificador frouxo: nil -> nil; senão stringifica,
// faz trim, remove caracteres fora de [A-Za-z0-9_.-] e, se stripLeadingZeros,
// remove zeros à esquerda. Resultado vazio -> nil.
func Identifier(v any, stripLeadingZeros bool) *string {
	s, ok := stringify(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	s = reIdentifier.ReplaceAllString(s, "")
	if stripLeadingZeros {
		s = strings.TrimLeft(s, "0")
	}
	if s == "" {
		return nil
	}
	return &s
}

// Number normaliza um valor numérico possivelmente formatado em pt-BR
// ("1.234,56"). Mantém apenas dígitos, vírgula, ponto e sinal; quando ponto e
// vírgula coexistem, ponto é separador de milhar e vírgula é decimal; vírgula
// sozinha é decimal. Falha de parse -> nil.
func Number(v any) *decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		d := decimal.NewFromFloat(n)
		return &d
	case float32:
		d := decimal.NewFromFloat32(n)
		return &d
	case int:
		d := decimal.NewFromInt(int64(n))
		return &d
	case int64:
		d := decimal.NewFromInt(n)
		return &d
	case decimal.Decimal:
		return &n
	}

	s, ok := stringify(v)
	if !ok {
		return nil
	}
	s = reNumber.ReplaceAllString(strings.TrimSpace(s), "")

	temPonto := strings.Contains(s, ".")
	virgulas := strings.Count(s, ",")
	switch {
	case temPonto && virgulas > 0:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case virgulas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case virgulas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// Integer normaliza uma contagem: passa por Number e trunca em direção a zero.
// Quantidades nunca são fracionárias na origem; frações indicam ruído de formato.
func Integer(v any) *int64 {
	d := Number(v)
	if d == nil {
		return nil
	}
	n := d.IntPart()
	return &n
}

// Layouts literais reconhecidos, em ordem de prioridade.
var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp converte as codificações reconhecidas (DD/MM/YYYY com hora
// opcional, datetime SQL, ISO-8601) para a forma canônica UTC
// YYYY-MM-DDTHH:MM:SSZ. Sentinelas de data zero e strings não parseáveis
// viram nil.
func Timestamp(v any) *string {
	if t, ok := v.(time.Time); ok {
		return canonical(t)
	}
	s, ok := stringify(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || IsZeroDate(s) {
		return nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return canonical(t)
	}
	return nil
}

// ParseCanonical interpreta uma string já canônica (ou nil) como time.Time.
func ParseCanonical(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsZeroDate reporta se o valor bate com um sentinela de data zero da origem.
func IsZeroDate(s string) bool {
	return reZeroDate.MatchString(strings.TrimSpace(s))
}

func canonical(t time.Time) *string {
	if t.Year() <= 0 {
		return nil
	}
	s := t.UTC().Format("2006-01-02T15:04:05Z07:00")
	return &s
}

// stringify converte escalares JSON em string. Mapas, arrays e bool não são
// identificadores nem números válidos.
func stringify(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}
