package sync

import (
	"fmt"
	"strings"
	"time"
)

// TableReport diagnóstico por coleção de uma execução.
type TableReport struct {
	Extraidos     int
	Deduplicados  int // removidos na deduplicação/fusão intra-lote
	Escritos      int
	Atualizados   int
	SemMudanca    int
	JaAplicado    int // fingerprint do snapshot já persistido (re-execução)
	Falhas        int
	LotesPerdidos int
	Podados       int
}

// RunReport agrega os diagnósticos da execução inteira.
type RunReport struct {
	Clientes      TableReport
	Pedidos       TableReport
	Produtos      TableReport
	SemIdentidade int // clientes de origem sem código resolvível
	Placeholders  int // clientes mínimos sintetizados para integridade referencial
	Fingerprint   string
	Duracao       time.Duration
}

// Resumo devolve o sumário legível impresso ao fim da execução.
func (r *RunReport) Resumo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sincronização concluída em %s (snapshot %s)\n", r.Duracao.Round(time.Millisecond), r.Fingerprint)
	linha := func(nome string, t TableReport) {
		fmt.Fprintf(&b, "  %-18s extraídos=%d dedup=%d escritos=%d atualizados=%d sem_mudanca=%d ja_aplicado=%d falhas=%d podados=%d\n",
			nome, t.Extraidos, t.Deduplicados, t.Escritos, t.Atualizados, t.SemMudanca, t.JaAplicado, t.Falhas, t.Podados)
	}
	linha("clientes", r.Clientes)
	linha("pedidos", r.Pedidos)
	linha("clientes_produtos", r.Produtos)
	if r.SemIdentidade > 0 {
		fmt.Fprintf(&b, "  clientes sem identidade resolvível: %d\n", r.SemIdentidade)
	}
	if r.Placeholders > 0 {
		fmt.Fprintf(&b, "  placeholders criados: %d\n", r.Placeholders)
	}
	return b.String()
}
