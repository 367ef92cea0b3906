package merge

import (
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/entity"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/config"
)

// PersistedLine projeção mínima de uma linha já persistida, lida do store
// antes do plano: id interno, chave composta, quantidade atual e o
// fingerprint do último snapshot que a tocou.
type PersistedLine struct {
	ID          int64
	Key         entity.LineKey
	Quantidade  *int64
	Fingerprint string
}

// QuantityUpdate correção pontual de quantidade, endereçada pelo id interno.
type QuantityUpdate struct {
	ID         int64
	Key        entity.LineKey
	Quantidade int64
}

// LinePlan resultado da reconciliação por chave composta.
type LinePlan struct {
	Inserts []*entity.ProductLine
	Updates []QuantityUpdate
	// SemMudanca: linha existente cujo valor final seria igual ao atual, ou
	// quantidade recebida nil (nunca sobrescrever valor conhecido com
	// desconhecido).
	SemMudanca int
	// JaAplicado: o fingerprint persistido é o deste snapshot; a linha já foi
	// escrita por uma execução (possivelmente parcial) do mesmo documento.
	JaAplicado int
}

// CanonicalizePersisted agrupa o estado lido por chave composta. Duplicatas em
// storage são uma condição de qualidade de dados tolerada: vence a de maior id
// interno.
func CanonicalizePersisted(rows []PersistedLine) map[entity.LineKey]PersistedLine {
	porChave := make(map[entity.LineKey]PersistedLine, len(rows))
	for _, r := range rows {
		if atual, ok := porChave[r.Key]; ok && atual.ID >= r.ID {
			continue
		}
		porChave[r.Key] = r
	}
	return porChave
}

// PlanLines compara o lote recebido (já fundido por MergeLines) com o estado
// persistido e decide, por chave: insert, update de quantidade ou no-op.
// Toda quantidade nova é calculada a partir do valor lido, nunca assumida
// zero. O fingerprint do snapshot corrente torna re-execuções do mesmo
// documento no-ops mesmo em modo delta.
func PlanLines(incoming []*entity.ProductLine, persisted []PersistedLine, mode, fingerprint string) LinePlan {
	estado := CanonicalizePersisted(persisted)
	var plan LinePlan

	for _, l := range incoming {
		ex, existe := estado[l.Key()]
		if !existe {
			plan.Inserts = append(plan.Inserts, l)
			continue
		}
		if fingerprint != "" && ex.Fingerprint == fingerprint {
			plan.JaAplicado++
			continue
		}
		if l.Quantidade == nil {
			plan.SemMudanca++
			continue
		}

		var nova int64
		if mode == config.ModeAbsolute {
			nova = *l.Quantidade
		} else {
			nova = *l.Quantidade
			if ex.Quantidade != nil {
				nova += *ex.Quantidade
			}
		}
		if ex.Quantidade != nil && nova == *ex.Quantidade {
			plan.SemMudanca++
			continue
		}
		plan.Updates = append(plan.Updates, QuantityUpdate{ID: ex.ID, Key: l.Key(), Quantidade: nova})
	}
	return plan
}
