// Package sync orquestra a reconciliação: localizar, extrair, deduplicar,
// planejar e escrever o snapshot contra o estado persistido, tolerando falhas
// parciais. Re-execuções idempotentes são o mecanismo de recuperação.
package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/document"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/entity"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/repository"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/extract"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/merge"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/config"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/logger"
)

// Engine o motor de uma execução: um documento de entrada, escritas
// sequenciais contra o store, um relatório ao final. Sem estado compartilhado
// entre execuções.
type Engine struct {
	cfg       config.SyncConfig
	log       *logger.Logger
	extractor *extract.Extractor
	writer    *Writer
	agora     func() time.Time
}

// NewEngine constrói o motor com a configuração explícita da execução.
func NewEngine(store repository.Store, cfg config.SyncConfig, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalida, err)
	}
	return &Engine{
		cfg:       cfg,
		log:       log,
		extractor: extract.New(),
		writer:    NewWriter(store, cfg, log),
		agora:     time.Now,
	}, nil
}

// Run executa a reconciliação do documento JSON cru. Erros de setup (JSON
// inválido, nenhum array de clientes) são fatais e acontecem antes de qualquer
// escrita; falhas de escrita seguem a política por tabela.
func (e *Engine) Run(ctx context.Context, raw []byte) (*RunReport, error) {
	inicio := e.agora()
	report := &RunReport{Fingerprint: fingerprint(raw)}

	var raiz any
	if err := json.Unmarshal(raw, &raiz); err != nil {
		return nil, fmt.Errorf("%w: JSON não parseável: %v", domain.ErrEntradaInvalida, err)
	}
	clientesArr := document.Locate(raiz, document.CandidatosClientes)
	if clientesArr == nil {
		return nil, domain.ErrDocumentoSemArray
	}

	res := e.extractor.Snapshot(raiz, clientesArr)
	report.SemIdentidade = res.SemIdentidade
	report.Clientes.Extraidos = len(res.Clientes)
	report.Pedidos.Extraidos = len(res.Pedidos)
	report.Produtos.Extraidos = len(res.Linhas)
	e.log.Info().
		Int("clientes", len(res.Clientes)).
		Int("pedidos", len(res.Pedidos)).
		Int("linhas", len(res.Linhas)).
		Str("fingerprint", report.Fingerprint).
		Msg("snapshot extraído")

	clientes, remC := merge.DeduplicateCustomers(res.Clientes, e.cfg.DedupPolicy)
	pedidos, remP := merge.DeduplicateOrders(res.Pedidos)
	linhas := merge.MergeLines(res.Linhas, e.cfg.QuantityMode)
	report.Clientes.Deduplicados = remC
	report.Pedidos.Deduplicados = remP
	report.Produtos.Deduplicados = len(res.Linhas) - len(linhas)

	// Placeholders antes das escritas dependentes: nenhum pedido ou linha pode
	// referenciar um cliente que o backend não conheça.
	placeholders := e.placeholders(clientes, pedidos, linhas)
	report.Placeholders = len(placeholders)
	clientes = append(placeholders, clientes...)

	stats, err := e.writer.UpsertClientes(ctx, clientes)
	report.Clientes.aplica(stats)
	if err != nil {
		return report, err
	}

	stats, err = e.writer.UpsertPedidos(ctx, pedidos)
	report.Pedidos.aplica(stats)
	if err != nil {
		return report, err
	}

	persistidas := e.writer.LerLinhasPersistidas(ctx, produtosDoLote(linhas))
	plan := merge.PlanLines(linhas, persistidas, e.cfg.QuantityMode, report.Fingerprint)
	report.Produtos.SemMudanca = plan.SemMudanca
	report.Produtos.JaAplicado = plan.JaAplicado

	stats, err = e.writer.InsertLinhas(ctx, plan.Inserts, report.Fingerprint)
	report.Produtos.aplica(stats)
	if err != nil {
		return report, err
	}

	stats, err = e.writer.UpdateQuantidades(ctx, plan.Updates, report.Fingerprint)
	report.Produtos.aplica(stats)
	if err != nil {
		return report, err
	}

	e.podar(ctx, report, clientes, pedidos, linhas)

	report.Duracao = e.agora().Sub(inicio)
	return report, nil
}

// placeholders sintetiza clientes mínimos para todo código referenciado por
// pedido ou linha e ausente do lote de clientes, incluindo a sentinela "0".
func (e *Engine) placeholders(clientes []*entity.Customer, pedidos []*entity.Order, linhas []*entity.ProductLine) []*entity.Customer {
	presentes := make(map[string]bool, len(clientes))
	for _, c := range clientes {
		presentes[c.Codigo] = true
	}
	faltando := make(map[string]bool)
	for _, p := range pedidos {
		if !presentes[p.ClienteCodigo] {
			faltando[p.ClienteCodigo] = true
		}
	}
	for _, l := range linhas {
		if !presentes[l.ClienteCodigo] {
			faltando[l.ClienteCodigo] = true
		}
	}

	agora := e.agora()
	out := make([]*entity.Customer, 0, len(faltando))
	for codigo := range faltando {
		out = append(out, entity.Placeholder(codigo, agora))
	}
	return out
}

// podar remove órfãos das tabelas com o toggle ligado. Falha de poda nunca é
// fatal: o estado converge na próxima execução.
func (e *Engine) podar(ctx context.Context, report *RunReport, clientes []*entity.Customer, pedidos []*entity.Order, linhas []*entity.ProductLine) {
	if e.cfg.PruneOrphans[config.TableClientes] {
		presentes := make(map[string]bool, len(clientes))
		for _, c := range clientes {
			presentes[c.Codigo] = true
		}
		report.Clientes.Podados = e.executaPoda(ctx, config.TableClientes, colClienteCodigo, presentes)
	}
	if e.cfg.PruneOrphans[config.TablePedidos] {
		presentes := make(map[string]bool, len(pedidos))
		for _, p := range pedidos {
			presentes[p.CodigoPedido] = true
		}
		report.Pedidos.Podados = e.executaPoda(ctx, config.TablePedidos, colPedidoCodigo, presentes)
	}
	if e.cfg.PruneOrphans[config.TableProdutos] {
		// A identidade da linha é a chave composta: um produto presente no
		// documento não salva as linhas dele com outra tripla.
		presentes := make(map[entity.LineKey]bool, len(linhas))
		for _, l := range linhas {
			presentes[l.Key()] = true
		}
		n, err := e.writer.PodarLinhasOrfas(ctx, presentes)
		if err != nil {
			e.log.Error().Err(err).Str("colecao", config.TableProdutos).Msg("poda de órfãos falhou")
		}
		report.Produtos.Podados = n
	}
}

func (e *Engine) executaPoda(ctx context.Context, colecao, coluna string, presentes map[string]bool) int {
	n, err := e.writer.PodarOrfaos(ctx, colecao, coluna, presentes)
	if err != nil {
		e.log.Error().Err(err).Str("colecao", colecao).Msg("poda de órfãos falhou")
	}
	return n
}

func produtosDoLote(linhas []*entity.ProductLine) []string {
	visto := make(map[string]bool, len(linhas))
	var out []string
	for _, l := range linhas {
		if !visto[l.ProdutoCodigo] {
			visto[l.ProdutoCodigo] = true
			out = append(out, l.ProdutoCodigo)
		}
	}
	return out
}

// fingerprint identifica o snapshot: SHA-256 dos bytes crus, truncado. Gravado
// em cada linha escrita para que re-execuções do mesmo documento sejam no-ops.
func fingerprint(raw []byte) string {
	h := sha256.Sum256(raw)
	return hex.EncodeToString(h[:])[:16]
}

func (t *TableReport) aplica(s TableStats) {
	t.Escritos += s.Escritos
	t.Atualizados += s.Atualizados
	t.Falhas += s.Falhas
	t.LotesPerdidos += s.LotesPerdidos
}
