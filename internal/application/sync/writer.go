package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/entity"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/domain/repository"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/merge"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/config"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/logger"
)

// TableStats contagem de escrita por coleção em uma execução.
type TableStats struct {
	Escritos      int // inseridos ou upsertados com sucesso
	Atualizados   int // updates pontuais de quantidade
	Falhas        int // linhas que falharam mesmo no fallback
	LotesPerdidos int // chunks que falharam por completo
}

// Writer executa as escritas reconciliadas contra o store em lotes limitados,
// com fallback linha a linha quando o lote inteiro falha: uma linha malformada
// nunca bloqueia as companheiras de lote.
type Writer struct {
	store repository.Store
	cfg   config.SyncConfig
	log   *logger.Logger

	// pausa entre chunks destrutivos; substituível em teste.
	pausa func(time.Duration)
}

// NewWriter constrói o writer.
func NewWriter(store repository.Store, cfg config.SyncConfig, log *logger.Logger) *Writer {
	return &Writer{store: store, cfg: cfg, log: log, pausa: time.Sleep}
}

// UpsertClientes escreve o lote de clientes por chave natural.
func (w *Writer) UpsertClientes(ctx context.Context, clientes []*entity.Customer) (TableStats, error) {
	rows := make([]repository.Row, len(clientes))
	for i, c := range clientes {
		rows[i] = sanitizeRow(rowCliente(c))
	}
	return w.upsertLote(ctx, config.TableClientes, colClienteCodigo, rows)
}

// UpsertPedidos escreve o lote de pedidos por chave natural.
func (w *Writer) UpsertPedidos(ctx context.Context, pedidos []*entity.Order) (TableStats, error) {
	rows := make([]repository.Row, len(pedidos))
	for i, p := range pedidos {
		rows[i] = sanitizeRow(rowPedido(p))
	}
	return w.upsertLote(ctx, config.TablePedidos, colPedidoCodigo, rows)
}

// upsertLote tenta o upsert em bloco por chunk; em falha, degrada para linha a
// linha registrando (sem abortar) cada falha individual.
func (w *Writer) upsertLote(ctx context.Context, colecao, chave string, rows []repository.Row) (TableStats, error) {
	var stats TableStats
	for _, chunk := range emChunks(rows, w.cfg.ChunkSize) {
		if err := w.store.Upsert(ctx, colecao, chave, chunk); err == nil {
			stats.Escritos += len(chunk)
			continue
		} else {
			w.log.Warn().Err(err).Str("colecao", colecao).Int("linhas", len(chunk)).
				Msg("upsert em bloco falhou; caindo para linha a linha")
		}

		falhasChunk := 0
		for _, row := range chunk {
			if err := w.store.Upsert(ctx, colecao, chave, []repository.Row{row}); err != nil {
				falhasChunk++
				w.log.Error().Err(err).Str("colecao", colecao).
					Interface("chave", row[chave]).Msg("linha descartada")
				continue
			}
			stats.Escritos++
		}
		stats.Falhas += falhasChunk
		if falhasChunk == len(chunk) {
			stats.LotesPerdidos++
			if w.cfg.FailFast[colecao] {
				return stats, fmt.Errorf("%s: %w", colecao, domain.ErrLoteIrrecuperavel)
			}
		}
		// O fallback gera uma chamada por linha; a pausa alivia o backend
		// antes do próximo chunk.
		if w.cfg.PaceDelay > 0 {
			w.pausa(w.cfg.PaceDelay)
		}
	}
	return stats, nil
}

// InsertLinhas insere as linhas novas do plano. Uma violação de chave durante
// o insert (corrida com outro processo ou leitura defasada) degrada para
// lookup exato e update de quantidade com a mesma regra delta/absoluto; se nem
// o lookup encontrar a linha, tenta um insert unitário como último recurso.
func (w *Writer) InsertLinhas(ctx context.Context, linhas []*entity.ProductLine, fingerprint string) (TableStats, error) {
	var stats TableStats
	for _, chunk := range emChunks(linhas, w.cfg.ChunkSize) {
		rows := make([]repository.Row, len(chunk))
		for i, l := range chunk {
			rows[i] = sanitizeRow(rowLinha(l, fingerprint))
		}
		if err := w.store.Insert(ctx, config.TableProdutos, rows); err == nil {
			stats.Escritos += len(chunk)
			continue
		} else {
			w.log.Warn().Err(err).Int("linhas", len(chunk)).
				Msg("insert em bloco falhou; caindo para linha a linha")
		}

		falhasChunk := 0
		for i, l := range chunk {
			if err := w.insereLinha(ctx, l, rows[i], fingerprint, &stats); err != nil {
				falhasChunk++
				w.log.Error().Err(err).
					Str("cliente", l.ClienteCodigo).Str("produto", l.ProdutoCodigo).
					Msg("linha de produto descartada")
			}
		}
		stats.Falhas += falhasChunk
		if falhasChunk == len(chunk) {
			stats.LotesPerdidos++
			if w.cfg.FailFast[config.TableProdutos] {
				return stats, fmt.Errorf("%s: %w", config.TableProdutos, domain.ErrLoteIrrecuperavel)
			}
		}
		if w.cfg.PaceDelay > 0 {
			w.pausa(w.cfg.PaceDelay)
		}
	}
	return stats, nil
}

func (w *Writer) insereLinha(ctx context.Context, l *entity.ProductLine, row repository.Row, fingerprint string, stats *TableStats) error {
	err := w.store.Insert(ctx, config.TableProdutos, []repository.Row{row})
	if err == nil {
		stats.Escritos++
		return nil
	}
	if !errors.Is(err, domain.ErrDuplicado) {
		return err
	}

	// A chave composta passou a existir depois da leitura do estado.
	existente, ok := w.localizaLinha(ctx, l.Key())
	if !ok {
		// Último recurso: um insert unitário a mais.
		if err := w.store.Insert(ctx, config.TableProdutos, []repository.Row{row}); err != nil {
			return err
		}
		stats.Escritos++
		return nil
	}
	if l.Quantidade == nil {
		// Quantidade desconhecida nunca sobrescreve a persistida.
		return nil
	}
	nova := *l.Quantidade
	if w.cfg.QuantityMode == config.ModeDelta && existente.Quantidade != nil {
		nova += *existente.Quantidade
	}
	if err := w.atualizaQuantidade(ctx, existente.ID, nova, fingerprint); err != nil {
		return err
	}
	stats.Atualizados++
	return nil
}

// localizaLinha busca a linha persistida de uma chave composta exata.
func (w *Writer) localizaLinha(ctx context.Context, k entity.LineKey) (merge.PersistedLine, bool) {
	rows, err := w.store.SelectIn(ctx, config.TableProdutos, colProdutoCodigo, []string{k.Produto})
	if err != nil {
		w.log.Warn().Err(err).Msg("lookup de conflito falhou; assumindo linha inexistente")
		return merge.PersistedLine{}, false
	}
	var achadas []merge.PersistedLine
	for _, r := range rows {
		pl := persistedLine(r)
		if pl.Key == k {
			achadas = append(achadas, pl)
		}
	}
	if len(achadas) == 0 {
		return merge.PersistedLine{}, false
	}
	canonica := merge.CanonicalizePersisted(achadas)[k]
	return canonica, true
}

// UpdateQuantidades aplica as correções de quantidade do plano, uma a uma,
// endereçadas pelo id interno da linha.
func (w *Writer) UpdateQuantidades(ctx context.Context, updates []merge.QuantityUpdate, fingerprint string) (TableStats, error) {
	var stats TableStats
	for _, u := range updates {
		if err := w.atualizaQuantidade(ctx, u.ID, u.Quantidade, fingerprint); err != nil {
			stats.Falhas++
			w.log.Error().Err(err).Int64("id", u.ID).
				Str("produto", u.Key.Produto).Msg("update de quantidade falhou")
			continue
		}
		stats.Atualizados++
	}
	if stats.Falhas > 0 && stats.Atualizados == 0 && len(updates) > 0 {
		stats.LotesPerdidos++
		if w.cfg.FailFast[config.TableProdutos] {
			return stats, fmt.Errorf("%s: %w", config.TableProdutos, domain.ErrLoteIrrecuperavel)
		}
	}
	return stats, nil
}

func (w *Writer) atualizaQuantidade(ctx context.Context, id, quantidade int64, fingerprint string) error {
	return w.store.Update(ctx, config.TableProdutos, id, repository.Row{
		"quantidade":   quantidade,
		colFingerprint: fingerprint,
	})
}

// LerLinhasPersistidas lê o estado atual das linhas dos produtos presentes no
// lote. Erro de leitura vira "nenhuma linha existente": o viés deliberado é
// insert-em-vez-de-update, que nunca perde dado — duplicatas eventuais são
// reconciliáveis por re-execução ou poda.
func (w *Writer) LerLinhasPersistidas(ctx context.Context, produtos []string) []merge.PersistedLine {
	var out []merge.PersistedLine
	for _, chunk := range emChunks(produtos, w.cfg.ChunkSize) {
		rows, err := w.store.SelectIn(ctx, config.TableProdutos, colProdutoCodigo, chunk)
		if err != nil {
			w.log.Warn().Err(err).Int("produtos", len(chunk)).
				Msg("leitura do estado falhou; assumindo linhas inexistentes")
			continue
		}
		for _, r := range rows {
			out = append(out, persistedLine(r))
		}
	}
	return out
}

// PodarOrfaos remove da coleção as chaves que não aparecem no documento
// corrente, em chunks limitados com pausa entre eles. Destrutivo; só roda com
// o toggle da tabela ligado.
func (w *Writer) PodarOrfaos(ctx context.Context, colecao, coluna string, presentes map[string]bool) (int, error) {
	chaves, err := w.store.Keys(ctx, colecao, coluna)
	if err != nil {
		return 0, fmt.Errorf("listar chaves de %s: %w", colecao, err)
	}
	var orfaos []string
	for _, k := range chaves {
		if !presentes[k] && k != entity.CodigoSentinela {
			orfaos = append(orfaos, k)
		}
	}
	podados := 0
	chunks := emChunks(orfaos, w.cfg.ChunkSize)
	for i, chunk := range chunks {
		if err := w.store.DeleteIn(ctx, colecao, coluna, chunk); err != nil {
			w.log.Error().Err(err).Str("colecao", colecao).Int("chaves", len(chunk)).
				Msg("chunk de poda falhou")
			continue
		}
		podados += len(chunk)
		if i < len(chunks)-1 && w.cfg.PaceDelay > 0 {
			w.pausa(w.cfg.PaceDelay)
		}
	}
	return podados, nil
}

// PodarLinhasOrfas remove de clientes_produtos as linhas cuja chave composta
// (cliente, produto, pedido) não aparece no documento corrente. A identidade
// da linha é a tripla inteira, nunca uma coluna isolada; a remoção é
// endereçada pelo id interno. Destrutivo; só roda com o toggle ligado.
func (w *Writer) PodarLinhasOrfas(ctx context.Context, presentes map[entity.LineKey]bool) (int, error) {
	produtos, err := w.store.Keys(ctx, config.TableProdutos, colProdutoCodigo)
	if err != nil {
		return 0, fmt.Errorf("listar produtos persistidos: %w", err)
	}
	visto := make(map[string]bool, len(produtos))
	var unicos []string
	for _, p := range produtos {
		if !visto[p] {
			visto[p] = true
			unicos = append(unicos, p)
		}
	}

	var orfaos []int64
	for _, chunk := range emChunks(unicos, w.cfg.ChunkSize) {
		rows, err := w.store.SelectIn(ctx, config.TableProdutos, colProdutoCodigo, chunk)
		if err != nil {
			return 0, fmt.Errorf("ler linhas persistidas: %w", err)
		}
		for _, r := range rows {
			if pl := persistedLine(r); !presentes[pl.Key] {
				orfaos = append(orfaos, pl.ID)
			}
		}
	}

	podados := 0
	chunks := emChunks(orfaos, w.cfg.ChunkSize)
	for i, chunk := range chunks {
		if err := w.store.DeleteIDs(ctx, config.TableProdutos, chunk); err != nil {
			w.log.Error().Err(err).Int("linhas", len(chunk)).
				Msg("chunk de poda de linhas falhou")
			continue
		}
		podados += len(chunk)
		if i < len(chunks)-1 && w.cfg.PaceDelay > 0 {
			w.pausa(w.cfg.PaceDelay)
		}
	}
	return podados, nil
}

// emChunks divide a fatia em pedaços de no máximo tamanho n.
func emChunks[T any](itens []T, n int) [][]T {
	if n <= 0 {
		n = 200
	}
	var out [][]T
	for len(itens) > n {
		out = append(out, itens[:n])
		itens = itens[n:]
	}
	if len(itens) > 0 {
		out = append(out, itens)
	}
	return out
}
