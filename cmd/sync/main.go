// sync reconcilia um snapshot JSON do fornecedor (clientes, pedidos e
// produtos comprados) contra as coleções persistidas no PostgreSQL.
//
// Uso: sync [flags] <arquivo.json>
// A configuração de banco vem de env vars (DATABASE_URL ou DB_HOST etc.);
// as flags sobrepõem as opções de sincronização lidas do ambiente.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appsync "github.com/uniquessatacado/fornecedoruss-json-cache/internal/application/sync"
	"github.com/uniquessatacado/fornecedoruss-json-cache/internal/infrastructure/postgres"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/config"
	"github.com/uniquessatacado/fornecedoruss-json-cache/pkg/logger"
)

type syncFlags struct {
	mode          string
	dedup         string
	chunkSize     int
	pruneClientes bool
	prunePedidos  bool
	pruneProdutos bool
	verbose       bool
}

func main() {
	if err := newSyncCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "erro: %v\n", err)
		os.Exit(1)
	}
}

func newSyncCommand() *cobra.Command {
	flags := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync <arquivo.json>",
		Short: "Sincroniza um snapshot JSON do fornecedor com o banco",
		Long: `Sincroniza um snapshot JSON denormalizado do fornecedor com as coleções
clientes, pedidos e clientes_produtos.

O documento pode ter o array de clientes na raiz ou sob uma propriedade
reconhecida; pedidos e produtos podem vir embutidos por cliente ou em arrays
próprios no topo. Re-executar o mesmo arquivo é seguro: execuções são
idempotentes por snapshot.

Exemplo:
  sync --mode delta --dedup keep-most-recent ./snapshot.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.mode, "mode", "",
		"modo de quantidade: delta (acumula) ou absolute (substitui)")
	cmd.Flags().StringVar(&flags.dedup, "dedup", "",
		"política de deduplicação: keep-first ou keep-most-recent")
	cmd.Flags().IntVar(&flags.chunkSize, "chunk-size", 0, "tamanho dos lotes de escrita")
	cmd.Flags().BoolVar(&flags.pruneClientes, "prune-clientes", false,
		"remove clientes ausentes do snapshot (destrutivo)")
	cmd.Flags().BoolVar(&flags.prunePedidos, "prune-pedidos", false,
		"remove pedidos ausentes do snapshot (destrutivo)")
	cmd.Flags().BoolVar(&flags.pruneProdutos, "prune-produtos", false,
		"remove linhas de produto ausentes do snapshot (destrutivo)")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "log em nível debug")

	return cmd
}

func run(ctx context.Context, flags *syncFlags, arquivo string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("carregar configuração: %w", err)
	}
	aplicaFlags(&cfg.Sync, flags)

	nivel := "info"
	if flags.verbose {
		nivel = "debug"
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: nivel})

	raw, err := os.ReadFile(arquivo)
	if err != nil {
		return fmt.Errorf("ler arquivo de entrada: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexão ao PostgreSQL: %w", err)
	}
	defer pool.Close()

	engine, err := appsync.NewEngine(postgres.NewRowStore(pool), cfg.Sync, log)
	if err != nil {
		return err
	}

	report, err := engine.Run(ctx, raw)
	if report != nil {
		fmt.Print(report.Resumo())
	}
	return err
}

func aplicaFlags(s *config.SyncConfig, flags *syncFlags) {
	if flags.mode != "" {
		s.QuantityMode = flags.mode
	}
	if flags.dedup != "" {
		s.DedupPolicy = flags.dedup
	}
	if flags.chunkSize > 0 {
		s.ChunkSize = flags.chunkSize
	}
	if flags.pruneClientes {
		s.PruneOrphans[config.TableClientes] = true
	}
	if flags.prunePedidos {
		s.PruneOrphans[config.TablePedidos] = true
	}
	if flags.pruneProdutos {
		s.PruneOrphans[config.TableProdutos] = true
	}
}
