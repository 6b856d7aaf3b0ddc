// Command indexer 将 FAQ 问答对写入向量索引（一次性脚本，不参与请求处理）
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appRAG "github.com/pyassist/backend/internal/application/rag"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/embedding"
	applog "github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/pyassist/backend/internal/infrastructure/vector"
)

var _ appRAG.DimensionProber = (*embedding.Client)(nil)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults to $PYASSIST_CONFIG)")
	input := flag.String("input", "faq_pairs.json", "FAQ pairs JSON file")
	keep := flag.Bool("keep", false, "keep the existing index instead of recreating it")
	batch := flag.Int("batch", appRAG.DefaultIngestBatchSize, "points per upsert batch")
	flag.Parse()

	applog.Init(nil)
	logger := applog.NewModuleLogger("indexer", "main")

	if err := run(*configPath, *input, !*keep, *batch); err != nil {
		logger.Error("Indexing failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, input string, recreate bool, batch int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	pairs, err := readPairs(input)
	if err != nil {
		return err
	}

	embedder, err := embedding.ProvideClient(&cfg.Embedding)
	if err != nil {
		return err
	}
	index, cleanup, err := vector.ProvideIndex(&cfg.Index)
	if err != nil {
		return err
	}
	defer cleanup()

	ingestor := appRAG.NewIngestor(embedder, index, appRAG.MetadataKeys{
		Question: cfg.Index.QuestionKey,
		Answer:   cfg.Index.AnswerKey,
	})
	_, err = ingestor.Ingest(ctx, pairs, appRAG.IngestOptions{
		Namespace: cfg.Index.Namespace,
		Dimension: cfg.Embedding.Dimension,
		Recreate:  recreate,
		BatchSize: batch,
	})
	return err
}

func readPairs(path string) ([]domainRAG.FAQPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var pairs []domainRAG.FAQPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return pairs, nil
}
