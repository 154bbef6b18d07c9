package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/zacharybinks/RAG/internal/config"
	"github.com/zacharybinks/RAG/internal/draft"
	"github.com/zacharybinks/RAG/internal/ingest"
	"github.com/zacharybinks/RAG/internal/instruction"
	"github.com/zacharybinks/RAG/internal/llm"
	"github.com/zacharybinks/RAG/internal/rerank"
	"github.com/zacharybinks/RAG/internal/retrieval"
	"github.com/zacharybinks/RAG/internal/store"
	"github.com/zacharybinks/RAG/internal/vectorstore"
)

var (
	rootCmd = &cobra.Command{
		Use:   "propdraft",
		Short: "Retrieval-grounded proposal drafting for US Government RFPs",
	}
	configPath string
	useKB      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exampleCmd)
	rootCmd.AddCommand(instructCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(queryCmd)

	ingestCmd.Flags().BoolVar(&intoKB, "kb", false, "Index into the shared knowledge base instead of a project")
	instructCmd.Flags().StringVar(&sectionKey, "key", "", "Canonical section key (derived from the title when empty)")
	instructCmd.Flags().BoolVar(&useKB, "use-kb", true, "Include knowledge-base context")
	draftCmd.Flags().StringVar(&instructionPath, "instruction", "", "Path to an instruction JSON file (generated when empty)")
	draftCmd.Flags().StringVar(&sectionTitle, "title", "", "Section title when generating the instruction")
	draftCmd.Flags().StringVar(&sectionKey, "key", "", "Canonical section key")
	draftCmd.Flags().BoolVar(&useKB, "use-kb", true, "Include knowledge-base context")
	draftCmd.Flags().StringSliceVar(&exampleIDs, "examples", nil, "Restrict pattern mining to these example ids")
	draftCmd.Flags().StringVar(&clientType, "client-type", "", "Filter examples by client type")
	draftCmd.Flags().StringVar(&domainFilter, "domain", "", "Filter examples by domain")
	queryCmd.Flags().BoolVar(&useKB, "use-kb", true, "Include knowledge-base context")
	exampleCmd.Flags().StringVar(&exampleTitle, "title", "", "Example title (file name when empty)")
	exampleCmd.Flags().StringVar(&clientType, "client-type", "", "Client type tag")
	exampleCmd.Flags().StringVar(&domainFilter, "domain", "", "Domain tag")
	exampleCmd.Flags().StringVar(&contractVehicle, "contract-vehicle", "", "Contract vehicle tag")
	exampleCmd.Flags().StringVar(&complexityTier, "complexity-tier", "", "Complexity tier tag")
	projectCmd.Flags().StringVar(&modelName, "model", "", "Chat model for the project")
	projectCmd.Flags().StringVar(&temperature, "temperature", "", "Sampling temperature")
	projectCmd.Flags().StringVar(&contextSize, "context-size", "", "Context size: low | medium | high")
	projectCmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "Project system prompt for the query path")
}

var (
	intoKB          bool
	sectionKey      string
	sectionTitle    string
	instructionPath string
	exampleIDs      []string
	exampleTitle    string
	clientType      string
	domainFilter    string
	contractVehicle string
	complexityTier  string
	modelName       string
	temperature     string
	contextSize     string
	systemPrompt    string
)

// app bundles every wired component behind one init path.
type app struct {
	cfg       *config.Config
	store     *store.SQLiteStore
	vectors   *vectorstore.MemoryStore
	embedder  llm.Embedder
	pool      *llm.ClientPool
	resolver  *llm.Resolver
	retriever *retrieval.Retriever
	ingestor  *ingest.Ingestor
	generator *instruction.Generator
	drafter   *draft.Drafter
}

func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewEmbedder(ctx, llm.EmbedderOptions{
		Provider:  cfg.AI.Provider,
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.EmbedModel,
		Dimension: cfg.AI.EmbedDimension,
		BaseURL:   cfg.AI.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	chat, err := llm.NewChatModel(ctx, llm.ChatOptions{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	vectors := vectorstore.NewMemoryStore(embedder)
	items, err := db.LoadVectors(ctx)
	if err != nil {
		return nil, err
	}
	vectors.Restore(items)

	var reranker rerank.Reranker = rerank.Passthrough{}
	if cfg.Rerank.URL != "" {
		reranker = rerank.NewCrossEncoderClient(cfg.Rerank.URL, cfg.Rerank.Model)
	}

	pool := llm.NewClientPool(chat, 0)
	resolver := llm.NewResolver(db, llm.Defaults{
		Model:       cfg.AI.ChatModel,
		Temperature: cfg.AI.Temperature,
	})
	retriever := retrieval.NewRetriever(vectors, reranker, resolver, pool, retrieval.ShareRule{
		Floor:   cfg.Retrieval.MinProjectFloor,
		Divisor: cfg.Retrieval.MinProjectDivisor,
	})

	return &app{
		cfg:       cfg,
		store:     db,
		vectors:   vectors,
		embedder:  embedder,
		pool:      pool,
		resolver:  resolver,
		retriever: retriever,
		ingestor:  ingest.NewIngestor(vectors),
		generator: instruction.NewGenerator(resolver, pool, db),
		drafter:   draft.NewDrafter(retriever, resolver, pool, embedder, cfg.Retrieval.SimilarityFlagAt),
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.store.SaveVectors(ctx, a.vectors.Snapshot()); err != nil {
		log.Printf("failed to persist vector index: %v", err)
	}
	a.store.Close()
}

var projectCmd = &cobra.Command{
	Use:   "project <project-id>",
	Short: "Create or update a project's model settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		return a.store.UpsertProject(ctx, args[0], llm.ProjectSettings{
			ModelName:    modelName,
			Temperature:  temperature,
			ContextSize:  contextSize,
			SystemPrompt: systemPrompt,
		})
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <project-id> <file>...",
	Short: "Chunk and index documents into a project or the knowledge base",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		for _, path := range args[1:] {
			var n int
			if intoKB {
				n, err = a.ingestor.IngestKnowledgeBaseDocument(ctx, path)
			} else {
				n, err = a.ingestor.IngestProjectDocument(ctx, args[0], path)
			}
			if err != nil {
				return err
			}
			fmt.Printf("indexed %s (%d chunks)\n", path, n)
		}
		return nil
	},
}

var exampleCmd = &cobra.Command{
	Use:   "example <file>",
	Short: "Ingest a past proposal into the example library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		id, err := a.ingestor.IngestExample(ctx, a.store, args[0], ingest.ExampleMeta{
			Title:           exampleTitle,
			ClientType:      clientType,
			Domain:          domainFilter,
			ContractVehicle: contractVehicle,
			ComplexityTier:  complexityTier,
		})
		if err != nil {
			return err
		}
		fmt.Printf("example %s ingested\n", id)
		return nil
	},
}

var instructCmd = &cobra.Command{
	Use:   "instruct <project-id> <section-title>",
	Short: "Generate a section instruction sheet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		projectID, title := args[0], args[1]
		snippets, _ := a.retriever.LightContext(ctx, projectID, useKB, title, 0)
		inst, err := a.generator.Build(ctx, projectID, title, sectionKey, snippets)
		if err != nil {
			return err
		}
		return printJSON(inst)
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft <project-id>",
	Short: "Draft a section from an instruction sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		projectID := args[0]
		var inst *instruction.SectionInstruction
		if instructionPath != "" {
			data, err := os.ReadFile(instructionPath)
			if err != nil {
				return err
			}
			inst, err = instruction.ParseAndValidate(string(data))
			if err != nil {
				return err
			}
		} else {
			if sectionTitle == "" {
				return fmt.Errorf("either --instruction or --title is required")
			}
			snippets, _ := a.retriever.LightContext(ctx, projectID, useKB, sectionTitle, 0)
			inst, err = a.generator.Build(ctx, projectID, sectionTitle, sectionKey, snippets)
			if err != nil {
				return err
			}
		}

		filters := map[string]string{
			"client_type": clientType,
			"domain":      domainFilter,
		}
		out, err := a.drafter.DraftSection(ctx, projectID, inst, useKB, exampleIDs, filters)
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <project-id> <question>",
	Short: "Ask a long-form question against a project's documents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		answer, err := a.drafter.AnswerQuery(ctx, a.store, args[0], args[1], useKB)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
