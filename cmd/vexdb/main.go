package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vexdb-io/vexdb/pkg/core"
	"github.com/vexdb-io/vexdb/pkg/vexdb"
)

var (
	dbPath     string
	backend    string
	configFile string
	verbose    bool
)

// fileConfig is the YAML config file shape
type fileConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

var rootCmd = &cobra.Command{
	Use:   "vexdb",
	Short: "CLI tool for vector storage",
	Long:  `A command-line interface for managing vector indexes and documents.`,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage indexes",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dimension, _ := cmd.Flags().GetInt("dimension")
		metricName, _ := cmd.Flags().GetString("metric")

		metric, err := core.ParseMetric(metricName)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		config := core.NewIndexConfig(args[0], dimension).WithMetric(metric)
		if err := db.CreateIndex(context.Background(), config); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}

		fmt.Printf("Index '%s' created (dimension=%d, metric=%s)\n", args[0], dimension, metric)
		return nil
	},
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		names, err := db.ListIndexes(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list indexes: %w", err)
		}

		if len(names) == 0 {
			fmt.Println("No indexes found")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var indexDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show index details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		info, err := db.DescribeIndex(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}

		fmt.Printf("Name:       %s\n", info.Name)
		fmt.Printf("Dimension:  %d\n", info.Dimension)
		fmt.Printf("Metric:     %s\n", info.Metric)
		fmt.Printf("Vectors:    %d\n", info.VectorCount)
		fmt.Printf("Size:       %d bytes\n", info.SizeBytes)
		fmt.Printf("Created:    %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated:    %s\n", info.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an index and all of its documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteIndex(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete index: %w", err)
		}
		fmt.Printf("Index '%s' deleted\n", args[0])
		return nil
	},
}

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage documents",
}

var docAddCmd = &cobra.Command{
	Use:   "add <index> <id>",
	Short: "Add or replace a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, _ := cmd.Flags().GetString("content")
		vectorStr, _ := cmd.Flags().GetString("vector")
		metadataStr, _ := cmd.Flags().GetString("metadata")

		doc := core.NewDocument(args[1], content)
		if vectorStr != "" {
			vector, err := parseVector(vectorStr)
			if err != nil {
				return err
			}
			doc = doc.WithEmbedding(vector)
		}
		if metadataStr != "" {
			var metadata core.Metadata
			if err := json.Unmarshal([]byte(metadataStr), &metadata); err != nil {
				return fmt.Errorf("invalid metadata JSON: %w", err)
			}
			doc = doc.WithAllMetadata(metadata)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if _, err := db.UpsertDocuments(context.Background(), args[0], []core.Document{doc}); err != nil {
			return fmt.Errorf("failed to add document: %w", err)
		}
		fmt.Printf("Document '%s' added to index '%s'\n", args[1], args[0])
		return nil
	},
}

var docGetCmd = &cobra.Command{
	Use:   "get <index> <id>...",
	Short: "Fetch documents by id",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		includeVectors, _ := cmd.Flags().GetBool("vectors")

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		docs, err := db.GetDocuments(context.Background(), args[0], args[1:], includeVectors)
		if err != nil {
			return fmt.Errorf("failed to get documents: %w", err)
		}
		if len(docs) == 0 {
			fmt.Println("No documents found")
			return nil
		}

		for _, doc := range docs {
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		}
		return nil
	},
}

var docDeleteCmd = &cobra.Command{
	Use:   "delete <index> <id>...",
	Short: "Delete documents by id",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteDocuments(context.Background(), args[0], args[1:]); err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
		fmt.Printf("Deleted %d document(s) from index '%s'\n", len(args)-1, args[0])
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <index>",
	Short: "Run a similarity search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vectorStr, _ := cmd.Flags().GetString("vector")
		filterStr, _ := cmd.Flags().GetString("filter")
		topK, _ := cmd.Flags().GetInt("top-k")
		includeVectors, _ := cmd.Flags().GetBool("vectors")

		if vectorStr == "" {
			return fmt.Errorf("--vector is required")
		}
		vector, err := parseVector(vectorStr)
		if err != nil {
			return err
		}

		request := core.NewSearchRequest(args[0], vector).
			WithTopK(topK).
			WithIncludeVectors(includeVectors)
		if filterStr != "" {
			filter, err := core.ParseFilter(filterStr)
			if err != nil {
				return fmt.Errorf("invalid filter: %w", err)
			}
			request = request.WithFilter(filter)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		resp, err := db.Search(context.Background(), request)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if len(resp.Results) == 0 {
			fmt.Println("No results")
			return nil
		}
		for i, hit := range resp.Results {
			fmt.Printf("%d. %s (score: %.4f)\n", i+1, hit.ID, hit.Score)
			if hit.Content != "" {
				fmt.Printf("   %s\n", hit.Content)
			}
			if len(hit.Metadata) > 0 {
				data, _ := json.Marshal(hit.Metadata)
				fmt.Printf("   metadata: %s\n", data)
			}
		}
		if verbose {
			fmt.Printf("\n%d result(s) in %s\n", len(resp.Results), resp.ExecutionTime)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health and capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		info := db.BackendInfo()
		fmt.Printf("Backend:  %s %s\n", info.Name, info.Version)
		if len(info.Features) > 0 {
			fmt.Printf("Features: %s\n", strings.Join(info.Features, ", "))
		}

		if err := db.HealthCheck(context.Background()); err != nil {
			fmt.Printf("Health:   unhealthy (%v)\n", err)
			return err
		}
		fmt.Println("Health:   ok")
		return nil
	},
}

// openDB resolves the backend from flags and the optional config file
func openDB() (*vexdb.DB, error) {
	config := vexdb.DefaultConfig()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("invalid config file: %w", err)
		}
		if fc.Backend != "" {
			config.Backend = fc.Backend
		}
		if fc.Path != "" {
			config.Path = fc.Path
		}
	}

	// Flags override the config file
	if backend != "" {
		config.Backend = backend
	}
	if dbPath != "" {
		config.Backend = vexdb.BackendSQLite
		config.Path = dbPath
	}
	if verbose {
		config.Logger = core.NewStdLogger(core.LevelDebug)
	}

	return vexdb.Open(context.Background(), config)
}

// parseVector parses a comma-separated float list
func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	vector := make([]float32, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector format: %w", err)
		}
		vector = append(vector, float32(val))
	}
	return vector, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file path")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend (memory or sqlite)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	indexCreateCmd.Flags().Int("dimension", 0, "vector dimension (required)")
	indexCreateCmd.Flags().String("metric", "cosine", "similarity metric (cosine, euclidean, dotproduct)")
	_ = indexCreateCmd.MarkFlagRequired("dimension")

	docAddCmd.Flags().String("content", "", "document content")
	docAddCmd.Flags().String("vector", "", "comma-separated embedding values")
	docAddCmd.Flags().String("metadata", "", "metadata as JSON object")

	docGetCmd.Flags().Bool("vectors", false, "include embeddings in output")

	searchCmd.Flags().String("vector", "", "comma-separated query vector")
	searchCmd.Flags().String("filter", "", "metadata filter expression")
	searchCmd.Flags().Int("top-k", 10, "number of results")
	searchCmd.Flags().Bool("vectors", false, "include embeddings in output")

	indexCmd.AddCommand(indexCreateCmd, indexListCmd, indexDescribeCmd, indexDeleteCmd)
	docCmd.AddCommand(docAddCmd, docGetCmd, docDeleteCmd)
	rootCmd.AddCommand(indexCmd, docCmd, searchCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
