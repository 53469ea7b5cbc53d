package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daniel/docinsight/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect and provision backend models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models the backend currently serves",
	RunE:  runModelsList,
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Ensure the configured model is available, fetching it if needed",
	RunE:  runModelsPull,
}

var (
	modelsProvider string
	modelsModel    string
	modelsHost     string
	modelsAPIKey   string
)

func init() {
	for _, cmd := range []*cobra.Command{modelsListCmd, modelsPullCmd} {
		cmd.Flags().StringVar(&modelsProvider, "provider", "ollama", "Model backend: ollama or gemini")
		cmd.Flags().StringVar(&modelsModel, "model", "llama3.2", "Model identifier")
		cmd.Flags().StringVar(&modelsHost, "host", "http://localhost:11434", "Ollama host")
		cmd.Flags().StringVar(&modelsAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	}

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsPullCmd)
	rootCmd.AddCommand(modelsCmd)
}

func modelsClient(ctx context.Context) (llm.Client, error) {
	apiKey := modelsAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	return llm.NewClient(ctx, &llm.Config{
		Provider: llm.Provider(modelsProvider),
		Model:    modelsModel,
		Endpoint: modelsHost,
		APIKey:   apiKey,
		Timeout:  10 * time.Minute, // pulls can be slow
	})
}

func runModelsList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	client, err := modelsClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	names, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runModelsPull(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	client, err := modelsClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.EnsureModel(ctx); err != nil {
		return fmt.Errorf("failed to provision model: %w", err)
	}
	fmt.Printf("Model %s is available.\n", client.Model())
	return nil
}
