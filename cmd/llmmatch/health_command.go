package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"llmmatch/internal/services/llm"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Verify the API key and model are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				Referer:        cfg.LLM.Referer,
				Title:          cfg.LLM.Title,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})
			if err := client.HealthCheck(cmd.Context()); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s reachable with model %s\n", cfg.LLM.BaseURL, client.Model())
			return nil
		},
	}
}
