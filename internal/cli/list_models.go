/*
PURPOSE:
  Defines the 'list-models' subcommand.
  Helps debug connectivity and model discovery.

REQUIREMENTS:
  User-specified:
  - List available models.

  Implementation-discovered:
  - Useful validation step before full run.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.GetModels() (via Engine)

ERROR HANDLING:
  - Prints error if host incorrect.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  tempo-runner list-models --host http://ollama-1:11434

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/client.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/daryltucker/tempo-runner/internal/config"
	"github.com/daryltucker/tempo-runner/internal/engine"
	"github.com/spf13/cobra"
)

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List available models on the target host",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if hostOverride != "" {
			cfg.Host = hostOverride
		}

		e := engine.New(cfg)

		fmt.Printf("Querying %s...\n", cfg.Host)
		models, err := e.GetModels(cfg.Host)
		if err != nil {
			return err
		}
		for _, m := range models {
			fmt.Printf("- %s\n", m)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listModelsCmd)
	listModelsCmd.Flags().StringVar(&hostOverride, "host", "", "Ollama host URL")
}
