/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full measurement suite.

REQUIREMENTS:
  User-specified:
  - Run the trials.
  - Specific flags for overrides (-v, -m, -p, -r).

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - Echo the effective configuration before running.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config

ERROR HANDLING:
  - Returns error if config load fails or engine run fails.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Echo -> Engine.Run.

USAGE:
  tempo-runner run -r 2 --verbose
  tempo-runner run -m qwen2.5:32b -p "What color is the sky" -p "Write a report on the financials of Microsoft"

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"github.com/daryltucker/tempo-runner/internal/config"
	"github.com/daryltucker/tempo-runner/internal/engine"
	"github.com/daryltucker/tempo-runner/internal/output"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

var (
	verboseOverride bool
	modelsOverride  []string
	promptsOverride []string
	repeatsOverride int
	hostOverride    string
	outputOverride  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the inference speed measurement",
	Long: `Executes the measurement suite against an Ollama server.
For each model, repeated N times, for each prompt, a single-turn chat
request is issued and the server-reported timing counters are converted
into tokens-per-second metrics. Per-model results are reported as an
indexed row dump plus a narrow throughput view.

Trials run strictly sequentially: all repeats of all prompts for one
model complete before the next model begins. A failed trial aborts the
run.`,
	Example: `  # Single trial with defaults (llama3.1:latest, one prompt)
  tempo-runner run

  # Two repeats with live streaming output
  tempo-runner run --verbose -r 2

  # Specific model and prompts
  tempo-runner run -m qwen2.5:32b -p "What color is the sky" -p "Write a report on the financials of Microsoft"

  # Export the rows alongside the report
  tempo-runner run -r 5 -o ./results`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = verboseOverride
		}
		if len(modelsOverride) > 0 {
			cfg.Models = modelsOverride
		}
		if len(promptsOverride) > 0 {
			cfg.Prompts = promptsOverride
		}
		if cmd.Flags().Changed("repeats") {
			cfg.Repeats = repeatsOverride
		}
		if hostOverride != "" {
			cfg.Host = hostOverride
		}
		if outputOverride != "" {
			cfg.OutputDir = outputOverride
		}

		// 3. Echo effective configuration
		output.Logger.Info("Configuration",
			"verbose", cfg.Verbose,
			"models", cfg.Models,
			"prompts", cfg.Prompts,
			"repeats", cfg.Repeats,
			"host", cfg.Host,
		)
		if cfg.Verbose {
			pp.Println(cfg)
		}

		// 4. Execution
		return engine.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&verboseOverride, "verbose", "v", false, "Stream responses and increase output verbosity")
	runCmd.Flags().StringSliceVarP(&modelsOverride, "models", "m", nil, "List of models to evaluate")
	runCmd.Flags().StringArrayVarP(&promptsOverride, "prompts", "p", nil, "List of prompts to evaluate (repeat the flag per prompt)")
	runCmd.Flags().IntVarP(&repeatsOverride, "repeats", "r", 1, "Number of times each prompt is repeated")
	runCmd.Flags().StringVar(&hostOverride, "host", "", "Ollama host URL")
	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Directory for CSV/JSON export of the run's rows (disabled when empty)")
}
