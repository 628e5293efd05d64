package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/causimlabs/causim/internal/canon"
	"github.com/causimlabs/causim/internal/cldfile"
	"github.com/causimlabs/causim/internal/engine"
	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/nodes"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Strategy      string
	Iterations    int
	Threshold     float64
	MaxIterations int
	StateFile     string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <diagram-dir>",
		Short: "Execute a diagram and print the result",
		Long: `Execute a causal-loop diagram loaded from CUE files.

The strategy defaults to the diagram document's own strategy block, falling
back to a single pass. Flags override the document.

Example:
  causim run ./diagrams/market
  causim run ./diagrams/market --strategy converge --threshold 0.001
  causim run ./diagrams/market --strategy multi --iterations 10 --state warm.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagram(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "execution strategy (single|multi|converge); overrides the document")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 0, "iteration count for --strategy multi")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "convergence threshold for --strategy converge")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "iteration cap for --strategy converge")
	cmd.Flags().StringVar(&opts.StateFile, "state", "", "YAML file with per-node initial state overrides")

	return cmd
}

func runDiagram(opts *RunOptions, diagramDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrs := cldfile.Load(diagramDir, cldfile.LoadModeFailFast)
	if len(loadErrs) > 0 {
		return WrapExitError(ExitCommandError, "loading diagram", loadErrs[0])
	}
	formatter.VerboseLog("loaded %d CUE file(s) from %s", loadResult.FileCount, diagramDir)

	g, initial, err := cldfile.Compile(loadResult.Document, nodes.Default())
	if err != nil {
		return WrapExitError(ExitFailure, "compiling diagram", err)
	}

	decl := loadResult.Document.Strategy
	if opts.Strategy != "" {
		decl = &cldfile.StrategyDecl{
			Kind:          opts.Strategy,
			Iterations:    opts.Iterations,
			Threshold:     opts.Threshold,
			MaxIterations: opts.MaxIterations,
		}
	}
	strat, err := cldfile.BuildStrategy(decl)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring strategy", err)
	}

	if opts.StateFile != "" {
		initial, err = loadStateFile(opts.StateFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading state file", err)
		}
	}

	var engineOpts []engine.Option
	if opts.Verbose {
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		engineOpts = append(engineOpts, engine.WithLogger(slog.New(handler)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(strat, engineOpts...)
	result, err := eng.Execute(ctx, g, initial)
	if err != nil {
		return WrapExitError(ExitFailure, "executing diagram", err)
	}

	return printResult(formatter, result)
}

// loadStateFile reads per-node initial state from a YAML document shaped
// like the diagram's state block.
func loadStateFile(path string) (map[graph.NodeID]graph.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var decl cldfile.StateDecl
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, err
	}
	return decl.ToInitialState(), nil
}

func printResult(f *OutputFormatter, result *engine.Result) error {
	if f.Format == "json" {
		data, err := canon.Marshal(resultToMap(result))
		if err != nil {
			return WrapExitError(ExitFailure, "encoding result", err)
		}
		f.Printf("%s\n", data)
		return nil
	}

	f.Printf("run %s finished after %d iteration(s)\n", result.RunID, result.Iterations)

	ids := make([]string, 0, len(result.Outputs))
	for id := range result.Outputs {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	for _, id := range ids {
		f.Printf("  %s:\n", id)
		out := result.Outputs[graph.NodeID(id)]
		for _, field := range sortedKeys(out) {
			f.Printf("    out.%s = %v\n", field, out[field])
		}
		if state := result.State[graph.NodeID(id)]; len(state) > 0 {
			for _, field := range sortedKeys(state) {
				f.Printf("    state.%s = %v\n", field, state[field])
			}
		}
	}
	return nil
}

func resultToMap(result *engine.Result) map[string]any {
	outputs := make(map[string]any, len(result.Outputs))
	for id, record := range result.Outputs {
		outputs[string(id)] = recordToMap(record)
	}
	state := make(map[string]any, len(result.State))
	for id, record := range result.State {
		state[string(id)] = recordToMap(record)
	}
	return map[string]any{
		"iterations": result.Iterations,
		"outputs":    outputs,
		"run_id":     result.RunID,
		"state":      state,
	}
}

func recordToMap(r graph.Record) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func sortedKeys(r graph.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
