// Command flowcore is a thin demo harness around the engine: it wires the
// illustrative split/count/sum pipeline in examples/tasks into a Workflow
// and drives it from the command line. Argument parsing and configuration
// loading here are demo conveniences, not part of the engine's contract.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowcore/flowcore/examples/tasks"
	"github.com/flowcore/flowcore/internal/flow"
	"github.com/flowcore/flowcore/internal/flow/workerpool"
	"github.com/flowcore/flowcore/internal/flowconfig"
	"github.com/flowcore/flowcore/internal/logger"
	"github.com/flowcore/flowcore/internal/task"
)

// workerFlag is the hidden flag a re-exec'd worker process is launched
// with, so main can tell a worker invocation apart from a normal CLI call.
const workerFlag = "--flowcore-worker"

var (
	cfgFile    string
	quiet      bool
	debug      bool
	logFormat  string
	maxWorkers int
	appLogger  logger.Logger
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == workerFlag {
		runWorker()
		return
	}

	root := &cobra.Command{
		Use:   "flowcore",
		Short: "Run and manage flowcore task pipelines",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts := []logger.Option{logger.WithFormat(logFormat)}
			if debug {
				opts = append(opts, logger.WithDebug())
			}
			if quiet {
				opts = append(opts, logger.WithQuiet())
			}
			appLogger = logger.NewLogger(opts...)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML configuration file")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress console logging")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format: text or json")
	root.PersistentFlags().IntVar(&maxWorkers, "max-parallelism", 0, "maximum concurrent tasks (0: the config file's max_parallelism, else one per CPU)")

	root.AddCommand(runCmd())
	root.AddCommand(cleanupCmd())
	root.AddCommand(collectInputsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var inputPath, outputDir, scriptPath string
	var splits int
	var processIsolated bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the example split/count/sum pipeline against an input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			engineCfg, taskCfg, err := flowconfig.Load(cfgFile)
			if err != nil {
				return err
			}
			if maxWorkers > 0 {
				engineCfg.MaxParallelism = maxWorkers
			}
			if taskCfg == nil {
				taskCfg = map[string]any{}
			}
			if scriptPath != "" {
				taskCfg["word_count_script_path"] = scriptPath
			}
			if outputDir != "" {
				taskCfg["output_dir"] = outputDir
			}

			opts := []flow.Option{flow.WithLogger(appLogger)}
			if processIsolated {
				self, err := os.Executable()
				if err != nil {
					return fmt.Errorf("resolve own executable path: %w", err)
				}
				opts = append(opts, flow.WithRunner(workerpool.NewProcessRunner(self, workerFlag, engineCfg.MaxParallelism, appLogger)))
			}

			w := flow.New(engineCfg.RootDir, engineCfg.MaxParallelism, opts...)
			w.SetConfig(taskCfg)

			splitFile := w.Task("split_file", tasks.SplitFile)
			countList := w.Task("run_word_count_on_list", tasks.RunWordCountOnList)
			sumCounts := w.Task("sum_counts", tasks.SumCounts)

			target := sumCounts(countList(splitFile(inputPath, splits)), "total.txt")

			result, err := w.Run(cmd.Context(), target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "result: %v\n", result)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "input file to split and count")
	cmd.Flags().IntVar(&splits, "splits", 4, "number of parts to split the input into")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory to write the final total into")
	cmd.Flags().StringVar(&scriptPath, "word-count-script", "", "path to the word-counting shell script")
	cmd.Flags().BoolVar(&processIsolated, "process-isolated", false, "run each task in a re-exec'd worker process")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func collectInputsCmd() *cobra.Command {
	var root, pattern string

	cmd := &cobra.Command{
		Use:   "collect-inputs",
		Short: "List files under a root directory matching a glob pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := flow.New(os.TempDir(), 1, flow.WithLogger(appLogger))
			collect := w.Task("collect_inputs", tasks.CollectInputs)

			result, err := w.Run(cmd.Context(), collect(pattern, root))
			if err != nil {
				return err
			}
			for _, p := range result.([]any) {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "root directory to search from")
	cmd.Flags().StringVar(&pattern, "pattern", "**/*", "doublestar glob pattern, relative to root")

	return cmd
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove the engine's working directory tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			engineCfg, _, err := flowconfig.Load(cfgFile)
			if err != nil {
				return err
			}
			w := flow.New(engineCfg.RootDir, 1, flow.WithLogger(appLogger))
			return w.Cleanup(cmd.Context())
		},
	}
}

// runWorker is the worker-process entry point. It is invoked when this
// same binary is re-exec'd by a workerpool.ProcessRunner: it decodes one
// task invocation from stdin, executes it against a registry wired with
// the same task set as the driver process, and writes the result to
// stdout, then exits.
func runWorker() {
	reg := task.NewRegistry(nil)
	reg.Task("collect_inputs", tasks.CollectInputs)
	reg.Task("split_file", tasks.SplitFile)
	reg.Task("run_word_count_on_list", tasks.RunWordCountOnList)
	reg.Task("sum_counts", tasks.SumCounts)

	if err := workerpool.Serve(reg, nil, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
