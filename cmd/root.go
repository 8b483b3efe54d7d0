package cmd

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/railtel/railgpt/internal/config"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Override the RAG service URL")
	rootCmd.PersistentFlags().StringVar(&dbName, "db", "", "Override the knowledge base name")
	rootCmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	rootCmd.PersistentFlags().StringVar(&memProfile, "memprofile", "", "Write memory profile to file")
}

var rootCmd = &cobra.Command{
	Use:   "railgpt",
	Short: "Terminal client for the Rail GPT assistant",
	Long: `railgpt is a terminal front-end for the Rail GPT retrieval-augmented
assistant. Answers stream live into the transcript and cite the documents
they were grounded on.

Examples:
  railgpt chat                          # interactive chat
  railgpt chat --conversation <id>      # resume a conversation
  railgpt conversations show <id>       # print a transcript
  railgpt documents                     # admin document manager

  railgpt config                        # view configuration`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startProfiling()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return stopProfiling()
	},
}

var serverURL string
var dbName string
var cpuProfile string
var memProfile string
var cpuProfileFile *os.File

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if dbName != "" {
		cfg.DBName = dbName
	}
	return cfg, nil
}

func startProfiling() error {
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return err
		}
		cpuProfileFile = f
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return err
		}
	}
	return nil
}

func stopProfiling() error {
	if cpuProfileFile != nil {
		pprof.StopCPUProfile()
		cpuProfileFile.Close()
	}
	if memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
