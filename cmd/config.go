package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/railtel/railgpt/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	fmt.Printf("Config file: %s", path)
	if !config.Exists() {
		fmt.Print(" (not created yet, run `railgpt config init`)")
	}
	fmt.Println()
	fmt.Printf("Server URL:  %s\n", cfg.ServerURL)
	fmt.Printf("Knowledge base: %s\n", cfg.DBName)
	if cfg.Login.Email != "" {
		fmt.Printf("Login email: %s\n", cfg.Login.Email)
	}
	if cfg.Login.Department != "" {
		fmt.Printf("Department:  %s\n", cfg.Login.Department)
	}
	fmt.Println("\nEnvironment overrides: RAILGPT_SERVER_URL, RAILGPT_DB_NAME")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	path, _ := config.GetConfigPath()
	fmt.Printf("Wrote %s\n", path)
	return nil
}
