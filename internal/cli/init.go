package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnipulse/omnipulse/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Omnipulse configuration file",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath()
	}

	if config.Exists(path) {
		reader := bufio.NewReader(os.Stdin)
		overwrite, err := promptYesNo(reader, fmt.Sprintf("Config already exists at %s. Overwrite? [y/N]: ", path))
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Keeping existing configuration.")
			return nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	cfg := config.DefaultConfig()

	fmt.Printf("%s⚙  Omnipulse Setup%s\n", HeaderStyle, Reset)
	fmt.Printf("%s=================%s\n\n", DimStyle, Reset)

	provider, err := promptOptional(reader, "Database provider (mongodb/sqlite) [mongodb]: ", "mongodb")
	if err != nil {
		return err
	}
	if provider != "mongodb" && provider != "sqlite" {
		return fmt.Errorf("unsupported database provider: %s", provider)
	}
	cfg.Database.Provider = provider

	defaultURI := "mongodb://localhost:27017"
	if provider == "sqlite" {
		defaultURI = "~/.omnipulse/omnipulse.db"
	}
	uri, err := promptOptional(reader, fmt.Sprintf("Database URI [%s]: ", defaultURI), defaultURI)
	if err != nil {
		return err
	}
	cfg.Database.URI = uri

	port, err := promptOptional(reader, "API port [8787]: ", "8787")
	if err != nil {
		return err
	}
	cfg.Server.Port = port

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\n%s✅ Configuration written to %s%s\n", SuccessStyle, path, Reset)
	return nil
}
