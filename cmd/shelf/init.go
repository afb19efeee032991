package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/shelf"
	"github.com/sagarc03/shelf/config"
)

var initOutput string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file interactively",
	Long: `Prompt for the common server settings and write them to a YAML
config file that serve and history pick up from the current directory.

You will be prompted for:
  - Port and directory to serve
  - Upload filename policy
  - Upload journal backend and connection string`,
	Args: cobra.NoArgs,
	// A broken config file in the current directory must not stop init
	// from replacing it.
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		setupLogging(config.LogConfig{Level: "info", Format: "text"})
		return nil
	},
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "config.yaml", "path of the config file to write")

	rootCmd.AddCommand(initCmd)
}

// initAnswers are the values collected by the init prompts.
type initAnswers struct {
	Port           int
	Root           string
	FilenamePolicy string
	JournalType    string
	JournalDSN     string
}

// configFile mirrors the keys config.Load reads.
type configFile struct {
	Server struct {
		Port int    `yaml:"port"`
		Root string `yaml:"root"`
	} `yaml:"server"`
	Upload struct {
		FilenamePolicy string `yaml:"filename_policy"`
	} `yaml:"upload"`
	Journal struct {
		Type string `yaml:"type"`
		DSN  string `yaml:"dsn,omitempty"`
	} `yaml:"journal"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func newConfigFile(a initAnswers) configFile {
	var f configFile
	f.Server.Port = a.Port
	f.Server.Root = a.Root
	f.Upload.FilenamePolicy = a.FilenamePolicy
	f.Journal.Type = a.JournalType
	if a.JournalType != "none" {
		f.Journal.DSN = a.JournalDSN
	}
	f.Log.Level = "info"
	f.Log.Format = "text"
	return f
}

func writeConfigFile(path string, a initAnswers) error {
	data, err := yaml.Marshal(newConfigFile(a))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config holds no secrets by default
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func runInit(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(initOutput); err == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", initOutput),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check %s: %w", initOutput, err)
	}

	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: "8000",
		Validate: func(input string) error {
			port, err := strconv.Atoi(input)
			if err != nil || port < 1 || port > 65535 {
				return errors.New("port must be between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	port, _ := strconv.Atoi(portStr)

	rootPrompt := promptui.Prompt{
		Label:   "Directory to serve",
		Default: ".",
		Validate: func(input string) error {
			info, err := os.Stat(input)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return errors.New("not a directory")
			}
			return nil
		},
	}
	root, err := rootPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	policySelect := promptui.Select{
		Label: "Upload filename policy",
		Items: []string{string(shelf.PolicySanitize), string(shelf.PolicyReject)},
	}
	_, policy, err := policySelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	journalSelect := promptui.Select{
		Label: "Upload journal",
		Items: []string{"none", "sqlite", "postgres"},
	}
	_, journalType, err := journalSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	dsn := ""
	if journalType != "none" {
		dsnPrompt := promptui.Prompt{
			Label: "Journal connection string",
			Validate: func(input string) error {
				if input == "" {
					return errors.New("connection string is required")
				}
				return nil
			},
		}
		if journalType == "sqlite" {
			dsnPrompt.Default = "shelf.db"
		}
		if dsn, err = dsnPrompt.Run(); err != nil {
			return handlePromptError(err)
		}
	}

	answers := initAnswers{
		Port:           port,
		Root:           root,
		FilenamePolicy: policy,
		JournalType:    journalType,
		JournalDSN:     dsn,
	}

	if err := writeConfigFile(initOutput, answers); err != nil {
		return err
	}

	fmt.Printf("Config written to %s.\n", initOutput)
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
