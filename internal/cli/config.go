package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dubber/internal/config"
)

// validConfigKeys lists all supported configuration keys.
var validConfigKeys = []string{
	config.KeyOutputDir,
	config.KeyWorkDir,
	config.KeyVoice,
}

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-dubber/config.
Settings can also be overridden via environment variables.

Supported settings:
  output-dir    Default directory for dubbed videos (env: DUBBER_OUTPUT_DIR)
  work-dir      Directory for intermediate audio (env: DUBBER_WORK_DIR)
  voice         Default synthesis voice`,
		Example: `  dubber config set output-dir ~/Videos/dubbed
  dubber config get output-dir
  dubber config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Supported keys:
  output-dir    Default directory for dubbed videos
  work-dir      Directory for intermediate audio
  voice         Default synthesis voice

Directories are created if they don't exist.`,
		Example: `  dubber config set output-dir ~/Videos/dubbed
  dubber config set voice onyx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return runConfigSet(env, key, value)
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  dubber config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  dubber config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// envVarFor maps a config key to its environment variable fallback, if any.
func envVarFor(key string) string {
	switch key {
	case config.KeyOutputDir:
		return config.EnvOutputDir
	case config.KeyWorkDir:
		return config.EnvWorkDir
	}
	return ""
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	// Validate key.
	if !isValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, validConfigKeys)
	}

	// Key-specific validation.
	switch key {
	case config.KeyOutputDir, config.KeyWorkDir:
		// Expand ~ and validate directory.
		expanded := config.ExpandPath(value)
		if err := config.ValidOutputDir(expanded); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		// Store the expanded path for consistency.
		value = expanded
	}

	// Save to config file.
	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	// Validate key.
	if !isValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, validConfigKeys)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Check environment variable fallback.
	if value == "" {
		if envKey := envVarFor(key); envKey != "" {
			value = env.Getenv(envKey)
		}
	}

	if value != "" {
		fmt.Println(value)
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	// Add environment variable values for completeness.
	for _, key := range validConfigKeys {
		if _, ok := data[key]; ok {
			continue
		}
		if envKey := envVarFor(key); envKey != "" {
			if envVal := env.Getenv(envKey); envVal != "" {
				data[key] = envVal + " (from env)"
			}
		}
	}

	if len(data) == 0 {
		fmt.Println("No configuration set.")
		fmt.Println("\nAvailable settings:")
		for _, key := range validConfigKeys {
			fmt.Printf("  %s\n", key)
		}
		return nil
	}

	for key, value := range data {
		fmt.Printf("%s=%s\n", key, value)
	}

	return nil
}

// isValidConfigKey checks if a key is a valid configuration key.
func isValidConfigKey(key string) bool {
	return slices.Contains(validConfigKeys, key)
}
