package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/estima/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings",
		Long: `Show the settings estima runs with: the built-in defaults, overlaid by the
--config file, overlaid by ESTIMA_* environment variables.

Examples:
  # View the effective settings
  estima config view

  # Get a single value using dot notation
  estima config get log.level`,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Display the effective settings",
			Args:  cobra.NoArgs,
			RunE:  instrumented("config.view", runConfigView),
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Get a specific setting",
			Long:  `Retrieve the value of a setting using dot notation (e.g., tracing.sample_rate).`,
			Args:  cobra.ExactArgs(1),
			RunE:  instrumented("config.get", runConfigGet),
		},
	)
	return configCmd
}

func runConfigView(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	return render(cmd, cc, cc.Settings, func(w io.Writer) error {
		source := cc.ConfigPath
		if source == "" {
			source = "(defaults and environment only)"
		}
		fmt.Fprintf(w, "Configuration file: %s\n\n", source)

		data, err := yaml.Marshal(cc.Settings)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
}

func runConfigGet(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	value, err := getNestedValue(cc.Settings, args[0])
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}
	fmt.Fprintln(output(cmd), value)
	return nil
}

// getNestedValue looks key up in the YAML form of the settings.
func getNestedValue(settings config.Settings, key string) (string, error) {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return "", err
	}
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return "", err
	}

	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", fmt.Errorf("unknown configuration key: %s", key)
		}
		if node, ok = m[part]; !ok {
			return "", fmt.Errorf("unknown configuration key: %s", key)
		}
	}
	if _, ok := node.(map[string]any); ok {
		return "", fmt.Errorf("configuration key %s is a section, not a value", key)
	}
	return fmt.Sprint(node), nil
}
