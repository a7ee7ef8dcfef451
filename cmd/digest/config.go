package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bionetslab/digest-go/internal/config"
)

// runConfigRoot wires the cobra config command tree into the flag-based
// dispatcher in main.go, covering digest's validation defaults
// (n_random, replace_pct, coefficient, sampler, store_dir, threshold).
func runConfigRoot(args []string) int {
	initConfigViper()

	cmd := newConfigCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// initConfigViper points the package-level viper singleton at
// ~/.digest.yaml and loads it if present, registering internal/config.Load's
// defaults so `digest config` shows the same baseline values Load returns.
// `digest validate` does not read this configuration: it takes its run
// parameters from the request file and the -store flag.
func initConfigViper() {
	config.RegisterDefaults(viper.GetViper())

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetConfigName(".digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("DIGEST")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig() // absent config file is not an error; defaults apply
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage digest configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.digest.yaml.",
		Example: `  digest config                       # show all config
  digest config set replace_pct 25    # lower the default replacement percentage
  digest config get n_random          # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# No configuration set. Config file: ~/.digest.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".digest.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
