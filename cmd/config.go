package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/color"
	"github.com/tacet-cli/tacet/config"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/filesystem"
	"github.com/tacet-cli/tacet/icon"
	"github.com/tacet-cli/tacet/style"
	"github.com/tacet-cli/tacet/where"
)

func configFilePath() string {
	return filepath.Join(where.Config(), constant.Tacet+".toml")
}

// writeConfig persists viper's state, creating the file on first write.
func writeConfig() error {
	err := viper.WriteConfig()
	if errors.As(err, new(viper.ConfigFileNotFoundError)) {
		return viper.SafeWriteConfig()
	}
	return err
}

// lookupField resolves a registered key, suggesting the closest one on a typo.
func lookupField(k string) (config.Field, error) {
	if field, ok := config.Default[k]; ok {
		return field, nil
	}

	closest := lo.MinBy(lo.Keys(config.Default), func(a, b string) bool {
		return levenshtein.Distance(k, a) < levenshtein.Distance(k, b)
	})
	return config.Field{}, fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(k),
		style.Fg(color.Yellow)(closest),
	)
}

// keyArg takes the key from the first argument or the --key flag.
func keyArg(cmd *cobra.Command, args []string) (config.Field, error) {
	k := lo.Must(cmd.Flags().GetString("key"))
	if len(args) > 0 {
		k = args[0]
	}
	if k == "" {
		return config.Field{}, errors.New("key is required as an argument or --key flag")
	}
	return lookupField(k)
}

// parseValue converts raw into the type of the field's default.
// List keys are stored as the comma separated string they are read from.
func parseValue(field config.Field, raw string) (any, error) {
	switch field.Value.(type) {
	case int:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", field.Key, raw)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s expects a boolean, got %q", field.Key, raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInfoCmd, configSetCmd, configGetCmd, configWriteCmd, configDeleteCmd, configResetCmd)

	configInfoCmd.Flags().StringP("filter", "f", "", "Show only the keys fuzzy matching the filter")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	configInfoCmd.SetOut(os.Stdout)

	for _, c := range []*cobra.Command{configSetCmd, configGetCmd, configResetCmd} {
		c.Flags().StringP("key", "k", "", "Configuration key")
		_ = c.RegisterFlagCompletionFunc("key", completionConfigKeys)
	}

	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite the existing config file")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every key to its default")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

// configInfoCmd describes the registered keys.
var configInfoCmd = &cobra.Command{
	Use:               "info [key...]",
	Short:             "Describe configuration keys",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		keys := args
		if filter := lo.Must(cmd.Flags().GetString("filter")); filter != "" {
			matched := fuzzy.FindFold(filter, lo.Keys(config.Default))
			if len(matched) == 0 {
				handleErr(fmt.Errorf("no keys match %s", style.Fg(color.Red)(filter)))
			}
			keys = lo.Uniq(append(keys, matched...))
		}

		fields := lo.Values(config.Default)
		if len(keys) > 0 {
			fields = lo.Map(keys, func(k string, _ int) config.Field {
				field, err := lookupField(k)
				handleErr(err)
				return field
			})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

		if lo.Must(cmd.Flags().GetBool("json")) {
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		cmd.Println(strings.Join(lo.Map(fields, func(f config.Field, _ int) string {
			return f.Pretty()
		}), "\n\n"))
	},
}

// configSetCmd stores a value in the config file.
var configSetCmd = &cobra.Command{
	Use:               "set [key] <value>",
	Short:             "Set a configuration key",
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		raw := args[len(args)-1]
		field, err := keyArg(cmd, args[:len(args)-1])
		handleErr(err)

		value, err := parseValue(field, raw)
		handleErr(err)

		viper.Set(field.Key, value)
		handleErr(writeConfig())
		success("set %s to %s", style.Fg(color.Purple)(field.Key), style.Fg(color.Yellow)(fmt.Sprint(value)))
	},
}

// configGetCmd prints the effective value of a key.
var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print a configuration key",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field, err := keyArg(cmd, args)
		handleErr(err)
		fmt.Println(viper.Get(field.Key))
	},
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := configFilePath()
		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(viper.WriteConfigAs(path))
		} else {
			handleErr(viper.SafeWriteConfigAs(path))
		}
		success("wrote config to %s", path)
	},
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the config file",
	Aliases: []string{"remove"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFilePath()))
		success("deleted config")
	},
}

// configResetCmd restores defaults for one key or all of them.
var configResetCmd = &cobra.Command{
	Use:               "reset [key]",
	Short:             "Restore configuration defaults",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for k, field := range config.Default {
				viper.Set(k, field.Value)
			}
			handleErr(writeConfig())
			success("reset all config values")
			return
		}

		field, err := keyArg(cmd, args)
		handleErr(err)

		viper.Set(field.Key, field.Value)
		handleErr(writeConfig())
		success("reset %s to %s", style.Fg(color.Purple)(field.Key), style.Fg(color.Yellow)(fmt.Sprint(field.Value)))
	},
}
