// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/filesystem"
	"github.com/tacet-cli/tacet/where"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.Tacet)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Tacet)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, name := range EnvExposed {
		field := Default[name]
		viper.MustBindEnv(append([]string{name, field.Env()}, field.Aliases...)...)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// List reads a list-valued key. Entries may be given as a list or as a
// single comma-separated string, which is how they arrive from the environment.
func List(k string) []string {
	var raw []string
	switch v := viper.Get(k).(type) {
	case string:
		raw = strings.Split(v, ",")
	default:
		for _, item := range viper.GetStringSlice(k) {
			raw = append(raw, strings.Split(item, ",")...)
		}
	}

	return lo.Compact(lo.Map(raw, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// Millis reads an integer key holding milliseconds. Non-positive or
// unparsable values fall back to the registered default.
func Millis(k string) time.Duration {
	ms := viper.GetInt(k)
	if ms <= 0 {
		if def, ok := Default[k].Value.(int); ok {
			ms = def
		}
	}
	return time.Duration(ms) * time.Millisecond
}
