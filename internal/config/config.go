// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings needed to run a scenario against the AMM
// core, merged from a config file, environment variables, and flags.
type Config struct {
	ScenarioFile               string
	LogLevel                   string
	DefaultProtocolFeeFraction uint8
	SnapshotPath               string
}

// Load merges a config file, environment variables, and flags into a
// Config. cfgFile, if non-empty, names an explicit config file path;
// otherwise a "config.yaml"/"config.json" in the working directory is
// read if present.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AMMCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("protocol-fee-fraction", uint8(0))
	v.SetDefault("snapshot", "ammcore.snapshot")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ScenarioFile:               v.GetString("scenario"),
		LogLevel:                   v.GetString("log-level"),
		DefaultProtocolFeeFraction: uint8(v.GetUint32("protocol-fee-fraction")),
		SnapshotPath:               v.GetString("snapshot"),
	}
	return cfg, nil
}
