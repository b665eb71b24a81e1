package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/wikiquiz/internal/store"
)

// setupLogging installs the default slog logger from --log-level and
// --log-format. Unknown levels fall back to info.
func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(v.GetString("log-format"), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// viperForCmd binds a command's flags, WIKIQUIZ_* environment variables, and
// an optional wikiquiz.{yaml,toml,json} config file to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("WIKIQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("wikiquiz")
	for _, dir := range []string{".", "$HOME/.config/wikiquiz", "/etc/wikiquiz", "/data"} {
		v.AddConfigPath(dir)
	}
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	case !errors.As(err, &notFound):
		slog.Warn("error reading config file", "error", err)
	}
	return v
}

func openStore(v *viper.Viper) (*store.Store, error) {
	path := v.GetString("db")
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}
