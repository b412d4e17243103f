package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"todoapi/config"
)

var rootCmd = &cobra.Command{
	Use:   "todoapi",
	Short: "Multi-tenant to-do list REST backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
		setupLogger(os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err.Error())
	}
}

func setupLogger(format, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
