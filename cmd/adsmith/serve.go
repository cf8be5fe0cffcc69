package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akuzmenko/adsmith/internal/config"
	"github.com/akuzmenko/adsmith/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for the ad copy pipeline and Google Ads reporting.`,
	RunE:  runServe,
}

var (
	serveAddr       string
	serveConfigPath string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (host:port, defaults to :8080)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.ServerAddr = serveAddr
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
