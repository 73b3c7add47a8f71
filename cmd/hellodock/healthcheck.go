package main

import (
	"net/http"
	"time"

	"github.com/benaskins/hellodock/internal/config"
	"github.com/benaskins/hellodock/internal/probe"
	"github.com/spf13/cobra"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe the local server",
	Long:  "Send GET / to the server on $PORT and exit non-zero unless it answers 200. Intended for container HEALTHCHECK.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		return probe.Check(cmd.Context(), probe.Config{
			Type:    "http",
			Path:    "/",
			Status:  http.StatusOK,
			Port:    cfg.Port,
			Timeout: 2 * time.Second,
		})
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
