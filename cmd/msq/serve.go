package main

import (
	"net/http"

	"github.com/spf13/cobra"

	msq "github.com/cbegin/msq-go"
	"github.com/cbegin/msq-go/internal/server"
)

var (
	serveAddr    string
	servePreset  string
	serveOrigins []string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&servePreset, "preset", "", "start with a built-in song")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "allowed CORS origins (default any)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [files...]",
	Short: "Serve a song over HTTP for import and export",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := msq.NewSession(sessionOptions()...)
		if servePreset != "" || len(args) > 0 {
			if err := loadSong(s, servePreset, args); err != nil {
				return err
			}
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		srv := server.New(s, server.WithLogger(logger), server.WithAllowedOrigins(serveOrigins...))
		logger.Info("listening", "addr", addr)
		return http.ListenAndServe(addr, srv.Handler())
	},
}
