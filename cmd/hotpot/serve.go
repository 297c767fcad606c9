package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/strava"
	"github.com/mmeyer/hotpot/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		host, port                        string
		upload, render, stravaWebhook, cors bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tile, render, upload, and Strava webhook HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			stravaEnv := config.StravaFromEnv()
			stravaClient := strava.NewClient(stravaEnv, db)

			srv := web.NewServer(web.Config{
				Routes: web.RouteConfig{
					Tiles:         true,
					Render:        render,
					Upload:        upload,
					StravaWebhook: stravaWebhook,
					StravaAuth:    stravaWebhook,
				},
				CORS:         cors,
				UploadToken:  config.UploadToken(),
				StravaEnv:    stravaEnv,
				AppConfig:    cfg,
				Store:        db,
				Parsers:      parserSet(),
				StravaClient: stravaClient,
			})

			addr := fmt.Sprintf("%s:%s", host, port)
			logVerbose("listening on %s", addr)
			return srv.Start(addr)
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "bind host")
	cmd.Flags().StringVar(&port, "port", "8080", "bind port")
	cmd.Flags().BoolVar(&upload, "upload", false, "enable the /upload endpoint")
	cmd.Flags().BoolVar(&render, "render", true, "enable the /render endpoint")
	cmd.Flags().BoolVar(&stravaWebhook, "strava-webhook", false, "enable Strava webhook and auth endpoints")
	cmd.Flags().BoolVar(&cors, "cors", false, "enable permissive CORS")
	return cmd
}
