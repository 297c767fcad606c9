package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/strava"
)

func newStravaAuthCmd() *cobra.Command {
	var redirectURL string

	cmd := &cobra.Command{
		Use:   "strava-auth",
		Short: "Link a Strava account by exchanging an OAuth authorization code",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := config.StravaFromEnv()
			if env.ClientID == "" || env.ClientSecret == "" {
				return fmt.Errorf("STRAVA_CLIENT_ID / STRAVA_CLIENT_SECRET must be set")
			}

			fmt.Println("Open this URL, authorize the app, then paste the \"code\" query parameter below:")
			fmt.Println(strava.AuthCodeURL(env, redirectURL))
			fmt.Print("code: ")

			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			code := strings.TrimSpace(line)
			if code == "" {
				return fmt.Errorf("no code entered")
			}

			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			client := strava.NewClient(env, db)
			if err := client.ExchangeCode(context.Background(), code); err != nil {
				return err
			}
			fmt.Println("account linked")
			return nil
		},
	}
	cmd.Flags().StringVar(&redirectURL, "redirect-url", "http://localhost:8080/strava/auth/callback", "OAuth redirect URL registered with Strava")
	return cmd
}
