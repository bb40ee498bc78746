// Command devtoken prints an access token for local testing of the swipe and
// websocket endpoints.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ivankudzin/swipematch/internal/config"
	authsvc "github.com/ivankudzin/swipematch/internal/services/auth"
)

func main() {
	userID := flag.String("user", "", "user id to put in the token subject")
	flag.Parse()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	authService := authsvc.NewService(authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL))
	issued, err := authService.IssueAccessToken(*userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(issued.AccessToken)
}
