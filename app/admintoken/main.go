// Command admintoken mints an admin JWT for the experiment API. It reads the
// signing secret from the same environment the server uses.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"recohub/pkg/config"
	"recohub/pkg/utils"
)

func main() {
	userID := flag.String("user", "ops", "user id to embed in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.InitJWT(cfg.JWT.SecretKey)

	token, err := utils.GenerateJWT(*userID, "admin", *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Fprintln(os.Stdout, token)
}
