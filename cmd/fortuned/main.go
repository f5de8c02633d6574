package main

import (
	"os"

	"github.com/SscSPs/fortune_desk/internal/cli"
)

// @title Fortune Desk API
// @version 1.0
// @description Prepaid-credit fortune requests with AI generation and human review.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
