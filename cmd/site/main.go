package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	_ "github.com/joho/godotenv/autoload"
)

// @title AI Automations Kurs Editor API
// @version 1.0
// @description Publishing API behind the blog. Send Authorization: Bearer <ADMIN_TOKEN>.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
