package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/app"
	"github.com/MrSnakeDoc/icebreaker/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "token":
			issueToken(os.Args[2:])
			return
		case "version":
			fmt.Println(version.String())
			return
		}
	}

	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ icebreaker failed to start: %v", err)
	}
}

// issueToken prints a signed identity token: icebreaker token -user <id> [-name <n>] [-ttl 24h]
func issueToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	user := fs.String("user", "", "user id (token subject)")
	name := fs.String("name", "", "display name")
	ttl := fs.Duration("ttl", 0, "token lifetime (default ICEBREAKER_JWT_TTL)")
	_ = fs.Parse(args)

	if *user == "" {
		fs.Usage()
		os.Exit(2)
	}

	token, exp, err := app.IssueToken(*user, *name, *ttl)
	if err != nil {
		log.Fatalf("❌ failed to issue token: %v", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.Format(time.RFC3339))
}
