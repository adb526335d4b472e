// Command seed provisions the superadmin account against a data file without
// starting the HTTP server. Useful for first-time setup and CI fixtures.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/internal/store"
)

func main() {
	dataFile := flag.String("data", "data/staffdesk.json", "path to the JSON document file")
	name := flag.String("name", "", "superadmin account name")
	password := flag.String("password", "", "superadmin password (or SEED_PASSWORD env)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -data <file> -name <name> -password <secret>")
		os.Exit(2)
	}

	ctx := context.Background()
	svc, err := records.NewService(ctx, store.NewFileStore(*dataFile), nil, records.NewBcryptHasher(0))
	if err != nil {
		log.Fatalf("cannot open document store: %v", err)
	}

	u, err := svc.CreateSuperadmin(ctx, *name, *password)
	if err != nil {
		log.Fatalf("cannot create superadmin: %v", err)
	}
	fmt.Printf("superadmin %q created (id=%s) in %s\n", u.Str("name"), u.ID(), *dataFile)
}
