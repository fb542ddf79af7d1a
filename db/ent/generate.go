package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

// Run from the repo root: go run ./db/ent
func main() {
	err := entc.Generate(
		"./db/ent/schema",
		&gen.Config{
			Target:  "gen/ent",
			Package: "github.com/storylingo/storylingo/gen/ent",
			Schema:  "github.com/storylingo/storylingo/db/ent/schema",
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
