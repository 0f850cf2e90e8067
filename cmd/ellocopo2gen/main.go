// Command ellocopo2gen is the build-time code generator: it reads a JSON
// register scheme and writes a Go source file defining that scheme's Msg
// type and Dispatch function.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/openbuttnakedgang/ellocopo2/codegen"
	"github.com/openbuttnakedgang/ellocopo2/schema"
)

func usage() {
	fmt.Println(`ellocopo2gen generates the register message type and dispatcher from a
JSON scheme document.

Usage:
	ellocopo2gen <scheme.json> <package-name> <output.go>

If <output.go> is omitted, the generated source is written to stdout.`)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage()
		if len(args) == 0 {
			os.Exit(2)
		}
		return
	}
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	schemePath, pkgName := args[0], args[1]

	doc, err := os.ReadFile(schemePath)
	if err != nil {
		log.Fatalf("ellocopo2gen: reading scheme: %v", err)
	}

	root, err := schema.Parse(doc)
	if err != nil {
		log.Fatalf("ellocopo2gen: parsing scheme: %v", err)
	}

	src, err := codegen.Generate(root, pkgName)
	if err != nil {
		log.Fatalf("ellocopo2gen: generating source: %v", err)
	}

	if len(args) < 3 {
		os.Stdout.Write(src)
		return
	}

	if err := os.WriteFile(args[2], src, 0o644); err != nil {
		log.Fatalf("ellocopo2gen: writing output: %v", err)
	}
}
