// Command doclayout manages quotation templates and exports them as PDF.
//
// Usage:
//
//	doclayout [-config file.yaml] <command> [options] [args]
//
// Commands:
//
//	list       List the stored templates
//	show       Print a template as JSON
//	create     Create a template from the DEMO layout or blank
//	duplicate  Copy a template under a new name
//	rename     Rename a template
//	delete     Delete a template
//	activate   Mark a template as the one used for new documents
//	arrange    Move elements to their canonical positions
//	preview    Print the text elements with tokens filled in
//	export     Render a template as PDF
//	version    Show version information
//	help       Show help message
//
// Examples:
//
//	# Start a template from the DEMO layout
//	doclayout create "Mi Plantilla"
//
//	# Export a quotation
//	doclayout export -quote cotizacion.json -o cotizacion.pdf "Mi Plantilla"
package main

import (
	"os"

	"github.com/lvillar/doclayout/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/doclayout
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime

	cli.Run(os.Args)
}
