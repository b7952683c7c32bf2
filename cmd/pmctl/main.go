// Command pmctl records and reviews interruptions from the terminal.
//
// It opens the data directory directly, so with the badger backend it must not
// run while the server holds the database. Use the HTTP API in that case.
package main

import (
	"fmt"
	"os"
)

// version is set via ldflags during build.
var version = "dev"

func main() {
	app := newApp()
	err := app.root.Execute()
	app.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
