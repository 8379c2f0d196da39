package main

import (
	"errors"
	"fmt"
	"os"

	"sales_dashboard/internal"
	"sales_dashboard/internal/cli"
)

func main() {
	err := internal.Run(os.Args[1:])
	if err == nil {
		return
	}
	if errors.Is(err, cli.ErrUsage) {
		os.Exit(2)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
