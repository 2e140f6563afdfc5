// Package main is the stockauto CLI.
//
// Usage:
//
//	stockauto run
//	stockauto score NVDA AAPL --notify
//	stockauto market
//	stockauto history NVDA
package main

import (
	"os"
	_ "time/tzdata"

	"github.com/Alias1177/StockAuto/cmd/stockauto/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
