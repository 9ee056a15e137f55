package main

import (
	"fmt"
	"io"

	"oir/internal/driver"
)

func printStats(out io.Writer, res *driver.Result) {
	if out == nil {
		return
	}
	suffix := ""
	if res.Cached {
		suffix = " (cached)"
	}
	fmt.Fprintf(out, "%s: +%d/-%d copies, +%d/-%d destroys%s\n",
		res.Path,
		res.Stats.CopiesGenerated, res.Stats.CopiesEliminated,
		res.Stats.DestroysGenerated, res.Stats.DestroysEliminated,
		suffix)
}
