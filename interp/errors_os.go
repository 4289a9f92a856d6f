package interp

import (
	"fmt"
	"os"
)

func osExit(code int) { os.Exit(code) }

func stderrPrint(s string) { fmt.Fprintln(os.Stderr, s) }
