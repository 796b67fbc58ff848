package rete

import (
	"fmt"
	"os"
	"strings"
)

// Debug logs message if the DEBUG environment variable contains
// "rete-engine". Adapted verbatim from the teacher's debug.go idiom.
func Debug(message string) {
	defer func() {
		if r := recover(); r != nil {
			// swallow: logging must never be the thing that crashes a run
		}
	}()

	if isDebugMode() {
		fmt.Println(message)
	}
}

func isDebugMode() bool {
	debugEnv, exists := os.LookupEnv("DEBUG")
	return exists && strings.Contains(debugEnv, "rete-engine")
}
