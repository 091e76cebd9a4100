package demo

import "os"

// ShowHelp prints usage information for the demo tool.
func ShowHelp() {
	os.Stdout.WriteString(`pinlog demo
===========

Drives a running pinlog server through a scripted session.

Usage:
  go run ./cmd/demo [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -workouts int      Valid workouts to log (default 20)
  -invalid int       Invalid submissions to try (default 3)
  -workers int       Concurrent clients (default 1)
  -timeout duration  HTTP request timeout (default 10s)
  -reset             Reset the session first
  -seed uint         Generator seed (default random)
  -verbose           Log every submission
  -help              Show this help message
`)
}
