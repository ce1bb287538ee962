package main

import "github.com/oshokin/property-alarm/cmd/alarm-sentry/cmd"

func main() {
	cmd.Execute()
}
