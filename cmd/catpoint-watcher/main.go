package main

import "github.com/oshokin/catpoint/cmd/catpoint-watcher/cmd"

func main() {
	cmd.Execute()
}
