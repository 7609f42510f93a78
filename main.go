// Copyright © 2026 The Spill authors

package main

import "github.com/luthersystems/spill/cmd"

func main() {
	cmd.Execute()
}
