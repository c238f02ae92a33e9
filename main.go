// Command mab-uarch runs multi-armed-bandit selection of microarchitectural
// policies against a simulator adapter. See cmd/root.go for the subcommands.
package main

import "github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/cmd"

func main() {
	cmd.Execute()
}
