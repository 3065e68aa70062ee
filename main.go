package main

import "github.com/relloyd/tablesync/cmd"

func main() {
	cmd.Execute()
}
