package main

import "github.com/dbsmedya/encbench/cmd/encbench/cmd"

func main() {
	cmd.Execute()
}
