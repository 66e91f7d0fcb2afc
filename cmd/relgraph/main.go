package main

import "github.com/dbsmedya/relgraph/cmd/relgraph/cmd"

func main() {
	cmd.Execute()
}
