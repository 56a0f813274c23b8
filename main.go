package main

import "github/qdoge/go-wallet/cmd"

func main() {
	cmd.Execute()
}
