package main

import "github.com/annchain/bondledger/app/cmd"

func main() {
	cmd.Execute()
}
