package main

import (
	"github.com/luma/auctioneer/cmd"
)

func main() {
	cmd.Execute()
}
