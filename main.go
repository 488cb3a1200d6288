package main

import (
	"log"

	"github.com/Fergus4506/olca-ipc-container/cmd/olcaipc"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	olcaipc.Execute()
}
