package main

import (
	"log"

	"github.com/changyuyeo/fitbody/internal/server"
)

func main() {
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
