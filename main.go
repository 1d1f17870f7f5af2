package main

import (
	"log"

	"github.com/anoixa/daijo-gallery/config"

	"github.com/anoixa/daijo-gallery/cmd"
)

func main() {
	log.Printf("daijo gallery %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
