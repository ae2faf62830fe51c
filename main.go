package main

import (
	"log"

	"github.com/vkoski/infotools/config"
	"github.com/vkoski/infotools/logging"
	"github.com/vkoski/infotools/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid config: ", err)
	}

	logging.Setup(cfg.ConsoleOutput)

	log.Fatal(server.Run(cfg))
}
