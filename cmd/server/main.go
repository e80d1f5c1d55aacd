package main

import (
	"log"

	"shop-api/internal/app"
	"shop-api/internal/server"
)

func main() {
	log.Println("Starting shop-api service...")

	app.Invoke(
		server.StartServer,
	).Run()
}
