package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/tamanna-04/rock-music-generation-LSTM/cmd"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cmd.Execute()
}
