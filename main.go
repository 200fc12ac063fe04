package main

import "imovel-backend/internal/app"

func main() {
	app.Run()
}
