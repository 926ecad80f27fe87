package main

import (
	"github.com/clouddelivery/backend/internal/app"
	"github.com/clouddelivery/backend/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
