package main

import (
	"github.com/corray333/storefront-order/internal/app"
	"github.com/corray333/storefront-order/internal/config"
)

func main() {
	config.MustInit("order-svc")
	app.MustNewApp().Run()
}
