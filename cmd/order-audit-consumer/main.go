package main

import (
	"github.com/corray333/storefront-order/internal/auditapp"
	"github.com/corray333/storefront-order/internal/config"
)

func main() {
	config.MustInit("order-audit-consumer")
	auditapp.MustNewApp().Run()
}
