package api

import "github.com/RoyceAzure/lab/roundsale/internal/api/handler"

type Server struct {
	ShopHandler     *handler.ShopHandler
	RoundHandler    *handler.RoundHandler
	CartHandler     *handler.CartHandler
	CheckoutHandler *handler.CheckoutHandler
	OrderHandler    *handler.OrderHandler
}

func NewServer(
	shopHandler *handler.ShopHandler,
	roundHandler *handler.RoundHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
) *Server {
	return &Server{
		ShopHandler:     shopHandler,
		RoundHandler:    roundHandler,
		CartHandler:     cartHandler,
		CheckoutHandler: checkoutHandler,
		OrderHandler:    orderHandler,
	}
}
