package app

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/trevor-gituru/solaris-conexus/app/handler"
	"github.com/trevor-gituru/solaris-conexus/app/middleware"
	"github.com/trevor-gituru/solaris-conexus/chain"
	"github.com/trevor-gituru/solaris-conexus/db"
	"github.com/trevor-gituru/solaris-conexus/gateway"
	"github.com/trevor-gituru/solaris-conexus/power"
	"github.com/trevor-gituru/solaris-conexus/settle"
)

func Run(port int, authKey, passKey string, sessions *gateway.SessionRegistry, stg *db.Storage, gw *gateway.Client, orch *settle.Orchestrator, feed *power.Feed, strk chain.Token) {

	app := fiber.New()

	middleware.SetupMiddleware(app)

	auth := handler.NewAuthHandler(gw, gw, sessions, authKey, feed)
	auth.InitRoute(app)

	// Everything below requires a live session.
	app.Use(auth.AuthMiddleware)
	auth.InitProtectedRoute(app)

	handler.NewTradeHandler(gw, orch, stg).InitRoute(app)
	handler.NewPurchaseHandler(gw, orch, gw, stg, strk).InitRoute(app)
	handler.NewDeviceHandler(gw).InitRoute(app)
	handler.NewProfileHandler(gw).InitRoute(app)
	handler.NewPowerHandler(feed, stg).InitRoute(app)
	handler.NewDivergenceHandler(stg, passKey).InitRoute(app)

	app.Listen(fmt.Sprintf(":%d", port))
}
