package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/streaklit/internal/api"
	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/logger"
)

type ServeCmd struct {
	Addr        string   `help:"Address to listen on." default:"${listen_addr}" env:"STREAKLIT_ADDR"`
	CORSOrigins []string `name:"cors-origin" help:"Allowed CORS origin; repeat or comma-separate. Use * for any." env:"STREAKLIT_CORS_ORIGINS"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	gin.SetMode(gin.ReleaseMode)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shares, err := ctx.Shares(sigCtx)
	if err != nil {
		logger.Warn("sharing disabled", "error", err)
		shares = nil
	} else {
		defer ctx.CloseShares()
	}

	handler := api.NewHandler(ctx.Store, shares, ctx.Clock)
	server := api.NewServer(c.Addr, api.NewRouter(handler, c.CORSOrigins))
	ctx.Printf("Serving streaklit API on http://%s\n", c.Addr)
	return server.ListenAndServe(sigCtx)
}
