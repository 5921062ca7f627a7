package handler

import (
	"sportsbook-ledger/internal/adapter/http/middleware"
	"sportsbook-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	BetSvc         ports.BetService
	ProfileSource  ports.ProfileSource
	TokenVerifier  ports.TokenVerifier
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	auth := middleware.BearerAuth(deps.TokenVerifier, deps.Logger)

	// Wallet ledger. Debit and credit are server-to-server calls from
	// the platform and carry the account in the body; profile reads the
	// caller's own wallet.
	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.ProfileSource)
	wallet := r.Group("/wallet", auth)
	{
		wallet.POST("/debit", walletHandler.Debit)
		wallet.POST("/credit", walletHandler.Credit)
		wallet.GET("/profile", walletHandler.Profile)
	}

	// Bet slip lifecycle for the authenticated bettor.
	betSlipHandler := NewBetSlipHandler(deps.BetSvc)
	betslip := r.Group("/betslip", auth)
	{
		betslip.POST("/validate", betSlipHandler.Validate)
		betslip.POST("/place", betSlipHandler.Place)
	}

	// Settlement and bet reads.
	betHandler := NewBetHandler(deps.BetSvc)
	bets := r.Group("/bets", auth)
	{
		bets.GET("", betHandler.List)
		bets.GET("/:id", betHandler.Get)
		bets.POST("/:id/settle", betHandler.Settle)
	}

	return r
}
