package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skazar/farelock/api"
	"github.com/skazar/farelock/config"
	"github.com/skazar/farelock/internal/service/booking"
	"github.com/skazar/farelock/internal/service/checkout"
	"github.com/skazar/farelock/internal/service/prebook"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Run builds the HTTP server and blocks until the context is cancelled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *logrus.Logger,
	prebookSvc prebook.PrebookUseCase, checkoutSvc checkout.CheckoutUseCase, bookingSvc booking.BookingUseCase) error {

	router := newRouter(cfg, prebookSvc, checkoutSvc, bookingSvc)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.WithField("address", cfg.HTTP.Address).Info("http server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config,
	prebookSvc prebook.PrebookUseCase, checkoutSvc checkout.CheckoutUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	v1 := router.Group("/api/v1")
	api.NewPrebookingHandler(prebookSvc, checkoutSvc).Register(v1.Group("/prebookings"))
	api.NewBookingHandler(bookingSvc).Register(v1.Group("/bookings"))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/api.swagger.json"),
		)))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
