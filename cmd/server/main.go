package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/revxrent/storefront/internal"
	"github.com/revxrent/storefront/internal/auth"
	"github.com/revxrent/storefront/internal/billing"
	"github.com/revxrent/storefront/internal/email"
	"github.com/revxrent/storefront/internal/handler/api"
	"github.com/revxrent/storefront/internal/handler/webhook"
	"github.com/revxrent/storefront/internal/middleware"
	"github.com/revxrent/storefront/internal/notify"
	"github.com/revxrent/storefront/internal/router"
	"github.com/revxrent/storefront/internal/routes"
	"github.com/revxrent/storefront/internal/service"
	"github.com/revxrent/storefront/internal/shipping"
	"github.com/revxrent/storefront/internal/store"
	"github.com/revxrent/storefront/internal/tax"
	"github.com/revxrent/storefront/internal/telemetry"
	"github.com/revxrent/storefront/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Enabled:     cfg.Sentry.Enabled,
		Environment: cfg.Env,
		SampleRate:  cfg.Sentry.SampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize error tracking: %w", err)
	}
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store selection is explicit: Mongo when a URI is configured,
	// in-memory otherwise.
	var st store.Store
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mongoStore, err := store.NewMongo(connectCtx, cfg.MongoURI, cfg.DatabaseName)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to open mongodb store: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoStore.Close(closeCtx); err != nil {
				logger.Error("failed to close mongodb store", slog.String("error", err.Error()))
			}
		}()
		st = mongoStore
		logger.Info("using mongodb store", slog.String("database", cfg.DatabaseName))
	} else {
		st = store.NewMemory()
		logger.Warn("MONGODB_URI not set, using in-memory store; all data is lost on restart")
	}

	taxCalc, err := tax.NewPercentageCalculator(decimal.NewFromFloat(cfg.TaxRate))
	if err != nil {
		return fmt.Errorf("failed to build tax calculator: %w", err)
	}
	var shippingProv shipping.Provider
	if cfg.Shipping.EasyPostAPIKey != "" {
		shippingProv, err = shipping.NewEasyPostProvider(shipping.EasyPostConfig{
			APIKey: cfg.Shipping.EasyPostAPIKey,
			Origin: shipping.Origin{
				Street:     cfg.Shipping.OriginStreet,
				City:       cfg.Shipping.OriginCity,
				State:      cfg.Shipping.OriginState,
				PostalCode: cfg.Shipping.OriginPostalCode,
				Country:    cfg.Shipping.OriginCountry,
			},
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("failed to build shipping provider: %w", err)
		}
	} else {
		logger.Warn("EASYPOST_API_KEY not set, quoting flat-rate shipping")
		shippingProv = shipping.NewDefaultFlatRateProvider()
	}

	var billingProv billing.Provider
	if cfg.Stripe.SecretKey != "" {
		billingProv, err = billing.NewStripeProvider(billing.StripeConfig{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
		})
		if err != nil {
			return fmt.Errorf("failed to configure stripe: %w", err)
		}
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, online payment is disabled")
	}

	var notifier notify.Notifier = notify.Noop{}
	var emailSvc *email.Service
	if cfg.Email.Host != "" {
		sender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     int(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
		if err != nil {
			return fmt.Errorf("failed to configure smtp: %w", err)
		}
		emailSvc, err = email.NewService(sender)
		if err != nil {
			return fmt.Errorf("failed to build email service: %w", err)
		}
		notifier = notify.NewQueue(st, logger)
	} else {
		logger.Warn("SMTP_HOST not set, order emails are disabled")
	}

	orderSvc, err := service.NewOrderService(st, notifier, billingProv, logger, service.OrderServiceConfig{
		StrictTransitions: cfg.Orders.StrictTransitions,
		PaymentSuccessURL: cfg.Stripe.SuccessURL,
		PaymentCancelURL:  cfg.Stripe.CancelURL,
		Currency:          "usd",
	})
	if err != nil {
		return fmt.Errorf("failed to build order service: %w", err)
	}
	checkoutSvc, err := service.NewCheckoutService(st, taxCalc, shippingProv, notifier, logger)
	if err != nil {
		return fmt.Errorf("failed to build checkout service: %w", err)
	}
	cartSvc, err := service.NewCartService(st)
	if err != nil {
		return fmt.Errorf("failed to build cart service: %w", err)
	}
	wishlistSvc, err := service.NewWishlistService(st)
	if err != nil {
		return fmt.Errorf("failed to build wishlist service: %w", err)
	}

	sessionCodec, err := auth.NewSessionCodec(cfg.SessionSecret, 24*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to build session codec: %w", err)
	}

	if emailSvc != nil {
		w := worker.New(st, emailSvc, logger, worker.Config{
			PollInterval: time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second,
			MaxAttempts:  int(cfg.Worker.MaxAttempts),
		})
		go w.Run(ctx)
	}

	metrics := middleware.NewMetrics("storefront")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithLogger(logger),
		metrics.Middleware,
		router.Logger(logger),
		middleware.WithPrincipal(sessionCodec),
	)

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		Orders:   api.NewOrderHandler(orderSvc, checkoutSvc),
		Cart:     api.NewCartHandler(cartSvc),
		Wishlist: api.NewWishlistHandler(wishlistSvc),
	})
	if billingProv != nil {
		routes.RegisterWebhookRoutes(r, routes.WebhookDeps{
			Payment: webhook.NewPaymentHandler(billingProv, orderSvc),
		})
	}
	routes.RegisterOpsRoutes(r, routes.OpsDeps{Store: st, Metrics: metrics})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}
