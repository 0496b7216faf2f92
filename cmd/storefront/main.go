// @title           Storefront API
// @version         1.0
// @description     Cart, checkout with manual UPI or cash on delivery, and the back office.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeMC777/storefront/internal/analytics"
	"github.com/MikeMC777/storefront/internal/auth"
	"github.com/MikeMC777/storefront/internal/banner"
	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/db"
	"github.com/MikeMC777/storefront/internal/events"
	"github.com/MikeMC777/storefront/internal/mail"
	"github.com/MikeMC777/storefront/internal/notification"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/payment"
	"github.com/MikeMC777/storefront/internal/probe"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/review"
	"github.com/MikeMC777/storefront/internal/settings"
	"github.com/MikeMC777/storefront/internal/storage"
	"github.com/MikeMC777/storefront/internal/user"

	_ "github.com/MikeMC777/storefront/docs"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[db] %v", err)
	}
	defer pool.Close()

	var mailer mail.Sender = mail.Log{}
	if cfg.SMTP.Email != "" {
		mailer = mail.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, closeFn, err := events.Dial(cfg.AMQPURL, events.DefaultQueue)
		if err != nil {
			log.Printf("[events] broker unavailable, events will only be logged: %v", err)
		} else {
			publisher = p
			defer func() { _ = closeFn() }()
		}
	}

	files := storage.NewLocal(cfg.StaticDir)
	users := user.NewPGRepo(pool)
	catalog := product.NewPGRepo(pool)

	carts := cart.NewService(cart.NewPGRepo(pool), catalog)
	upi := settings.NewService(settings.NewPGRepo(pool))
	orders := order.NewService(order.NewPGRepo(pool), order.Ext{
		Catalog: catalog,
		Carts:   carts,
		Payee:   upi,
		Events:  publisher,
	})
	notifications := notification.NewService(notification.NewPGRepo(pool), users, carts)

	a := &app{
		users:         user.NewService(users, user.NewPGPending(pool), mailer),
		google:        user.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL),
		sessions:      auth.NewSessions(auth.NewPGSessions(pool), cfg.SessionTTL),
		products:      product.NewService(catalog, files, notifications),
		carts:         carts,
		orders:        orders,
		payments:      payment.NewService(payment.NewPGRepo(pool), orders),
		notifications: notifications,
		analytics:     analytics.NewService(orders, catalog),
		banners:       banner.NewService(banner.NewPGRepo(pool), files),
		reviews:       review.NewService(review.NewPGRepo(pool), catalog, files),
		upi:           upi,
		staticDir:     cfg.StaticDir,
		secret:        []byte(cfg.SecretKey),
		ping:          pool.Ping,
	}

	if err := a.users.EnsureBootstrap(ctx, user.Bootstrap{
		AdminEmail:          cfg.AdminEmail,
		AdminPasswordHash:   cfg.AdminPasswordHash,
		FinanceEmail:        cfg.FinanceEmail,
		FinancePasswordHash: cfg.FinancePasswordHash,
	}); err != nil {
		log.Fatalf("[user] bootstrap: %v", err)
	}

	health := probe.New()
	wctx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go health.Watch(wctx, cfg.HealthEvery, func(ctx context.Context) error { return pool.Ping(ctx) })
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("[probe] listen %s: %v", cfg.GRPCAddr, err)
	}
	go func() {
		if err := health.Serve(lis); err != nil {
			log.Printf("[probe] stopped: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("storefront listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[http] %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Printf("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Printf("[http] shutdown: %v", err)
	}
	stopWatch()
	health.Stop()
}
