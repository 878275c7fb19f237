package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	carthandlers "teka/internal/cart/handlers"
	cartservice "teka/internal/cart/service"
	chefhandlers "teka/internal/chefs/handlers"
	chefrepo "teka/internal/chefs/repository"
	chefservice "teka/internal/chefs/service"
	"teka/internal/common/httpx"
	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/common/validation"
	"teka/internal/config"
	"teka/internal/connections/database"
	"teka/internal/connections/rabbitmq"
	menuhandlers "teka/internal/menu/handlers"
	menurepo "teka/internal/menu/repository"
	menuservice "teka/internal/menu/service"
	"teka/internal/notifications"
	orderhandlers "teka/internal/orders/handlers"
	orderrepo "teka/internal/orders/repository"
	orderservice "teka/internal/orders/service"
	payhandlers "teka/internal/payments/handlers"
	"teka/internal/payments/provider"
	payservice "teka/internal/payments/service"
	reviewhandlers "teka/internal/reviews/handlers"
	reviewrepo "teka/internal/reviews/repository"
	reviewservice "teka/internal/reviews/service"
)

func main() {
	cfgPath := flag.String("config", "config.yml", "path to config file")
	port := flag.Int("port", 0, "http port, overrides config")
	flag.Parse()

	log := logger.New("teka-server")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("config_load_failed", err, nil)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Error("database_connect_failed", err, nil)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database_connected", map[string]any{
		"host": cfg.Database.Host, "database": cfg.Database.Database,
	})

	rmq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		log.Error("rabbitmq_connect_failed", err, nil)
		os.Exit(1)
	}
	defer rmq.Close()
	if err := rmq.DeclareTopology(); err != nil {
		log.Error("rabbitmq_topology_failed", err, nil)
		os.Exit(1)
	}
	log.Info("rabbitmq_connected", map[string]any{"host": cfg.RabbitMQ.Host})

	v := validation.New()
	notifier := notifications.NewNotifier(notifications.NewAMQPPublisher(rmq), log)

	chefs := chefrepo.NewChefRepository(db)
	menu := menurepo.NewMenuRepository(db)
	orders := orderrepo.NewOrderRepository(db)
	reviews := reviewrepo.NewReviewRepository(db)

	chefSvc := chefservice.NewChefService(chefs, log)
	menuSvc := menuservice.NewMenuService(menu, chefs, log)
	orderSvc := orderservice.NewOrderService(orders, menu, chefs, notifier, cfg.Fees, log)
	reviewSvc := reviewservice.NewReviewService(reviews, orders, chefs, notifier, log)
	cartSvc := cartservice.NewCartService(menu)

	stripe := provider.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	paySvc := payservice.NewPaymentService(stripe, orders, orderSvc, chefs, cfg.Stripe, log)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	payHandler := payhandlers.NewPaymentHandler(paySvc)
	payHandler.RegisterWebhook(engine)

	api := engine.Group("/", identity.Middleware())
	chefhandlers.NewChefHandler(chefSvc, v).Register(api)
	menuhandlers.NewMenuHandler(menuSvc, v).Register(api)
	orderhandlers.NewOrderHandler(orderSvc, v).Register(api)
	reviewhandlers.NewReviewHandler(reviewSvc, v).Register(api)
	carthandlers.NewCartHandler(cartSvc, v).Register(api)
	payHandler.Register(api)

	server := httpx.New(fmt.Sprintf(":%d", cfg.Server.Port), engine)
	log.Info("server_started", map[string]any{"port": cfg.Server.Port})

	if err := server.Run(ctx); err != nil {
		log.Error("server_stopped", err, nil)
		os.Exit(1)
	}
	log.Info("server_stopped", nil)
}
