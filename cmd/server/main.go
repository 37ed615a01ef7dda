// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unclebandit/clinic-booking/internal/config"
	"github.com/unclebandit/clinic-booking/internal/controller"
	"github.com/unclebandit/clinic-booking/internal/db"
	"github.com/unclebandit/clinic-booking/internal/handler"
	"github.com/unclebandit/clinic-booking/internal/push"
	"github.com/unclebandit/clinic-booking/internal/queue"
	"github.com/unclebandit/clinic-booking/internal/repository"
	"github.com/unclebandit/clinic-booking/internal/service"
)

func main() {
	cfg := config.Load()

	conn, err := db.Open(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	patientRepo := &repository.PatientRepository{DB: conn}
	notificationRepo := &repository.NotificationRepository{DB: conn}

	var q queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL)
		if err != nil {
			log.Fatal(err)
		}
		defer amqpQueue.Close()
		q = amqpQueue
		log.Println("🐇 Publishing deliveries to RabbitMQ, run cmd/worker to send them")
	} else {
		// Without a broker the server delivers in-process.
		q = queue.NewInMemoryQueue()
		delivery := service.NewDeliveryService(notificationRepo, patientRepo, push.LogSender{})
		if err := queue.StartDeliverySubscriber(q, delivery); err != nil {
			log.Fatal(err)
		}
		log.Println("📦 AMQP_URL not set, delivering notifications in-process")
	}

	campaignService := service.NewCampaignService(campaignRepo, patientRepo, notificationRepo, q)

	campaignController := &controller.CampaignController{CampaignService: campaignService}
	campaignHandler := handler.NewCampaignHandler(campaignService)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		campaignController.Register(r)
		campaignHandler.Register(r)
	})
	r.Handle("/metrics", promhttp.Handler())

	log.Println("🚀 Server running on", cfg.ServerAddr)
	log.Fatal(http.ListenAndServe(cfg.ServerAddr, r))
}
