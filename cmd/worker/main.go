package main

import (
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/clinic-booking/internal/config"
	"github.com/unclebandit/clinic-booking/internal/db"
	"github.com/unclebandit/clinic-booking/internal/push"
	"github.com/unclebandit/clinic-booking/internal/queue"
	"github.com/unclebandit/clinic-booking/internal/repository"
	"github.com/unclebandit/clinic-booking/internal/service"
)

func main() {
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	conn, err := db.Open(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	q, err := queue.NewAMQPQueue(cfg.AMQPURL)
	if err != nil {
		log.Fatal(err)
	}
	defer q.Close()

	if err := run(q, newDelivery(conn, push.LogSender{})); err != nil {
		log.Fatal(err)
	}

	log.Println("Worker running, waiting for messages...")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("👋 Worker stopping")
}

func newDelivery(conn *sql.DB, sender push.Sender) *service.DeliveryService {
	return service.NewDeliveryService(
		&repository.NotificationRepository{DB: conn},
		&repository.PatientRepository{DB: conn},
		sender,
	)
}

func run(q queue.Queue, d queue.Deliverer) error {
	return queue.StartDeliverySubscriber(q, d)
}
