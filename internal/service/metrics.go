package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	campaignsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinic_campaigns_sent_total",
		Help: "Campaigns moved from draft to sent.",
	})
	notificationsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinic_notifications_queued_total",
		Help: "Campaign notifications handed to the delivery queue.",
	})
	notificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_notifications_delivered_total",
		Help: "Delivery attempts by outcome.",
	}, []string{"status"})
)
