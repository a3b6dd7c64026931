// Package metrics exposes Prometheus counters for the event handlers.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	notificationsSent int64
	deliveryFailures  int64
	tokensPruned      int64
	imagesBlurred     int64
	welcomeMessages   int64
)

var (
	promNotifications = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "friendlychat_notifications_sent_total",
			Help: "Push notifications accepted by FCM",
		},
	)
	promDeliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendlychat_delivery_failures_total",
			Help: "Per-token FCM delivery failures by error code",
		},
		[]string{"code"},
	)
	promTokensPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "friendlychat_tokens_pruned_total",
			Help: "Device tokens removed after a permanent delivery error",
		},
	)
	promImagesBlurred = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "friendlychat_images_blurred_total",
			Help: "Uploaded images blurred by moderation",
		},
	)
	promWelcomeMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "friendlychat_welcome_messages_total",
			Help: "Welcome messages posted for new users",
		},
	)
	promEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendlychat_events_total",
			Help: "Handled trigger events by type and outcome",
		},
		[]string{"event", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		promNotifications,
		promDeliveryFailures,
		promTokensPruned,
		promImagesBlurred,
		promWelcomeMessages,
		promEvents,
	)
}

func AddNotificationsSent(n int) {
	atomic.AddInt64(&notificationsSent, int64(n))
	promNotifications.Add(float64(n))
}

func IncDeliveryFailure(code string) {
	atomic.AddInt64(&deliveryFailures, 1)
	promDeliveryFailures.WithLabelValues(code).Inc()
}

func IncTokenPruned() {
	atomic.AddInt64(&tokensPruned, 1)
	promTokensPruned.Inc()
}

func IncImageBlurred() {
	atomic.AddInt64(&imagesBlurred, 1)
	promImagesBlurred.Inc()
}

func IncWelcomeMessage() {
	atomic.AddInt64(&welcomeMessages, 1)
	promWelcomeMessages.Inc()
}

// ObserveEvent records one handled trigger event.
func ObserveEvent(event string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	promEvents.WithLabelValues(event, status).Inc()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	NotificationsSent int64 `json:"notifications_sent"`
	DeliveryFailures  int64 `json:"delivery_failures"`
	TokensPruned      int64 `json:"tokens_pruned"`
	ImagesBlurred     int64 `json:"images_blurred"`
	WelcomeMessages   int64 `json:"welcome_messages"`
}

func Get() Snapshot {
	return Snapshot{
		NotificationsSent: atomic.LoadInt64(&notificationsSent),
		DeliveryFailures:  atomic.LoadInt64(&deliveryFailures),
		TokensPruned:      atomic.LoadInt64(&tokensPruned),
		ImagesBlurred:     atomic.LoadInt64(&imagesBlurred),
		WelcomeMessages:   atomic.LoadInt64(&welcomeMessages),
	}
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
