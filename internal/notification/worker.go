package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"homebase/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Subscribers is the part of the store the pool needs.
type Subscribers interface {
	SubscriptionsForAppliance(ctx context.Context, applianceID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Payload is the JSON body delivered to the browser's service worker.
type Payload struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	TaskID      string `json:"taskId"`
	ApplianceID string `json:"applianceId"`
}

// WorkerPool manages a pool of workers for sending reminder notifications.
type WorkerPool struct {
	size    int
	jobs    chan model.UpcomingTask
	subs    Subscribers
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool. A nil webpushOptions disables
// delivery; jobs are still drained and logged.
func NewWorkerPool(size int, subs Subscribers, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.UpcomingTask, size),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case task := <-wp.jobs:
			log.Printf("Worker %d processing reminder for task %s", id, task.ID)
			wp.sendReminder(ctx, task)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a reminder. It blocks while the queue is full and gives up
// when ctx is done.
func (wp *WorkerPool) Dispatch(ctx context.Context, task model.UpcomingTask) error {
	select {
	case wp.jobs <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewPayload builds the notification shown for a due task.
func NewPayload(task model.UpcomingTask) Payload {
	name := task.ApplianceName
	if name == "" {
		name = "your appliance"
	}
	return Payload{
		Title:       "Maintenance due: " + task.TaskName,
		Body:        fmt.Sprintf("%s for %s is due on %s.", task.TaskName, name, task.Date),
		TaskID:      task.ID,
		ApplianceID: task.ApplianceID,
	}
}

func (wp *WorkerPool) sendReminder(ctx context.Context, task model.UpcomingTask) {
	if wp.webpush == nil {
		log.Printf("Push is not configured; skipping reminder for task %s", task.ID)
		return
	}

	subscriptions, err := wp.subs.SubscriptionsForAppliance(ctx, task.ApplianceID)
	if err != nil {
		log.Printf("Error fetching subscriptions for appliance %s: %v", task.ApplianceID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(NewPayload(task))
	if err != nil {
		log.Printf("Error encoding reminder for task %s: %v", task.ID, err)
		return
	}

	log.Printf("Sending %d notifications for task %s", len(subscriptions), task.ID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
