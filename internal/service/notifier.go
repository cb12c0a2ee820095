package service

import (
	"context"
	"sync"
	"time"

	"github.com/imagify/imagify-server/internal/logger"
	"github.com/imagify/imagify-server/internal/model"
)

const (
	notifyQueueSize = 64
	notifyWorkers   = 2
	notifyRetries   = 2
	notifyBackoff   = time.Second
)

var _ model.Notifier = (*Notifier)(nil)

// Notifier delivers emails off the request path. Enqueue never blocks; a
// full queue drops the notification with a log line. Delivery is retried a
// fixed number of times and then dropped; a failed email never turns a
// committed operation into a failed response.
type Notifier struct {
	mailer model.Mailer
	logger *logger.Logger
	queue  chan model.Email
	wg     sync.WaitGroup
}

func NewNotifier(mailer model.Mailer, logger *logger.Logger) *Notifier {
	return &Notifier{
		mailer: mailer,
		logger: logger,
		queue:  make(chan model.Email, notifyQueueSize),
	}
}

// Start launches the delivery workers. They drain the queue until Stop is
// called.
func (n *Notifier) Start(ctx context.Context) {
	for i := 0; i < notifyWorkers; i++ {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			for email := range n.queue {
				n.deliver(ctx, email)
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight deliveries.
func (n *Notifier) Stop() {
	close(n.queue)
	n.wg.Wait()
}

// Enqueue hands an email to the workers without blocking the caller.
func (n *Notifier) Enqueue(email model.Email) {
	select {
	case n.queue <- email:
	default:
		n.logger.Error("Notifier: queue full, dropping email",
			"kind", string(email.Kind),
			"to", email.To)
	}
}

func (n *Notifier) deliver(ctx context.Context, email model.Email) {
	for attempt := 0; attempt <= notifyRetries; attempt++ {
		err := n.mailer.Send(ctx, email)
		if err == nil {
			n.logger.Debug("Notifier: email sent",
				"kind", string(email.Kind),
				"to", email.To)
			return
		}

		n.logger.Error("Notifier: delivery attempt failed",
			"kind", string(email.Kind),
			"to", email.To,
			"attempt", attempt+1,
			"error", err.Error())

		if attempt < notifyRetries {
			select {
			case <-time.After(notifyBackoff):
			case <-ctx.Done():
				return
			}
		}
	}

	n.logger.Error("Notifier: giving up on email",
		"kind", string(email.Kind),
		"to", email.To)
}
