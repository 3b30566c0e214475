package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type taskKind int

const (
	taskAlert taskKind = iota
	taskEmail
)

type task struct {
	kind  taskKind
	text  string
	order OrderInfo
	creds []Credential
	retry int
}

// Dispatcher implements Notifier on top of the Telegram client and the
// mailer. Sends run on a small worker pool with a retry queue so the order
// pipeline never waits on (or fails because of) a notification channel.
type Dispatcher struct {
	telegram *TelegramClient
	mailer   *Mailer
	log      *zap.Logger

	taskQueue  chan task
	retryQueue chan task
	workerNum  int
	maxRetry   int
}

func NewDispatcher(telegram *TelegramClient, mailer *Mailer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		telegram:   telegram,
		mailer:     mailer,
		log:        log,
		taskQueue:  make(chan task, 256),
		retryQueue: make(chan task, 128),
		workerNum:  3,
		maxRetry:   3,
	}
}

// Start launches the workers. Call once at startup.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workerNum; i++ {
		go d.worker(i)
	}
	go d.retryWorker()
	d.log.Info("notification dispatcher started", zap.Int("workers", d.workerNum))
}

func (d *Dispatcher) AlertOperator(_ context.Context, text string) {
	d.enqueue(task{kind: taskAlert, text: text})
}

func (d *Dispatcher) NotifyPaymentDelivered(_ context.Context, order OrderInfo, txID string, creds []Credential) {
	d.enqueue(task{kind: taskAlert, text: PaymentDeliveredMessage(order, txID, creds)})
}

func (d *Dispatcher) NotifyNeedsPreparation(_ context.Context, order OrderInfo, items []PrepItem) {
	d.enqueue(task{kind: taskAlert, text: NeedsPreparationMessage(order, items)})
}

func (d *Dispatcher) EmailCustomer(_ context.Context, order OrderInfo, creds []Credential) {
	d.enqueue(task{kind: taskEmail, order: order, creds: creds})
}

func (d *Dispatcher) enqueue(t task) {
	select {
	case d.taskQueue <- t:
	default:
		d.log.Warn("notification queue full, dropping task", zap.Int("kind", int(t.kind)))
	}
}

func (d *Dispatcher) worker(id int) {
	for t := range d.taskQueue {
		if err := d.process(t); err != nil {
			d.log.Warn("notification send failed",
				zap.Int("worker", id),
				zap.Int("attempt", t.retry+1),
				zap.Error(err))

			if t.retry < d.maxRetry {
				t.retry++
				select {
				case d.retryQueue <- t:
				default:
					d.logDropped(t, err)
				}
			} else {
				d.logDropped(t, err)
			}
		}
	}
}

func (d *Dispatcher) retryWorker() {
	for t := range d.retryQueue {
		// Back off proportionally to the attempt count.
		time.Sleep(time.Duration(t.retry) * time.Second)
		select {
		case d.taskQueue <- t:
		default:
			d.logDropped(t, nil)
		}
	}
}

func (d *Dispatcher) process(t task) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch t.kind {
	case taskAlert:
		if d.telegram == nil {
			return nil
		}
		return d.telegram.SendMessage(ctx, t.text)
	case taskEmail:
		if d.mailer == nil {
			return nil
		}
		return d.mailer.SendAccountInfo(t.order, t.creds)
	}
	return nil
}

func (d *Dispatcher) logDropped(t task, err error) {
	d.log.Error("notification dropped permanently",
		zap.Int("kind", int(t.kind)),
		zap.String("order_code", t.order.OrderCode),
		zap.Error(err))
}
