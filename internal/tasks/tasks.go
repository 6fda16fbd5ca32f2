package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"pawmart/api/internal/config"
	"pawmart/api/internal/email"
	"pawmart/api/internal/models"
	"pawmart/api/internal/services"
	"pawmart/api/internal/utils"
)

// TaskType defines the type of a background task.
const (
	TypeOrderNotify = "order:notify"
)

const (
	orderNotifyQueue      = "default"
	orderNotifyMaxRetries = 5
)

// OrderNotifyPayload is the payload of TypeOrderNotify. Only the id travels; the worker
// reloads the order so the email reflects what was stored.
type OrderNotifyPayload struct {
	OrderID string `json:"order_id"`
}

// NewOrderNotifyTask builds the task announcing a stored order.
func NewOrderNotifyTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderNotifyPayload{OrderID: orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order notify payload: %w", err)
	}
	return asynq.NewTask(TypeOrderNotify, payload,
		asynq.Queue(orderNotifyQueue),
		asynq.MaxRetry(orderNotifyMaxRetries),
	), nil
}

func redisClientOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// --- Task Client (Enqueuing tasks) ---

// Enqueuer is the part of *asynq.Client the notifier uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client enqueues background tasks. It implements services.OrderNotifier.
type Client struct {
	enqueuer Enqueuer
}

var _ services.OrderNotifier = (*Client)(nil)

// NewClient creates a task client on the same Redis instance as rdb.
func NewClient(rdb *redis.Client) *Client {
	return &Client{enqueuer: asynq.NewClient(redisClientOpt(rdb))}
}

// NewClientWithEnqueuer wraps an existing enqueuer.
func NewClientWithEnqueuer(enqueuer Enqueuer) *Client {
	return &Client{enqueuer: enqueuer}
}

// NotifyOrderPlaced enqueues a TypeOrderNotify task for order.
func (c *Client) NotifyOrderPlaced(ctx context.Context, order *models.Order) error {
	task, err := NewOrderNotifyTask(order.ID.Hex())
	if err != nil {
		return err
	}
	info, err := c.enqueuer.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s for order %s: %w", TypeOrderNotify, order.ID.Hex(), err)
	}
	log.Printf("Enqueued %s task ID %s for order %s", TypeOrderNotify, info.ID, order.ID.Hex())
	return nil
}

// Close releases the Redis connection held by the client.
func (c *Client) Close() error {
	return c.enqueuer.Close()
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	fromAddress    string
	emailSender    email.Sender
	orderService   services.IOrderService
	listingService services.IListingService
	now            func() time.Time
}

// NewTaskProcessor creates a TaskProcessor.
func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	orderService services.IOrderService,
	listingService services.IListingService,
) *TaskProcessor {
	from := cfg.SmtpFromAddress
	if from == "" {
		from = "noreply@pawmart.local"
		log.Printf("Warning: SmtpFromAddress not configured, using fallback %s", from)
	}
	return &TaskProcessor{
		fromAddress:    from,
		emailSender:    emailSender,
		orderService:   orderService,
		listingService: listingService,
		now:            time.Now,
	}
}

// NewServeMux registers every task handler of the processor.
func NewServeMux(processor *TaskProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOrderNotify, processor.HandleOrderNotifyTask)
	return mux
}

// SetupServer configures an Asynq server instance. The caller runs it with NewServeMux.
func SetupServer(rdb *redis.Client, concurrency int) *asynq.Server {
	return asynq.NewServer(
		redisClientOpt(rdb),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"critical":       6,
				orderNotifyQueue: 3,
				"low":            1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)
}

// --- Task Handlers ---

// HandleOrderNotifyTask emails the buyer a confirmation and the listing owner a heads-up.
// Store failures are retried; a bad payload or a vanished order is not. Both records are
// loaded before any email goes out.
func (p *TaskProcessor) HandleOrderNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload OrderNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal order notify payload: %v: %w", err, asynq.SkipRetry)
	}

	orderID, err := utils.ParseObjectID(payload.OrderID)
	if err != nil {
		log.Printf("Invalid OrderID in order notify payload: %q", payload.OrderID)
		return fmt.Errorf("invalid order ID in payload: %w", asynq.SkipRetry)
	}

	order, err := p.orderService.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fmt.Errorf("order %s not found: %w", payload.OrderID, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to load order %s: %w", payload.OrderID, err)
	}

	// Orders may reference listings that were deleted; the buyer still gets a confirmation.
	listing, err := p.listingService.FindListingByID(ctx, order.ProductID.Hex())
	if err != nil {
		if !errors.Is(err, services.ErrListingNotFound) {
			return fmt.Errorf("failed to load listing %s for order %s: %w", order.ProductID.Hex(), payload.OrderID, err)
		}
		log.Printf("Listing %s for order %s no longer exists, skipping owner notification", order.ProductID.Hex(), payload.OrderID)
		listing = nil
	}

	if err := p.send(ctx, email.OrderReceivedEmail(order)); err != nil {
		return err
	}
	if listing != nil {
		if err := p.send(ctx, email.NewOrderEmail(order, listing)); err != nil {
			return err
		}
	}

	log.Printf("Order notify task processed successfully: Order=%s", payload.OrderID)
	return nil
}

func (p *TaskProcessor) send(ctx context.Context, e email.Email) error {
	if err := p.emailSender.Send(ctx, e.To, e.Subject, e.Raw(p.fromAddress, p.now())); err != nil {
		return fmt.Errorf("failed to send %s email to %v: %w", e.Kind, e.To, err)
	}
	return nil
}
