package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/google/uuid"
	"github.com/medlink/dosage-service/internal/shared/config"
)

// Event represents a domain event on the prediction audit stream
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	// Actor information
	ActorID   string `json:"actor_id,omitempty"`
	ActorType string `json:"actor_type,omitempty"` // clinician, system

	// Event data
	Data any `json:"data"`
}

// NewEvent creates a new event with auto-generated ID and timestamp
func NewEvent(eventType, source string, data any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// WithActor sets the actor information on the event
func (e Event) WithActor(actorID, actorType string) Event {
	e.ActorID = actorID
	e.ActorType = actorType
	return e
}

// Bus publishes prediction audit events to EventStoreDB
type Bus struct {
	client *esdb.Client
	prefix string
}

// NewBus creates a new event bus connected to EventStoreDB
func NewBus(ctx context.Context, cfg config.EventStoreConfig) (*Bus, error) {
	settings, err := esdb.ParseConnectionString(buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	client, err := esdb.NewClient(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create EventStoreDB client: %w", err)
	}

	return &Bus{
		client: client,
		prefix: "medlink",
	}, nil
}

// buildConnectionString creates the esdb:// connection string
func buildConnectionString(cfg config.EventStoreConfig) string {
	var auth string
	if cfg.Username != "" && cfg.Password != "" {
		auth = fmt.Sprintf("%s:%s@", cfg.Username, cfg.Password)
	}

	params := ""
	if cfg.Insecure {
		params = "?tls=false&tlsVerifyCert=false"
	}

	return fmt.Sprintf("esdb://%s%s:%d%s", auth, cfg.Host, cfg.Port, params)
}

// Publish appends an event to its stream. Stream name is derived from the
// event type: prediction.completed -> medlink-prediction-completed.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	stream := fmt.Sprintf("%s-%s", b.prefix, normalizeEventType(event.Type))

	eventID, err := uuid.Parse(event.ID)
	if err != nil {
		eventID = uuid.New()
	}

	esdbEvent := esdb.EventData{
		EventType:   event.Type,
		ContentType: esdb.ContentTypeJson,
		Data:        data,
		EventID:     eventID,
	}

	_, err = b.client.AppendToStream(ctx, stream, esdb.AppendToStreamOptions{
		ExpectedRevision: esdb.Any{},
	}, esdbEvent)

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// normalizeEventType converts event type to stream-safe format
func normalizeEventType(eventType string) string {
	result := make([]byte, len(eventType))
	for i := 0; i < len(eventType); i++ {
		if eventType[i] == '.' {
			result[i] = '-'
		} else {
			result[i] = eventType[i]
		}
	}
	return string(result)
}

// Health checks the event store connection
func (b *Bus) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream := b.prefix + "-health"
	_, err := b.client.ReadStream(ctx, stream, esdb.ReadStreamOptions{}, 1)
	if err != nil {
		if esdbErr, ok := esdb.FromError(err); ok {
			// An empty stream still proves connectivity
			if esdbErr.Code() == esdb.ErrorCodeResourceNotFound {
				return nil
			}
		}
		return err
	}
	return nil
}

// Close closes the event store connection
func (b *Bus) Close() {
	if b.client != nil {
		b.client.Close()
	}
}
