package pubsub

import (
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/config"
)

// GameUpdate is the message fanned out after every successful scoring
// commit so other viewers of the same game can refresh. The scoring core
// publishes; it never depends on anyone listening.
type GameUpdate struct {
	Type    string          `json:"type"`
	GameID  string          `json:"game_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	UpdatePlateAppearance = "plate_appearance"
	UpdateRunner          = "runner"
	UpdateTransition      = "transition"
	UpdateGame            = "game"
)

// Publisher fans GameUpdates out to in-process subscribers and, when a
// NATS connection is configured, to other instances via a per-game
// subject.
type Publisher struct {
	mu          sync.RWMutex
	subscribers []chan GameUpdate
	nc          *nats.Conn
	logger      zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) (*Publisher, error) {
	p := &Publisher{logger: logger}

	if cfg.NATSUrl != "" {
		nc, err := nats.Connect(cfg.NATSUrl, nats.Name("sandlot-scorebook"))
		if err != nil {
			logger.Error().Err(err).Str("url", cfg.NATSUrl).Msg("failed to connect to NATS")
			return nil, err
		}
		p.nc = nc
		logger.Info().Str("url", cfg.NATSUrl).Msg("connected to NATS")
	}

	return p, nil
}

func subject(gameID string) string {
	return "scorebook.game." + gameID
}

func (p *Publisher) Publish(update GameUpdate) {
	if p.nc != nil {
		data, err := json.Marshal(update)
		if err != nil {
			p.logger.Error().Err(err).Str("game_id", update.GameID).Msg("failed to encode game update")
		} else if err := p.nc.Publish(subject(update.GameID), data); err != nil {
			p.logger.Warn().Err(err).Str("game_id", update.GameID).Msg("failed to publish game update to NATS")
		}
	}

	p.mu.RLock()
	subs := make([]chan GameUpdate, len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- update:
		default:
			// slow subscriber, drop
		}
	}
}

func (p *Publisher) Subscribe() chan GameUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan GameUpdate, 16)
	p.subscribers = append(p.subscribers, ch)
	return ch
}

func (p *Publisher) Unsubscribe(ch chan GameUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, sub := range p.subscribers {
		if sub == ch {
			close(ch)
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			break
		}
	}
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
