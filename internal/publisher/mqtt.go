package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"smtbudget/internal/config"
)

// Publisher sends computed figures to Home Assistant over MQTT
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// New creates a new publisher and connects to the broker
func New(cfg config.MQTTConfig) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("smtbudget")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.GetTopicPrefix(),
	}, nil
}

// AveragePayload is the sensor state published for Home Assistant
type AveragePayload struct {
	TrailingAvgKWh float64 `json:"trailing_avg_kwh"`
	TargetAmount   float64 `json:"target_amount"`
	UpdatedAt      string  `json:"updated_at"`
}

// PublishAverage publishes the trailing average and target as a retained
// message so Home Assistant picks it up on restart.
func (p *Publisher) PublishAverage(avgKWh, targetAmount float64, at time.Time) error {
	payload := AveragePayload{
		TrailingAvgKWh: avgKWh,
		TargetAmount:   targetAmount,
		UpdatedAt:      at.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := fmt.Sprintf("%s/trailing_average", p.topicPrefix)
	token := p.client.Publish(topic, 0, true, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
