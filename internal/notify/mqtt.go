package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// DefaultConnectTimeout bounds the broker handshake that settles the permission.
const DefaultConnectTimeout = 3 * time.Second

// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	TopicPrefix    string
	ConnectTimeout time.Duration
}

// MQTTNotifier publishes notifications to an MQTT broker. Permission is granted
// when the first connection attempt succeeds and denied when it fails.
type MQTTNotifier struct {
	cfg       MQTTConfig
	logger    *log.Entry
	newClient func(*mqtt.ClientOptions) mqtt.Client

	mu         sync.Mutex
	permission Permission
	client     mqtt.Client
}

// NewMQTTNotifier creates a notifier that has not yet asked for permission.
func NewMQTTNotifier(cfg MQTTConfig, logger *log.Entry) *MQTTNotifier {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	cfg.TopicPrefix = strings.TrimSuffix(cfg.TopicPrefix, "/")
	return &MQTTNotifier{
		cfg:        cfg,
		logger:     logger,
		newClient:  mqtt.NewClient,
		permission: PermissionDefault,
	}
}

func (n *MQTTNotifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

func (n *MQTTNotifier) RequestPermission(ctx context.Context) Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.permission != PermissionDefault {
		return n.permission
	}

	opts := mqtt.NewClientOptions().
		AddBroker(n.cfg.Broker).
		SetClientID(n.cfg.ClientID).
		SetConnectTimeout(n.cfg.ConnectTimeout).
		SetConnectRetry(false).
		SetAutoReconnect(true)
	client := n.newClient(opts)

	if err := wait(ctx, client.Connect(), n.cfg.ConnectTimeout); err != nil {
		n.logger.WithError(err).WithField("broker", n.cfg.Broker).Warn("Notification broker unavailable, notifications disabled")
		n.permission = PermissionDenied
		return n.permission
	}

	n.client = client
	n.permission = PermissionGranted
	n.logger.WithField("broker", n.cfg.Broker).Info("Notifications enabled")
	return n.permission
}

func (n *MQTTNotifier) Notify(ctx context.Context, note Notification) error {
	n.mu.Lock()
	client, permission := n.client, n.permission
	n.mu.Unlock()
	if permission != PermissionGranted || client == nil {
		return ErrNotGranted
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := wait(ctx, client.Publish(n.Topic(note.UserID), 0, false, payload), n.cfg.ConnectTimeout); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Topic is the per-user topic notifications are published on.
func (n *MQTTNotifier) Topic(userID string) string {
	return n.cfg.TopicPrefix + "/" + userID
}

// Close disconnects from the broker if a connection was made.
func (n *MQTTNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client != nil {
		n.client.Disconnect(250)
		n.client = nil
	}
}

func wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
