package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/team-service/internal/config"
	"github.com/spec-kit/team-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTeamCreated, n.handleTeamCreated)
	n.dispatcher.Subscribe(events.EventTeamMemberInvited, n.handleTeamMemberInvited)
}

func (n *NotificationService) handleTeamCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TeamCreated", zap.Int("team_id", event.TeamID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTeamMemberInvited(ctx context.Context, event events.Event) error {
	n.logger.Info("TeamMemberInvited", zap.Int("team_id", event.TeamID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int("team_id", event.TeamID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int("team_id", event.TeamID),
		zap.String("event_type", string(event.Type)))
}
