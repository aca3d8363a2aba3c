package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"neighborlift/internal/decode"
	"neighborlift/internal/model"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PromptEnqueuer receives targeted enqueues for events the feed observes
// before the next full reconcile would.
type PromptEnqueuer interface {
	EnqueueCompletion(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID)
	EnqueueReview(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID)
	ReconcileAll(ctx context.Context)
}

type BadgeRefresher interface {
	RefreshBadges(ctx context.Context, userID uuid.UUID, reason string) error
}

type UserLookup interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type PushSender interface {
	SendNotification(chatID int64, title, body string) error
}

type Config struct {
	URL               string        `json:"url"`
	Token             string        `json:"token"`
	ReconcileInterval time.Duration `json:"reconcileInterval"`
}

const reconnectDelay = 5 * time.Second

// Listener consumes the primary backend's realtime change feed over a
// websocket, normalizes each frame through the payload decoder and routes it
// to the prompt engine. Frames that fail to decode are dropped silently;
// anything missed here is re-derived by the periodic reconcile.
type Listener struct {
	cfg     Config
	prompts PromptEnqueuer
	badges  BadgeRefresher
	users   UserLookup
	push    PushSender // nil when no push channel is configured
	log     *zap.Logger
}

func NewListener(cfg Config, prompts PromptEnqueuer, badges BadgeRefresher, users UserLookup, push PushSender, log *zap.Logger) *Listener {
	return &Listener{
		cfg:     cfg,
		prompts: prompts,
		badges:  badges,
		users:   users,
		push:    push,
		log:     log,
	}
}

// Run connects to the feed and processes frames until the context is
// cancelled, reconnecting after transport errors. It also drives the
// periodic reconcile ticker: late prompts are discovered by polling rather
// than relying on the push path alone.
func (l *Listener) Run(ctx context.Context) error {
	if l.cfg.ReconcileInterval > 0 {
		go l.reconcileLoop(ctx)
	}

	for {
		if err := l.consume(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			l.log.Warn("feed connection lost, reconnecting", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.ReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prompts.ReconcileAll(ctx)
		}
	}
}

func (l *Listener) consume(ctx context.Context) error {
	header := http.Header{}
	if l.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+l.cfg.Token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.cfg.URL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	l.log.Info("connected to change feed", zap.String("url", l.cfg.URL))

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		l.handleFrame(ctx, frame)
	}
}

func (l *Listener) handleFrame(ctx context.Context, frame []byte) {
	var raw map[string]interface{}
	if err := json.Unmarshal(frame, &raw); err != nil {
		l.log.Debug("dropping unparseable feed frame", zap.Error(err))
		return
	}

	event, ok := decode.FeedEvent(raw)
	if !ok {
		l.log.Debug("dropping feed frame without event type")
		return
	}

	switch event.EventType {
	case model.EventReminderDue:
		l.handleReminderDue(ctx, event.Payload)
	case model.EventRequestCompleted:
		l.handleRequestCompleted(ctx, event.Payload)
	case model.EventNotificationCreated:
		l.handleNotificationCreated(ctx, event.Payload)
	case model.EventMessageCreated:
		l.handleMessageCreated(ctx, event.Payload)
	default:
		l.log.Debug("ignoring feed event", zap.String("event_type", event.EventType))
	}
}

// handleReminderDue turns a matured reminder into a targeted completion
// enqueue for the affected user.
func (l *Listener) handleReminderDue(ctx context.Context, payload map[string]interface{}) {
	n, ok := decode.Notification(payload)
	if !ok || n.RequestID == nil || !n.RequestType.Valid() {
		l.log.Debug("dropping malformed reminder-due event")
		return
	}
	l.prompts.EnqueueCompletion(ctx, n.UserID, n.RequestType, *n.RequestID)
	l.refreshBadges(ctx, n.UserID, "reminder due")
	l.pushNotification(ctx, n)
}

func (l *Listener) handleRequestCompleted(ctx context.Context, payload map[string]interface{}) {
	n, ok := decode.Notification(payload)
	if !ok || n.RequestID == nil || !n.RequestType.Valid() {
		l.log.Debug("dropping malformed request-completed event")
		return
	}
	l.prompts.EnqueueReview(ctx, n.UserID, n.RequestType, *n.RequestID)
	l.refreshBadges(ctx, n.UserID, "request completed")
	l.pushNotification(ctx, n)
}

func (l *Listener) handleNotificationCreated(ctx context.Context, payload map[string]interface{}) {
	n, ok := decode.Notification(payload)
	if !ok {
		l.log.Debug("dropping malformed notification event")
		return
	}
	l.refreshBadges(ctx, n.UserID, "notification created")
	l.pushNotification(ctx, n)
}

// handleMessageCreated refreshes the message badge for every recipient named
// on the frame.
func (l *Listener) handleMessageCreated(ctx context.Context, payload map[string]interface{}) {
	m, ok := decode.ChatMessage(payload)
	if !ok {
		l.log.Debug("dropping malformed message event")
		return
	}
	recipients := decode.IDList(payload, "recipient_ids", "recipientIds", "member_ids")
	for _, userID := range recipients {
		if userID == m.SenderID {
			continue
		}
		l.refreshBadges(ctx, userID, "message created")
	}
}

func (l *Listener) refreshBadges(ctx context.Context, userID uuid.UUID, reason string) {
	if err := l.badges.RefreshBadges(ctx, userID, reason); err != nil {
		l.log.Warn("failed to refresh badges from feed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// pushNotification pings the user's linked Telegram chat, when one exists.
func (l *Listener) pushNotification(ctx context.Context, n *model.Notification) {
	if l.push == nil {
		return
	}
	user, err := l.users.GetUserByID(ctx, n.UserID)
	if err != nil {
		l.log.Debug("skipping push, user lookup failed",
			zap.String("user_id", n.UserID.String()), zap.Error(err))
		return
	}
	if user.TelegramChatID == nil {
		return
	}
	if err := l.push.SendNotification(*user.TelegramChatID, n.Title, n.Body); err != nil {
		l.log.Warn("failed to send push notification",
			zap.String("user_id", n.UserID.String()), zap.Error(err))
	}
}
