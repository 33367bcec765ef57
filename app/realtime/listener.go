package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/leadboard/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const maxReconnectBackoff = 30 * time.Second

// NotificationConn is the part of *pgx.Conn the listener needs
type NotificationConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// ConnectFunc opens a dedicated connection for LISTEN
type ConnectFunc func(ctx context.Context) (NotificationConn, error)

// PgxConnector dials dsn with pgx
func PgxConnector(dsn string) ConnectFunc {
	return func(ctx context.Context) (NotificationConn, error) {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Listener relays NOTIFY payloads from Postgres into a Hub
type Listener struct {
	connect ConnectFunc
	channel string
	backoff time.Duration
	hub     *Hub
	now     func() time.Time
}

func NewListener(connect ConnectFunc, hub *Hub, backoff time.Duration) *Listener {
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &Listener{
		connect: connect,
		channel: utils.ChangeFeedChannel,
		backoff: backoff,
		hub:     hub,
		now:     utils.UTCNow,
	}
}

// Run listens until ctx is cancelled, reconnecting with exponential backoff
func (l *Listener) Run(ctx context.Context) error {
	delay := l.backoff
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		logrus.WithError(err).WithField("retry_in", delay.String()).Warn("change feed connection lost")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		if errors.Is(err, errListenEstablished) {
			delay = l.backoff
		} else {
			delay = min(delay*2, maxReconnectBackoff)
		}
	}
}

// errListenEstablished wraps failures that happened after LISTEN succeeded, which reset the backoff
var errListenEstablished = errors.New("listen established")

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}
	logrus.WithField("channel", l.channel).Info("change feed listening")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", errListenEstablished, err)
		}

		ev, err := decodeNotification(n.Payload, l.now())
		if err != nil {
			logrus.WithError(err).WithField("payload", n.Payload).Warn("ignoring malformed change notification")
			continue
		}
		l.hub.Publish(ctx, ev)
	}
}

func decodeNotification(payload string, at time.Time) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, err
	}
	if ev.Table == "" || ev.ID == "" {
		return Event{}, errors.New("missing table or id")
	}
	ev.At = at
	return ev, nil
}
