// Package businessflow contains the use cases behind every API operation.
package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client information recorded with activity entries
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// Actor is the authenticated caller of a flow
type Actor struct {
	UserID uuid.UUID
	Role   string
	AAL    string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) HasAAL2() bool {
	return a.AAL == models.AAL2
}

// markWrite feeds the realtime echo filter; tracker may be nil
func markWrite(ctx context.Context, tracker services.RecentWriteTracker, actor Actor, table string, id uuid.UUID) {
	if tracker == nil || actor.UserID == uuid.Nil {
		return
	}
	tracker.Record(ctx, actor.UserID, table, id.String())
}

// parseOptionalUUID trims s and parses it; empty means nil
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	return utils.ParseUUIDPtr(strings.TrimSpace(*s))
}

func requestLogger(ctx context.Context, flow string) *logrus.Entry {
	fields := logrus.Fields{"flow": flow}
	if rid, ok := ctx.Value(utils.RequestIDKey).(string); ok && rid != "" {
		fields["request_id"] = rid
	}
	return logrus.WithFields(fields)
}
