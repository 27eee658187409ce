package integrations

import (
	"go.uber.org/zap"

	"kv-shepherd.io/shepherd/internal/pkg/logger"
)

// Notifications is the audit-style logging collaborator named in
// spec.md §6: every Service mutation reports here, and synchronize()
// failures that happen after a successful append (§7) are surfaced
// through it rather than failing the request.
type Notifications interface {
	Notify(action, resourceType, resourceID, actor string, details map[string]any)
	EmitLine(line string)
}

// ZapNotifications is the production Notifications, backed by the
// structured logger (mirrors the teacher's governance/audit.Logger,
// minus the persisted audit table — this spec has no audit-log
// entity, only diagnostics).
type ZapNotifications struct{}

// NewZapNotifications returns a ZapNotifications.
func NewZapNotifications() *ZapNotifications {
	return &ZapNotifications{}
}

// Notify logs an auditable action.
func (ZapNotifications) Notify(action, resourceType, resourceID, actor string, details map[string]any) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("resource_type", resourceType),
		zap.String("resource_id", resourceID),
		zap.String("actor", actor),
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("details", details))
	}
	logger.Info("audit", fields...)
}

// EmitLine writes a free-form diagnostic line (e.g. for CLI tooling).
func (ZapNotifications) EmitLine(line string) {
	logger.Info(line)
}

// RecordingNotifications is a test double that stores every
// notification instead of logging it.
type RecordingNotifications struct {
	Actions []string
	Lines   []string
}

// Notify records the action name.
func (r *RecordingNotifications) Notify(action, _, _, _ string, _ map[string]any) {
	r.Actions = append(r.Actions, action)
}

// EmitLine records the diagnostic line.
func (r *RecordingNotifications) EmitLine(line string) {
	r.Lines = append(r.Lines, line)
}
