// Package audit stamps creation and modification metadata on entities before they are saved.
package audit

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/zap"
	apperrors "graphderive/backend/pkg/errors"
	"graphderive/backend/pkg/logger"
)

// Event is raised by the repository for each entity about to be written
type Event struct {
	Entity any
}

// Listener is notified synchronously before every save
type Listener interface {
	OnPreSave(ctx context.Context, event Event)
}

// Handler stamps audit metadata on entity in place
type Handler interface {
	MarkAudited(ctx context.Context, entity any)
}

// Auditable is implemented by entities that carry audit metadata
type Auditable interface {
	IsNew() bool
	SetCreatedAt(time.Time)
	SetCreatedBy(string)
	SetLastModifiedAt(time.Time)
	SetLastModifiedBy(string)
}

// AuditorAware supplies the principal responsible for the current change
type AuditorAware interface {
	CurrentAuditor(ctx context.Context) (string, bool)
}

type principalKey struct{}

// WithPrincipal returns a context carrying the acting principal
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// Principal returns the principal stored by WithPrincipal
func Principal(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey{}).(string); ok {
		return p
	}
	return ""
}

// ContextAuditor reads the principal from the request context
type ContextAuditor struct{}

func (ContextAuditor) CurrentAuditor(ctx context.Context) (string, bool) {
	p := Principal(ctx)
	return p, p != ""
}

// IsNewAwareHandler sets created fields on new entities and modified fields on every save.
// Entities that do not implement Auditable are left untouched.
type IsNewAwareHandler struct {
	now     func() time.Time
	auditor AuditorAware
	// ModifyOnCreation also stamps the modified fields when an entity is first created
	ModifyOnCreation bool
}

// NewIsNewAwareHandler creates a handler using the wall clock and auditor
func NewIsNewAwareHandler(auditor AuditorAware) *IsNewAwareHandler {
	return &IsNewAwareHandler{now: time.Now, auditor: auditor, ModifyOnCreation: true}
}

// WithClock replaces the time source
func (h *IsNewAwareHandler) WithClock(now func() time.Time) *IsNewAwareHandler {
	h.now = now
	return h
}

func (h *IsNewAwareHandler) MarkAudited(ctx context.Context, entity any) {
	a, ok := entity.(Auditable)
	if !ok || isNil(entity) {
		return
	}

	now := h.now().UTC()
	principal, hasPrincipal := "", false
	if h.auditor != nil {
		principal, hasPrincipal = h.auditor.CurrentAuditor(ctx)
	}

	isNew := a.IsNew()
	if isNew {
		a.SetCreatedAt(now)
		if hasPrincipal {
			a.SetCreatedBy(principal)
		}
	}
	if !isNew || h.ModifyOnCreation {
		a.SetLastModifiedAt(now)
		if hasPrincipal {
			a.SetLastModifiedBy(principal)
		}
	}
}

// EventListener forwards pre-save events to a lazily created Handler
type EventListener struct {
	factory func() Handler
	logger  *zap.Logger
}

// NewEventListener creates a listener resolving its handler through factory on each event
func NewEventListener(factory func() Handler) (*EventListener, error) {
	if factory == nil {
		return nil, apperrors.ErrAuditHandlerMissing
	}
	return &EventListener{factory: factory, logger: logger.Named("audit")}, nil
}

// OnPreSave marks the event's entity as audited; events without an entity are ignored
func (l *EventListener) OnPreSave(ctx context.Context, event Event) {
	if isNil(event.Entity) {
		return
	}
	handler := l.factory()
	if handler == nil {
		l.logger.Warn("Audit handler factory returned nil")
		return
	}
	handler.MarkAudited(ctx, event.Entity)
}

// isNil also catches typed nils such as a nil *Node stored in an interface
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
