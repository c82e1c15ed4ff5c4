// Package event parses provider webhook notifications into a closed set of
// event kinds and routes each kind to exactly one Handler method.
package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

const (
	typePrefix = "epayments.payment."
	typeSuffix = ".v1"
)

var (
	ErrMalformed   = errors.New("malformed webhook body")
	ErrUnknownType = errors.New("unknown webhook event type")
)

// Handler reacts to each event kind. Adding a kind without a method here does not compile.
type Handler interface {
	OnCreated(ctx context.Context, e Created) error
	OnAborted(ctx context.Context, e Aborted) error
	OnExpired(ctx context.Context, e Expired) error
	OnCancelled(ctx context.Context, e Cancelled) error
	OnCaptured(ctx context.Context, e Captured) error
	OnRefunded(ctx context.Context, e Refunded) error
	OnAuthorized(ctx context.Context, e Authorized) error
	OnTerminated(ctx context.Context, e Terminated) error
}

// Kind is implemented only by the event types in this package.
type Kind interface {
	Info() Meta
	Status() entity.PaymentStatus
	dispatch(ctx context.Context, h Handler) error
}

// Meta is shared by every event kind.
type Meta struct {
	Type         string
	Reference    string
	PSPReference string
	Amount       *entity.Amount
}

type (
	Created    struct{ Meta }
	Aborted    struct{ Meta }
	Expired    struct{ Meta }
	Cancelled  struct{ Meta }
	Captured   struct{ Meta }
	Refunded   struct{ Meta }
	Authorized struct{ Meta }
	Terminated struct{ Meta }
)

func (e Created) Info() Meta    { return e.Meta }
func (e Aborted) Info() Meta    { return e.Meta }
func (e Expired) Info() Meta    { return e.Meta }
func (e Cancelled) Info() Meta  { return e.Meta }
func (e Captured) Info() Meta   { return e.Meta }
func (e Refunded) Info() Meta   { return e.Meta }
func (e Authorized) Info() Meta { return e.Meta }
func (e Terminated) Info() Meta { return e.Meta }

func (Created) Status() entity.PaymentStatus    { return entity.PaymentStatusCreated }
func (Aborted) Status() entity.PaymentStatus    { return entity.PaymentStatusAborted }
func (Expired) Status() entity.PaymentStatus    { return entity.PaymentStatusExpired }
func (Cancelled) Status() entity.PaymentStatus  { return entity.PaymentStatusCancelled }
func (Captured) Status() entity.PaymentStatus   { return entity.PaymentStatusCaptured }
func (Refunded) Status() entity.PaymentStatus   { return entity.PaymentStatusRefunded }
func (Authorized) Status() entity.PaymentStatus { return entity.PaymentStatusAuthorized }
func (Terminated) Status() entity.PaymentStatus { return entity.PaymentStatusTerminated }

func (e Created) dispatch(ctx context.Context, h Handler) error    { return h.OnCreated(ctx, e) }
func (e Aborted) dispatch(ctx context.Context, h Handler) error    { return h.OnAborted(ctx, e) }
func (e Expired) dispatch(ctx context.Context, h Handler) error    { return h.OnExpired(ctx, e) }
func (e Cancelled) dispatch(ctx context.Context, h Handler) error  { return h.OnCancelled(ctx, e) }
func (e Captured) dispatch(ctx context.Context, h Handler) error   { return h.OnCaptured(ctx, e) }
func (e Refunded) dispatch(ctx context.Context, h Handler) error   { return h.OnRefunded(ctx, e) }
func (e Authorized) dispatch(ctx context.Context, h Handler) error { return h.OnAuthorized(ctx, e) }
func (e Terminated) dispatch(ctx context.Context, h Handler) error { return h.OnTerminated(ctx, e) }

var constructors = map[string]func(Meta) Kind{
	"created":    func(m Meta) Kind { return Created{m} },
	"aborted":    func(m Meta) Kind { return Aborted{m} },
	"expired":    func(m Meta) Kind { return Expired{m} },
	"cancelled":  func(m Meta) Kind { return Cancelled{m} },
	"captured":   func(m Meta) Kind { return Captured{m} },
	"refunded":   func(m Meta) Kind { return Refunded{m} },
	"authorized": func(m Meta) Kind { return Authorized{m} },
	"terminated": func(m Meta) Kind { return Terminated{m} },
}

// Envelope is the notification body as received.
type Envelope struct {
	Type string `json:"type"`
	Data struct {
		Reference    string         `json:"reference"`
		PSPReference string         `json:"pspReference"`
		Amount       *entity.Amount `json:"amount"`
	} `json:"data"`
}

// Parse decodes a notification body. It returns ErrMalformed when the body is
// not a JSON envelope with a type, and ErrUnknownType when the type is not one
// of the known kinds. The envelope is returned whenever it decoded.
func Parse(body []byte) (Kind, *Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, &env, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	name, ok := kindName(env.Type)
	if !ok {
		return nil, &env, fmt.Errorf("%w: %s", ErrUnknownType, env.Type)
	}
	newKind, ok := constructors[name]
	if !ok {
		return nil, &env, fmt.Errorf("%w: %s", ErrUnknownType, env.Type)
	}

	return newKind(Meta{
		Type:         env.Type,
		Reference:    env.Data.Reference,
		PSPReference: env.Data.PSPReference,
		Amount:       env.Data.Amount,
	}), &env, nil
}

// Dispatch routes the event to its handler method.
func Dispatch(ctx context.Context, h Handler, k Kind) error {
	return k.dispatch(ctx, h)
}

func kindName(eventType string) (string, bool) {
	if !strings.HasPrefix(eventType, typePrefix) || !strings.HasSuffix(eventType, typeSuffix) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(eventType, typePrefix), typeSuffix)
	return name, name != ""
}
