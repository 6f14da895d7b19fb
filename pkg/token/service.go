// Package token implements the get-token operation: resolve an identity by a
// field value, then issue or reuse its token for a service.
//
// Settings are loaded once per call and every catalog and engine is built from
// that snapshot, so a settings change never takes effect halfway through.
package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tendant/simple-token/pkg/authz"
	"github.com/tendant/simple-token/pkg/client"
	"github.com/tendant/simple-token/pkg/clock"
	"github.com/tendant/simple-token/pkg/credential"
	"github.com/tendant/simple-token/pkg/errors"
	"github.com/tendant/simple-token/pkg/fields"
	"github.com/tendant/simple-token/pkg/identity"
	"github.com/tendant/simple-token/pkg/services"
	"github.com/tendant/simple-token/pkg/settings"
)

// Stores groups the collaborators the token service reads and writes
type Stores struct {
	Settings    settings.Store
	Identities  identity.Repository
	Services    services.Repository
	Credentials credential.Repository
}

// Recorder observes issuance and request outcomes
type Recorder interface {
	credential.Recorder
	RequestCompleted(code string)
}

type nopRecorder struct{}

func (nopRecorder) TokenIssued(string, bool)     {}
func (nopRecorder) TokenSwept(credential.Reason) {}
func (nopRecorder) RequestCompleted(string)      {}

// Response is returned by GetToken. ExpiresAt is nil when the token never expires.
type Response struct {
	UserID    int64      `json:"userid"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresat"`
}

// Service answers token requests
type Service struct {
	stores     Stores
	authorizer authz.Authorizer
	publisher  EventPublisher
	recorder   Recorder
	clock      clock.Clock
	validate   *validator.Validate
}

type Option func(*Service)

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func NewService(stores Stores, authorizer authz.Authorizer, opts ...Option) *Service {
	s := &Service{
		stores:     stores,
		authorizer: authorizer,
		publisher:  SlogPublisher{},
		recorder:   nopRecorder{},
		clock:      clock.System{},
		validate:   newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetToken resolves the identity whose idType field equals idValue and returns
// its token for service.
func (s *Service) GetToken(ctx context.Context, idType, idValue, service string) (resp Response, err error) {
	defer func() {
		code := "OK"
		if err != nil {
			code = string(errors.GetCode(err))
		}
		s.recorder.RequestCompleted(code)
	}()

	if err := validateRequest(s.validate, Request{IDType: idType, IDValue: idValue, Service: service}); err != nil {
		return Response{}, err
	}

	snap, err := settings.Load(ctx, s.stores.Settings)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		return Response{}, errors.InternalWrap(err, "failed to load settings")
	}

	resolver := identity.NewResolver(fields.NewCatalog(s.stores.Identities, snap), s.stores.Identities)
	found, err := resolver.Resolve(ctx, idType, idValue)
	if err != nil {
		return Response{}, err
	}
	if found == nil {
		slog.Info("no identity matched", "field", idType)
		return Response{}, errors.NoSuchIdentity()
	}

	issuer := credential.NewIssuer(
		s.authorizer,
		services.NewCatalog(s.stores.Services, snap),
		s.stores.Credentials,
		snap.TokenLifetime,
		credential.WithClock(s.clock),
		credential.WithRecorder(s.recorder),
	)
	result, err := issuer.Issue(ctx, found.ID, service)
	if err != nil {
		return Response{}, err
	}

	s.publisher.Publish(ctx, TokenGenerated{
		ID:        uuid.New(),
		UserID:    found.ID,
		ServiceID: result.ServiceID,
		Service:   service,
		Reused:    result.Reused,
		CallerID:  callerID(ctx),
		Time:      s.clock.Now(),
	})

	return Response{
		UserID:    found.ID,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt(),
	}, nil
}

func callerID(ctx context.Context) string {
	if caller, ok := client.GetAuthUser(ctx); ok {
		return caller.UserId
	}
	return "system"
}

// FieldStatus is a supported match field and whether it is enabled
type FieldStatus struct {
	Key     string
	Label   string
	Custom  bool
	Enabled bool
}

// ListFields returns the supported match fields except id, which is always enabled.
// Requires the token:configure capability.
func (s *Service) ListFields(ctx context.Context) ([]FieldStatus, error) {
	if err := s.authorizer.Require(ctx, authz.CapabilityConfigure, 0); err != nil {
		return nil, err
	}

	snap, err := settings.Load(ctx, s.stores.Settings)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to load settings")
	}

	catalog := fields.NewCatalog(s.stores.Identities, snap)
	supported, err := catalog.SupportedFields(ctx)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list fields")
	}

	result := make([]FieldStatus, 0, len(supported))
	for _, d := range supported {
		if b, ok := d.Key.BuiltIn(); ok && b == fields.ID {
			continue
		}
		result = append(result, FieldStatus{
			Key:     d.Key.String(),
			Label:   d.Label,
			Custom:  d.Key.Kind() == fields.KindCustom,
			Enabled: catalog.IsFieldEnabled(d.Key.String()),
		})
	}
	return result, nil
}

// ServiceStatus is a supported service and whether tokens may be issued for it
type ServiceStatus struct {
	services.Service
	TokenEnabled bool
}

// ListServices returns the supported services ordered by name.
// Requires the token:configure capability.
func (s *Service) ListServices(ctx context.Context) ([]ServiceStatus, error) {
	if err := s.authorizer.Require(ctx, authz.CapabilityConfigure, 0); err != nil {
		return nil, err
	}

	snap, err := settings.Load(ctx, s.stores.Settings)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to load settings")
	}

	catalog := services.NewCatalog(s.stores.Services, snap)
	supported, err := catalog.ListSupported(ctx)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list services")
	}

	result := make([]ServiceStatus, 0, len(supported))
	for _, svc := range supported {
		result = append(result, ServiceStatus{Service: svc, TokenEnabled: catalog.IsServiceEnabled(svc.Shortname)})
	}
	return result, nil
}
