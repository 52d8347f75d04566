package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

// Service holds the auth state of one session.
type Service struct {
	provider Provider
	profiles ProfileStore
	log      *zap.Logger

	mu      sync.Mutex
	current *domain.Principal
	subs    map[int]chan *domain.Principal
	nextSub int
}

func NewService(provider Provider, profiles ProfileStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		provider: provider,
		profiles: profiles,
		log:      log,
		subs:     make(map[int]chan *domain.Principal),
	}
}

// SignUp creates an email account. A mismatched confirmation never reaches
// the provider.
func (s *Service) SignUp(ctx context.Context, email, password, confirm string) (domain.Principal, error) {
	if password != confirm {
		return domain.Principal{}, ErrPasswordMismatch
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Principal{}, ErrMissingCredentials
	}
	if s.provider == nil {
		return domain.Principal{}, ErrNotConfigured
	}
	p, err := s.provider.SignUpWithEmail(ctx, email, password)
	if err != nil {
		return domain.Principal{}, err
	}
	s.upsertProfile(ctx, p, domain.AuthProviderEmail)
	s.set(&p)
	return p, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (domain.Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Principal{}, ErrMissingCredentials
	}
	if s.provider == nil {
		return domain.Principal{}, ErrNotConfigured
	}
	p, err := s.provider.SignInWithEmail(ctx, email, password)
	if err != nil {
		return domain.Principal{}, err
	}
	s.set(&p)
	return p, nil
}

func (s *Service) SignInFederated(ctx context.Context, idToken string) (domain.Principal, error) {
	if strings.TrimSpace(idToken) == "" {
		return domain.Principal{}, ErrMissingCredentials
	}
	if s.provider == nil {
		return domain.Principal{}, ErrNotConfigured
	}
	p, err := s.provider.SignInWithFederated(ctx, idToken)
	if err != nil {
		return domain.Principal{}, err
	}
	s.upsertProfile(ctx, p, domain.AuthProviderGoogle)
	s.set(&p)
	return p, nil
}

func (s *Service) SignOut() {
	s.set(nil)
}

// Current returns the signed-in principal, or false when signed out.
func (s *Service) Current() (domain.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Principal{}, false
	}
	return *s.current, true
}

// Watch streams auth state changes, starting with the current state. A slow
// reader only ever sees the latest state. Call cancel to stop watching.
func (s *Service) Watch() (<-chan *domain.Principal, func()) {
	ch := make(chan *domain.Principal, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- clonePrincipal(s.current)
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) set(p *domain.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = clonePrincipal(p)
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- clonePrincipal(p)
	}
}

// upsertProfile failures are logged only; the sign-in itself succeeded.
func (s *Service) upsertProfile(ctx context.Context, p domain.Principal, provider domain.AuthProvider) {
	if s.profiles == nil {
		return
	}
	profile := domain.UserProfile{
		Name:         p.DisplayName,
		Email:        p.Email,
		AuthProvider: provider,
	}
	if provider == domain.AuthProviderGoogle {
		profile.ExternalID = p.UID
	}
	if err := s.profiles.UpsertUser(ctx, profile); err != nil {
		s.log.Warn("user profile upsert failed", zap.String("uid", p.UID), zap.Error(err))
	}
}

func clonePrincipal(p *domain.Principal) *domain.Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
