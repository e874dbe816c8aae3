package signerapi

import (
	"context"
	"sync"

	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/aegis-sign/jadesigner/internal/signer"
)

type stubSigner struct {
	signFn func(ctx context.Context, req signer.SignRequest) (*signer.SignedResult, error)

	mu        sync.Mutex
	submitted map[string][]byte
	cancelled map[string]string
}

func (s *stubSigner) Sign(ctx context.Context, req signer.SignRequest) (*signer.SignedResult, error) {
	if s.signFn == nil {
		return &signer.SignedResult{CorrelationID: "corr"}, nil
	}
	return s.signFn(ctx, req)
}

func (s *stubSigner) SubmitCredential(_ context.Context, id string, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted == nil {
		s.submitted = make(map[string][]byte)
	}
	s.submitted[id] = append([]byte(nil), secret...)
	return nil
}

func (s *stubSigner) CancelRequest(_ context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled == nil {
		s.cancelled = make(map[string]string)
	}
	s.cancelled[id] = reason
	return nil
}

func newTestRegistry() *registry.Registry {
	return registry.New(registry.NewMemoryStore(registry.NewRealClock()), registry.Config{})
}
