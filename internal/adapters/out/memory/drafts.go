package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"
)

// DraftStore keeps route drafts in process memory. It is used when no redis
// is configured.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[kernel.UUID]route.Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[kernel.UUID]route.Draft)}
}

func (s *DraftStore) Get(_ context.Context, driverID kernel.UUID) (*route.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[driverID]
	if !ok {
		return nil, fmt.Errorf("%w: driver %s", ports.ErrDraftNotFound, driverID)
	}
	draft.Stops = slices.Clone(draft.Stops)
	return &draft, nil
}

func (s *DraftStore) Save(_ context.Context, draft *route.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *draft
	stored.Stops = slices.Clone(draft.Stops)
	s.drafts[draft.DriverID] = stored
	return nil
}

func (s *DraftStore) Delete(_ context.Context, driverID kernel.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, driverID)
	return nil
}

// ProofStore keeps captured proofs in process memory and hands out
// references of the form "memory://proofs/<order>/<n>".
type ProofStore struct {
	mu     sync.Mutex
	proofs map[string]ports.Proof
}

func NewProofStore() *ProofStore {
	return &ProofStore{proofs: make(map[string]ports.Proof)}
}

func (s *ProofStore) Save(_ context.Context, orderID kernel.UUID, proof ports.Proof, capturedAt time.Time) (string, error) {
	if len(proof.Data) == 0 {
		return "", fmt.Errorf("proof for order %s is empty", orderID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := fmt.Sprintf("memory://proofs/%s/%d", orderID, capturedAt.UnixNano())
	s.proofs[ref] = ports.Proof{Data: slices.Clone(proof.Data), ContentType: proof.ContentType}
	return ref, nil
}

// Load returns a stored proof by reference.
func (s *ProofStore) Load(ref string) (ports.Proof, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proof, ok := s.proofs[ref]
	return proof, ok
}
