// Package proofstore keeps proof-of-delivery payloads in PostgreSQL.
package proofstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const refPrefix = "postgres://proofs/"

var ErrProofIsEmpty = errs.NewValueIsRequiredError("proof data")

type ProofDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index;not null"`
	ContentType string
	Data        []byte    `gorm:"type:bytea;not null"`
	CapturedAt  time.Time `gorm:"not null"`
}

func (ProofDTO) TableName() string {
	return "proofs"
}

// Store implements ports.ProofStore. Saves run outside the dispatch unit of
// work on the shared connection pool.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, orderID kernel.UUID, proof ports.Proof, capturedAt time.Time) (string, error) {
	if len(proof.Data) == 0 {
		return "", ErrProofIsEmpty
	}

	dto := ProofDTO{
		ID:          uuid.New(),
		OrderID:     orderID.Bytes(),
		ContentType: proof.ContentType,
		Data:        proof.Data,
		CapturedAt:  capturedAt,
	}
	if err := s.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return "", err
	}

	return refPrefix + dto.ID.String(), nil
}

// Load returns the proof stored under ref.
func (s *Store) Load(ctx context.Context, ref string) (ports.Proof, error) {
	raw, ok := strings.CutPrefix(ref, refPrefix)
	if !ok {
		return ports.Proof{}, errs.NewValueIsInvalidErrorWithCause("ref", errors.New("unknown proof reference"))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return ports.Proof{}, errs.NewValueIsInvalidErrorWithCause("ref", err)
	}

	var dto ProofDTO
	if err = s.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Proof{}, errs.NewObjectNotFoundError("proof", ref)
		}
		return ports.Proof{}, err
	}
	return ports.Proof{Data: dto.Data, ContentType: dto.ContentType}, nil
}
