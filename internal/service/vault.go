// Package service provides the vault business logic, delegating persistence
// to a SecretRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/secretkeeper/internal/models"
	"github.com/atinyakov/secretkeeper/internal/secrets"
	"github.com/atinyakov/secretkeeper/internal/vault"
)

// ErrNotCreditCard is returned when a card operation targets another kind
// of secret.
var ErrNotCreditCard = errors.New("secret is not a credit card")

// SecretRepository defines the persistence operations needed by the VaultService.
type SecretRepository interface {
	// ListRecords returns every live record of owner in creation order.
	ListRecords(ctx context.Context, owner string) ([]models.Record, error)
	// GetRecord returns the live record called name, or an error matching
	// vault.ErrNotFound.
	GetRecord(ctx context.Context, owner, name string) (*models.Record, error)
	// InsertRecord stores a new record and fails with vault.ErrDuplicateName
	// when a live record already has its name.
	InsertRecord(ctx context.Context, rec models.Record) error
	// UpsertRecord inserts or overwrites the record with the same owner and name.
	UpsertRecord(ctx context.Context, rec models.Record) error
	// RenameRecord retires oldName and stores rec in one step.
	RenameRecord(ctx context.Context, oldName string, rec models.Record) error
	// DeleteRecords soft-deletes the named records of owner.
	DeleteRecords(ctx context.Context, owner string, names []string, version int64) error
}

// CreditCardInput carries the fields of a new credit card.
type CreditCardInput struct {
	Name       string `json:"name"`
	FolderName string `json:"folder"`
	FullName   string `json:"full_name"`
	Number     string `json:"number"`
	Cvc        string `json:"cvc"`
	ExpiryDate string `json:"expiry"`
}

// CreditCardPatch lists the card fields to change. Nil fields are kept.
type CreditCardPatch struct {
	FullName   *string `json:"full_name,omitempty"`
	Number     *string `json:"number,omitempty"`
	Cvc        *string `json:"cvc,omitempty"`
	ExpiryDate *string `json:"expiry,omitempty"`
}

// Apply returns a copy of card with the patch applied. card itself is
// never modified.
func (p CreditCardPatch) Apply(card *secrets.CreditCard) (*secrets.CreditCard, error) {
	updated := card.Clone()
	if p.Number != nil {
		if err := updated.SetCreditCardNumber(*p.Number); err != nil {
			return nil, err
		}
	}
	if p.ExpiryDate != nil {
		if err := updated.SetExpiryDate(*p.ExpiryDate); err != nil {
			return nil, err
		}
	}
	if p.Cvc != nil {
		if err := updated.SetCvcNumber(*p.Cvc); err != nil {
			return nil, err
		}
	}
	if p.FullName != nil {
		updated.SetFullName(*p.FullName)
	}
	return updated, nil
}

// VaultService implements the secret operations of one owner at a time.
type VaultService struct {
	repo SecretRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewVaultService constructs a VaultService. A nil logger discards output.
func NewVaultService(repo SecretRepository, log *zap.Logger) *VaultService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VaultService{repo: repo, log: log, now: time.Now}
}

// load rebuilds owner's vault from the repository. Records that no longer
// decode are logged and left out.
func (s *VaultService) load(ctx context.Context, owner string) (*vault.Vault, error) {
	recs, err := s.repo.ListRecords(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load vault: %w", err)
	}
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = r.Line
	}
	v := vault.New()
	v.Load(lines, func(i int, err error) {
		s.log.Warn("skipping unreadable secret",
			zap.String("owner", owner),
			zap.String("name", recs[i].Name),
			zap.Error(err),
		)
	})
	return v, nil
}

func (s *VaultService) record(owner string, sec secrets.Secret) models.Record {
	return models.Record{
		Owner:   owner,
		Name:    sec.Name(),
		Type:    sec.Type(),
		Line:    sec.StringForDatabase(),
		Version: s.now().Unix(),
	}
}

// AddCreditCard validates and stores a new credit card for owner.
func (s *VaultService) AddCreditCard(ctx context.Context, owner string, in CreditCardInput) (*secrets.CreditCard, error) {
	if in.Name == "" || secrets.IsIllegalName(in.Name) {
		return nil, fmt.Errorf("%w: %q", vault.ErrIllegalName, in.Name)
	}
	card, err := secrets.AddCreditCard(in.Name, in.FolderName, in.FullName, in.Number, in.Cvc, in.ExpiryDate)
	if err != nil {
		return nil, err
	}

	v, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := v.Add(card); err != nil {
		return nil, err
	}
	if err := s.repo.InsertRecord(ctx, s.record(owner, card)); err != nil {
		return nil, err
	}
	s.log.Info("credit card added", zap.String("owner", owner), zap.String("name", card.Name()))
	return card, nil
}

// UpdateCreditCard applies patch to the card called name. Either every
// field in the patch is applied or none is.
func (s *VaultService) UpdateCreditCard(ctx context.Context, owner, name string, patch CreditCardPatch) (*secrets.CreditCard, error) {
	sec, err := s.Get(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	card, ok := sec.(*secrets.CreditCard)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotCreditCard, name)
	}

	updated, err := patch.Apply(card)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertRecord(ctx, s.record(owner, updated)); err != nil {
		return nil, err
	}
	s.log.Info("credit card updated", zap.String("owner", owner), zap.String("name", name))
	return updated, nil
}

// Get returns the secret called name.
func (s *VaultService) Get(ctx context.Context, owner, name string) (secrets.Secret, error) {
	rec, err := s.repo.GetRecord(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	sec, err := secrets.Parse(rec.Line)
	if err != nil {
		s.log.Warn("skipping unreadable secret",
			zap.String("owner", owner),
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %q", vault.ErrNotFound, name)
	}
	return sec, nil
}

// Reveal renders every field of the secret called name.
func (s *VaultService) Reveal(ctx context.Context, owner, name string) (string, error) {
	sec, err := s.Get(ctx, owner, name)
	if err != nil {
		return "", err
	}
	s.log.Info("secret revealed", zap.String("owner", owner), zap.String("name", name))
	return sec.RevealStr(), nil
}

// List returns owner's secrets, restricted to folder when it is not empty.
func (s *VaultService) List(ctx context.Context, owner, folder string) ([]secrets.Secret, error) {
	v, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return v.List(folder), nil
}

// Folders returns the folder names owner's secrets are in.
func (s *VaultService) Folders(ctx context.Context, owner string) ([]string, error) {
	v, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return v.Folders(), nil
}

// Rename gives the secret called oldName the name newName.
func (s *VaultService) Rename(ctx context.Context, owner, oldName, newName string) error {
	v, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	if err := v.Rename(oldName, newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	sec, err := v.Get(newName)
	if err != nil {
		return err
	}
	if err := s.repo.RenameRecord(ctx, oldName, s.record(owner, sec)); err != nil {
		return err
	}
	s.log.Info("secret renamed", zap.String("owner", owner),
		zap.String("from", oldName), zap.String("to", newName))
	return nil
}

// Move puts the secret called name into folder.
func (s *VaultService) Move(ctx context.Context, owner, name, folder string) error {
	v, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	if err := v.Move(name, folder); err != nil {
		return err
	}
	sec, err := v.Get(name)
	if err != nil {
		return err
	}
	return s.repo.UpsertRecord(ctx, s.record(owner, sec))
}

// Delete removes the secret called name.
func (s *VaultService) Delete(ctx context.Context, owner, name string) error {
	v, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	if err := v.Delete(name); err != nil {
		return err
	}
	if err := s.repo.DeleteRecords(ctx, owner, []string{name}, s.now().Unix()); err != nil {
		return err
	}
	s.log.Info("secret deleted", zap.String("owner", owner), zap.String("name", name))
	return nil
}
