package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/storage"
)

const dateLayout = "2006-01-02"

// RecitalService manages recitals and their programs. Every method that takes
// an ownerID treats recitals of other users as absent.
type RecitalService struct {
	store storage.Store
}

// NewRecitalService creates a new RecitalService with the given storage backend.
func NewRecitalService(store storage.Store) *RecitalService {
	return &RecitalService{store: store}
}

// Create stores a new recital owned by ownerID.
func (s *RecitalService) Create(ctx context.Context, ownerID string, input models.Recital) (*models.Recital, error) {
	slog.Info("CreateRecital request received", "user_id", ownerID, "name", input.Name)

	recital, err := prepareRecital(input)
	if err != nil {
		return nil, err
	}
	recital.ID = ""
	recital.OwnerID = ownerID

	if err := s.store.CreateRecital(ctx, recital); err != nil {
		slog.Error("CreateRecital failed", "error", err)
		return nil, classify(err)
	}

	slog.Info("Recital created", "recital_id", recital.ID)
	return recital, nil
}

// List returns the recitals owned by ownerID.
func (s *RecitalService) List(ctx context.Context, ownerID string) ([]*models.Recital, error) {
	recitals, err := s.store.ListRecitalsByOwner(ctx, ownerID)
	if err != nil {
		return nil, classify(err)
	}
	return recitals, nil
}

// ListAll returns a page of recitals across all owners.
func (s *RecitalService) ListAll(ctx context.Context, page storage.Page) ([]*models.Recital, error) {
	recitals, err := s.store.ListRecitals(ctx, page)
	if err != nil {
		return nil, classify(err)
	}
	return recitals, nil
}

// Get returns an owned recital with its program.
func (s *RecitalService) Get(ctx context.Context, ownerID, id string) (*models.Recital, error) {
	recital, err := s.store.GetRecital(ctx, ownerID, id)
	if err != nil {
		return nil, notFoundOr(err, msgRecitalNotFound)
	}
	return recital, nil
}

// Patch updates only the supplied fields of an owned recital.
func (s *RecitalService) Patch(ctx context.Context, ownerID, id string, patch models.RecitalPatch) (*models.Recital, error) {
	slog.Info("PatchRecital request received", "user_id", ownerID, "recital_id", id)

	if patch.Empty() {
		return nil, apperr.InvalidRequest(msgNoInformation)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.InvalidRequest(msgRecitalNameRequired)
		}
		patch.Name = &name
	}
	if patch.Date != nil && *patch.Date != "" {
		date, err := normalizeDate(*patch.Date)
		if err != nil {
			return nil, err
		}
		patch.Date = &date
	}

	recital, err := s.store.UpdateRecital(ctx, ownerID, id, patch)
	if err != nil {
		return nil, notFoundOr(err, msgRecitalNotFound)
	}

	slog.Info("Recital patched", "recital_id", id)
	return recital, nil
}

// Replace overwrites an owned recital with input. Omitted optional fields
// are cleared; the program is kept.
func (s *RecitalService) Replace(ctx context.Context, ownerID, id string, input models.Recital) (*models.Recital, error) {
	slog.Info("ReplaceRecital request received", "user_id", ownerID, "recital_id", id)

	recital, err := prepareRecital(input)
	if err != nil {
		return nil, err
	}
	recital.ID = id
	recital.OwnerID = ownerID

	if err := s.store.ReplaceRecital(ctx, recital); err != nil {
		return nil, notFoundOr(err, msgRecitalNotFound)
	}

	return s.Get(ctx, ownerID, id)
}

// Delete removes an owned recital and its program.
func (s *RecitalService) Delete(ctx context.Context, ownerID, id string) error {
	slog.Info("DeleteRecital request received", "user_id", ownerID, "recital_id", id)

	if err := s.store.DeleteRecital(ctx, ownerID, id); err != nil {
		return notFoundOr(err, msgRecitalNotFound)
	}

	slog.Info("Recital deleted", "recital_id", id)
	return nil
}

func prepareRecital(input models.Recital) (*models.Recital, error) {
	recital := input
	recital.Name = strings.TrimSpace(recital.Name)
	if recital.Name == "" {
		return nil, apperr.InvalidRequest(msgRecitalNameRequired)
	}
	if recital.Date != "" {
		date, err := normalizeDate(recital.Date)
		if err != nil {
			return nil, err
		}
		recital.Date = date
	}
	recital.Songs = nil
	return &recital, nil
}

// normalizeDate accepts YYYY-MM-DD or RFC 3339 and returns YYYY-MM-DD.
func normalizeDate(value string) (string, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.Format(dateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(dateLayout), nil
	}
	return "", apperr.InvalidRequest(msgInvalidRecitalDate)
}
