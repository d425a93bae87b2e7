package savedlists

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/maelkermann/plouf-plouf/go/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	ErrListNotFound  = errors.New("saved list not found")
	ErrListExists    = errors.New("saved list id already taken")
	ErrEmptyList     = errors.New("cannot save an empty list")
	ErrEmptyListName = errors.New("list name is required")
)

// maxIDAttempts bounds retries when two lists are saved in the same millisecond
const maxIDAttempts = 5

// Repository defines what the app layer needs from storage
type Repository interface {
	CreateList(ctx context.Context, params CreateListParams) (*models.NameList, error)
	GetList(ctx context.Context, id string) (*models.NameList, error)
	ListLists(ctx context.Context) ([]models.NameList, error)
	DeleteList(ctx context.Context, id string) error
}

// App handles saved list business logic
type App struct {
	repo  Repository
	clock clockwork.Clock
}

// NewApp creates a new saved lists App
func NewApp(repo Repository, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// SaveList stores names under a new id derived from the current time
func (a *App) SaveList(ctx context.Context, req SaveListRequest) (*models.NameList, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := a.validateSaveListRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := a.clock.Now()
	ms := now.UnixMilli()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		list, err := a.repo.CreateList(ctx, CreateListParams{
			ID:        strconv.FormatInt(ms+int64(attempt), 10),
			Name:      req.Name,
			Names:     append([]string{}, req.Names...),
			CreatedAt: now,
		})
		if errors.Is(err, ErrListExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save list: %w", err)
		}

		log.Info().
			Str("list_id", list.ID).
			Str("name", list.Name).
			Int("names", len(list.Names)).
			Msg("saved name list")
		return list, nil
	}
	return nil, fmt.Errorf("failed to save list: %w", ErrListExists)
}

// GetList retrieves a saved list by id
func (a *App) GetList(ctx context.Context, id string) (*models.NameList, error) {
	list, err := a.repo.GetList(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// ListLists returns every saved list, oldest first
func (a *App) ListLists(ctx context.Context) ([]models.NameList, error) {
	lists, err := a.repo.ListLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved lists: %w", err)
	}
	return lists, nil
}

// DeleteList removes a saved list
func (a *App) DeleteList(ctx context.Context, id string) error {
	if err := a.repo.DeleteList(ctx, id); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	log.Info().Str("list_id", id).Msg("deleted name list")
	return nil
}

func (a *App) validateSaveListRequest(req SaveListRequest) error {
	if req.Name == "" {
		return ErrEmptyListName
	}
	if len(req.Names) == 0 {
		return ErrEmptyList
	}
	return nil
}

// idLess orders ids numerically; they are millisecond timestamps.
func idLess(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr != nil || bErr != nil {
		return a < b
	}
	return ai < bi
}
