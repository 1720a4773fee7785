package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/shared"
	"gorm.io/gorm"
)

type FavoritesService struct {
	service *pokedex.Service
	logger  logging.Logger
}

var _ pokedex.FavoritesServiceInterface = (*FavoritesService)(nil)

func NewFavoritesService(s *pokedex.Service) pokedex.FavoritesServiceInterface {
	return &FavoritesService{
		service: s,
		logger:  s.LoggerFactory().CreateLogger("favorites"),
	}
}

// Favorite records the pair; favoriting twice keeps a single row
func (fs *FavoritesService) Favorite(ctx context.Context, userID uuid.UUID, pokemonID uint) error {
	if err := fs.service.FavoriteRepo.Create(ctx, userID, pokemonID); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("favorite user %s pokemon %d: %w", userID, pokemonID, pokedex.ErrNotFound)
		}
		fs.logger.Error("Failed to favorite", err, map[string]interface{}{
			"user_id":    userID.String(),
			"pokemon_id": pokemonID,
		})
		return err
	}

	fs.service.Metrics.IncFavorite("add")
	fs.logger.Debug("Favorited", map[string]interface{}{
		"user_id":    userID.String(),
		"pokemon_id": pokemonID,
	})
	return nil
}

// Unfavorite removes the pair; removing an absent pair is not an error
func (fs *FavoritesService) Unfavorite(ctx context.Context, userID uuid.UUID, pokemonID uint) error {
	if err := fs.service.FavoriteRepo.Delete(ctx, userID, pokemonID); err != nil {
		fs.logger.Error("Failed to unfavorite", err, map[string]interface{}{
			"user_id":    userID.String(),
			"pokemon_id": pokemonID,
		})
		return err
	}
	fs.service.Metrics.IncFavorite("remove")
	return nil
}

func (fs *FavoritesService) IsFavorited(ctx context.Context, userID uuid.UUID, pokemonID uint) (bool, error) {
	return fs.service.FavoriteRepo.Exists(ctx, userID, pokemonID)
}

// ListFavorites returns the user's favorited Pokemon, newest first
func (fs *FavoritesService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]shared.FavoriteView, error) {
	favorites, err := fs.service.FavoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]shared.FavoriteView, 0, len(favorites))
	for _, f := range favorites {
		if f.Pokemon == nil {
			continue
		}
		views = append(views, shared.FavoriteView{
			Pokemon:     shared.NewPokemonView(f.Pokemon).WithFavorite(true),
			FavoritedAt: f.CreatedAt,
		})
	}
	return views, nil
}

func (fs *FavoritesService) FavoritedSet(ctx context.Context, userID uuid.UUID, pokemonIDs []uint) (map[uint]bool, error) {
	return fs.service.FavoriteRepo.FavoritedSet(ctx, userID, pokemonIDs)
}
