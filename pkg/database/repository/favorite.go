package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository handles database operations for the Favorite model
type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create inserts a favorite; an existing (user, pokemon) pair is left as is
func (r *FavoriteRepository) Create(ctx context.Context, userID uuid.UUID, pokemonID uint) error {
	favorite := &models.Favorite{UserID: userID, PokemonID: pokemonID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "pokemon_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(favorite).Error
}

// Delete removes the pair if present
func (r *FavoriteRepository) Delete(ctx context.Context, userID uuid.UUID, pokemonID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND pokemon_id = ?", userID, pokemonID).
		Delete(&models.Favorite{}).Error
}

// Exists reports whether the user has favorited the pokemon
func (r *FavoriteRepository) Exists(ctx context.Context, userID uuid.UUID, pokemonID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND pokemon_id = ?", userID, pokemonID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns the user's favorites with their Pokemon, newest first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		Preload("Pokemon").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favorites).Error
	return favorites, err
}

// FavoritedSet returns which of pokemonIDs the user has favorited
func (r *FavoriteRepository) FavoritedSet(ctx context.Context, userID uuid.UUID, pokemonIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool, len(pokemonIDs))
	if len(pokemonIDs) == 0 {
		return set, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND pokemon_id IN ?", userID, pokemonIDs).
		Pluck("pokemon_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Count returns the total number of favorites
func (r *FavoriteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).Count(&count).Error
	return count, err
}
