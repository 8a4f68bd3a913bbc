package repository

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"repocast/internal/models"
)

// EpisodeMongo provides Mongo-backed persistence for generated episodes.
type EpisodeMongo struct {
	col *mongo.Collection
}

// NewEpisodeRepository returns an EpisodeMongo that operates on the
// "episodes" collection.
func NewEpisodeRepository(db *mongo.Database) *EpisodeMongo {
	return &EpisodeMongo{
		col: db.Collection("episodes"),
	}
}

// FindByID returns the episode with the given "owner/name" key.
// When the document is not found, it returns an empty Episode and a nil error
// so callers can decide to regenerate.
func (r *EpisodeMongo) FindByID(ctx context.Context, id string) (models.Episode, error) {
	var ep models.Episode
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&ep)
	if err == mongo.ErrNoDocuments {
		return models.Episode{}, nil
	}
	if err != nil {
		log.Printf("[Episode Repository] find by id %s: %v", id, err)
		return models.Episode{}, err
	}
	return ep, nil
}

// Upsert inserts or replaces the episode with the same _id.
func (r *EpisodeMongo) Upsert(ctx context.Context, ep models.Episode) error {
	log.Printf("[Episode Repository] upserting episode %s (%d citations, %d audio bytes)",
		ep.ID, len(ep.Data.Citations), len(ep.Audio))

	_, err := r.col.ReplaceOne(
		ctx,
		bson.M{"_id": ep.ID},
		ep,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		log.Printf("[Episode Repository] upsert %s: %v", ep.ID, err)
	}
	return err
}
