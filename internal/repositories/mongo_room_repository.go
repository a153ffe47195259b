package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vibecheck/internal/models"
)

// mongoRoomRepository implements RoomRepository using MongoDB
type mongoRoomRepository struct {
	rooms   *mongo.Collection
	entries *mongo.Collection
	client  *mongo.Client
	now     func() time.Time
}

// entryDocument is a stored SongEntry tagged with its room
type entryDocument struct {
	RoomID           string `bson:"room_id"`
	models.SongEntry `bson:",inline"`
	CreatedAt        time.Time `bson:"created_at"`
}

// NewMongoRoomRepository creates a new MongoDB-backed room repository
func NewMongoRoomRepository(db *models.Database) RoomRepository {
	return &mongoRoomRepository{
		rooms:   db.DB.Collection(models.RoomsCollection),
		entries: db.DB.Collection(models.EntriesCollection),
		client:  db.Client,
		now:     time.Now,
	}
}

// CreateRoom upserts the room, leaving an existing one untouched
func (r *mongoRoomRepository) CreateRoom(ctx context.Context, roomID, roomName string) (*models.Room, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}

	onInsert := bson.M{
		"room_id":    roomID,
		"created_at": r.now().UTC(),
	}
	if roomName != "" {
		onInsert["room_name"] = roomName
	}

	_, err := r.rooms.UpdateOne(ctx,
		bson.M{"room_id": roomID},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	var room models.Room
	if err := r.rooms.FindOne(ctx, bson.M{"room_id": roomID}).Decode(&room); err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	return &room, nil
}

// GetRoom loads the room and its entries newest first
func (r *mongoRoomRepository) GetRoom(ctx context.Context, roomID string) (*models.RoomData, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}

	data := &models.RoomData{
		RoomID:  roomID,
		Entries: []models.SongEntry{},
	}

	var room models.Room
	err := r.rooms.FindOne(ctx, bson.M{"room_id": roomID}).Decode(&room)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	data.RoomName = room.RoomName

	// _id breaks timestamp ties in insertion order
	findOptions := options.Find().SetSort(bson.D{
		{Key: "timestamp", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.entries.Find(ctx, bson.M{"room_id": roomID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find room entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []entryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode room entries: %w", err)
	}

	for _, doc := range docs {
		data.Entries = append(data.Entries, doc.SongEntry)
	}
	return data, nil
}

// AppendEntry creates the room if needed and inserts the entry
func (r *mongoRoomRepository) AppendEntry(ctx context.Context, roomID string, entry models.SongEntry) error {
	if err := validateRoomID(roomID); err != nil {
		return err
	}

	if _, err := r.CreateRoom(ctx, roomID, ""); err != nil {
		return err
	}

	doc := entryDocument{
		RoomID:    roomID,
		SongEntry: entry,
		CreatedAt: r.now().UTC(),
	}
	if _, err := r.entries.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// Health pings the primary
func (r *mongoRoomRepository) Health(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}
