package repo

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studybuddy/internal/domain"
	"studybuddy/internal/feature/reservation"
	"studybuddy/internal/feature/room"
	"studybuddy/internal/feature/session"
	"studybuddy/internal/feature/user"
)

const (
	colUsers        = "users"
	colRooms        = "study_rooms"
	colSessions     = "study_sessions"
	colReservations = "reservations"
)

// NewMongo 建立唯一索引后返回文档库仓储
func NewMongo(ctx context.Context, db *mongo.Database) (Set, error) {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		colRooms: {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		colSessions: {
			{Keys: bson.D{{Key: "location", Value: 1}, {Key: "startTime", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "subject", Value: 1}}},
		},
		colReservations: {
			{Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "sessionId", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return Set{}, err
		}
	}
	return Set{
		Users:        &MongoUsers{c: collection[user.UserModel]{db.Collection(colUsers)}},
		Rooms:        &MongoRooms{c: collection[room.RoomModel]{db.Collection(colRooms)}},
		Sessions:     &MongoSessions{c: collection[session.SessionModel]{db.Collection(colSessions)}},
		Reservations: &MongoReservations{c: collection[reservation.ReservationModel]{db.Collection(colReservations)}},
	}, nil
}

type collection[M any] struct{ col *mongo.Collection }

func (c collection[M]) find(ctx context.Context, filter bson.M, sort bson.D) ([]M, error) {
	cur, err := c.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []M
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// one 未找到返回 (nil, nil)
func (c collection[M]) one(ctx context.Context, filter bson.M) (*M, error) {
	var m M
	err := c.col.FindOne(ctx, filter).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c collection[M]) insert(ctx context.Context, m *M) error {
	_, err := c.col.InsertOne(ctx, m)
	return mongoErr(err)
}

func (c collection[M]) replace(ctx context.Context, id string, m *M) (bool, error) {
	res, err := c.col.ReplaceOne(ctx, bson.M{"_id": id}, m)
	if err != nil {
		return false, mongoErr(err)
	}
	return res.MatchedCount > 0, nil
}

func (c collection[M]) delete(ctx context.Context, id string) (bool, error) {
	res, err := c.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func mongoErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

var byCreated = bson.D{{Key: "createdAt", Value: 1}}

// ---------- users ----------

type MongoUsers struct{ c collection[user.UserModel] }

func (r *MongoUsers) FindAll(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	ms, err := r.c.find(ctx, filter, byCreated)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *MongoUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return userOut(r.c.one(ctx, bson.M{"_id": id}))
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return userOut(r.c.one(ctx, bson.M{"email": email}))
}

func (r *MongoUsers) Insert(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	m := user.FromDomain(*u)
	return r.c.insert(ctx, &m)
}

func (r *MongoUsers) UpdateByID(ctx context.Context, id string, u domain.User) (*domain.User, error) {
	u.ID = id
	m := user.FromDomain(u)
	if ok, err := r.c.replace(ctx, id, &m); err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUsers) DeleteByID(ctx context.Context, id string) (bool, error) {
	return r.c.delete(ctx, id)
}

// ---------- rooms ----------

type MongoRooms struct{ c collection[room.RoomModel] }

func (r *MongoRooms) FindAll(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error) {
	filter := bson.M{}
	if f.Available != nil {
		filter["available"] = *f.Available
	}
	if f.MinCapacity != nil {
		filter["capacity"] = bson.M{"$gte": *f.MinCapacity}
	}
	ms, err := r.c.find(ctx, filter, byCreated)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *MongoRooms) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	return roomOut(r.c.one(ctx, bson.M{"_id": id}))
}

func (r *MongoRooms) FindByName(ctx context.Context, name string) (*domain.Room, error) {
	return roomOut(r.c.one(ctx, bson.M{"name": name}))
}

func (r *MongoRooms) Insert(ctx context.Context, rm *domain.Room) error {
	if rm.ID == "" {
		rm.ID = NewID()
	}
	m := room.FromDomain(*rm)
	return r.c.insert(ctx, &m)
}

func (r *MongoRooms) UpdateByID(ctx context.Context, id string, rm domain.Room) (*domain.Room, error) {
	rm.ID = id
	m := room.FromDomain(rm)
	if ok, err := r.c.replace(ctx, id, &m); err != nil || !ok {
		return nil, err
	}
	out := m.ToDomain()
	return &out, nil
}

func (r *MongoRooms) DeleteByID(ctx context.Context, id string) (bool, error) {
	return r.c.delete(ctx, id)
}

// ---------- sessions ----------

type MongoSessions struct {
	c collection[session.SessionModel]
}

func (r *MongoSessions) FindAll(ctx context.Context, f domain.SessionFilter) ([]domain.Session, error) {
	filter := bson.M{}
	if f.Subject != "" {
		filter["subject"] = bson.M{"$regex": regexp.QuoteMeta(f.Subject), "$options": "i"}
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.MinCapacity != nil {
		filter["capacity"] = bson.M{"$gte": *f.MinCapacity}
	}
	if f.Public != nil {
		filter["public"] = *f.Public
	}
	if f.Location != "" {
		filter["location"] = f.Location
	}
	if f.StartTime != nil {
		filter["startTime"] = f.StartTime.UTC()
	}
	ms, err := r.c.find(ctx, filter, bson.D{{Key: "startTime", Value: 1}})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *MongoSessions) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	m, err := r.c.one(ctx, bson.M{"_id": id})
	if m == nil || err != nil {
		return nil, err
	}
	s := m.ToDomain()
	return &s, nil
}

func (r *MongoSessions) Insert(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	m := session.FromDomain(*s)
	return r.c.insert(ctx, &m)
}

func (r *MongoSessions) UpdateByID(ctx context.Context, id string, s domain.Session) (*domain.Session, error) {
	s.ID = id
	m := session.FromDomain(s)
	if ok, err := r.c.replace(ctx, id, &m); err != nil || !ok {
		return nil, err
	}
	out := m.ToDomain()
	return &out, nil
}

func (r *MongoSessions) DeleteByID(ctx context.Context, id string) (bool, error) {
	return r.c.delete(ctx, id)
}

// ---------- reservations ----------

type MongoReservations struct {
	c collection[reservation.ReservationModel]
}

func (r *MongoReservations) FindAll(ctx context.Context, f domain.ReservationFilter) ([]domain.Reservation, error) {
	filter := bson.M{}
	if f.RoomID != "" {
		filter["roomId"] = f.RoomID
	}
	if f.SessionID != "" {
		filter["sessionId"] = f.SessionID
	}
	if f.User != "" {
		filter["user"] = f.User
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	ms, err := r.c.find(ctx, filter, bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *MongoReservations) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	m, err := r.c.one(ctx, bson.M{"_id": id})
	if m == nil || err != nil {
		return nil, err
	}
	d := m.ToDomain()
	return &d, nil
}

func (r *MongoReservations) Insert(ctx context.Context, res *domain.Reservation) error {
	if res.ID == "" {
		res.ID = NewID()
	}
	m := reservation.FromDomain(*res)
	return r.c.insert(ctx, &m)
}

func (r *MongoReservations) UpdateByID(ctx context.Context, id string, res domain.Reservation) (*domain.Reservation, error) {
	res.ID = id
	m := reservation.FromDomain(res)
	if ok, err := r.c.replace(ctx, id, &m); err != nil || !ok {
		return nil, err
	}
	out := m.ToDomain()
	return &out, nil
}

func (r *MongoReservations) DeleteByID(ctx context.Context, id string) (bool, error) {
	return r.c.delete(ctx, id)
}
