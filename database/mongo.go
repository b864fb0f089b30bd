package database

import (
	"conference-app/model"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	USERS_COLLECTION       string = "users"
	PROFILES_COLLECTION    string = "profiles"
	CONFERENCES_COLLECTION string = "conferences"
	SPEAKERS_COLLECTION    string = "speakers"
	SESSIONS_COLLECTION    string = "sessions"
)

var mongoOperators = map[string]string{
	model.OpEQ:   "$eq",
	model.OpGT:   "$gt",
	model.OpGTEQ: "$gte",
	model.OpLT:   "$lt",
	model.OpLTEQ: "$lte",
	model.OpNE:   "$ne",
}

// MongoStore is the MongoDB backed Store. Transactions need a replica set
// or a sharded cluster.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	profiles    *mongo.Collection
	conferences *mongo.Collection
	speakers    *mongo.Collection
	sessions    *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// DBInit connects to MongoDB, checks that it answers and makes sure the
// parent-id indexes exist.
func DBInit(ctx context.Context, connString string, dbName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(connString)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the db: %v", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db is not available: %v", err)
	}

	db := client.Database(dbName)
	store := &MongoStore{
		client:      client,
		users:       db.Collection(USERS_COLLECTION),
		profiles:    db.Collection(PROFILES_COLLECTION),
		conferences: db.Collection(CONFERENCES_COLLECTION),
		speakers:    db.Collection(SPEAKERS_COLLECTION),
		sessions:    db.Collection(SESSIONS_COLLECTION),
	}

	if err := store.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]string{
		s.conferences: {"organizerUserId", "seatsAvailable"},
		s.sessions:    {"conferenceId", "speakerKeys"},
		s.speakers:    {"name"},
	}
	for collection, fields := range indexes {
		models := []mongo.IndexModel{}
		for _, field := range fields {
			models = append(models, mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}})
		}
		if _, err := collection.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("cannot create indexes on %v: %v", collection.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) GetUserData(ctx context.Context, login string) (model.UserData, error) {
	var user model.UserData
	err := findOne(ctx, s.users, login, &user)
	return user, err
}

func (s *MongoStore) SaveUserData(ctx context.Context, user model.UserData) error {
	return upsert(ctx, s.users, user.Login, user)
}

func (s *MongoStore) GetProfile(ctx context.Context, userId string) (model.Profile, error) {
	var profile model.Profile
	err := findOne(ctx, s.profiles, userId, &profile)
	return profile, err
}

func (s *MongoStore) GetProfiles(ctx context.Context, userIds []string) ([]model.Profile, error) {
	profiles := []model.Profile{}
	if err := findByIds(ctx, s.profiles, userIds, &profiles); err != nil {
		return nil, err
	}
	return orderById(userIds, profiles, func(p model.Profile) string { return p.UserId }), nil
}

func (s *MongoStore) SaveProfile(ctx context.Context, profile model.Profile) error {
	return upsert(ctx, s.profiles, profile.UserId, profile)
}

func (s *MongoStore) CreateConference(ctx context.Context, conf model.Conference) error {
	_, err := s.conferences.InsertOne(ctx, conf)
	return err
}

func (s *MongoStore) GetConference(ctx context.Context, id string) (model.Conference, error) {
	var conf model.Conference
	err := findOne(ctx, s.conferences, id, &conf)
	return conf, err
}

func (s *MongoStore) GetConferences(ctx context.Context, ids []string) ([]model.Conference, error) {
	conferences := []model.Conference{}
	if err := findByIds(ctx, s.conferences, ids, &conferences); err != nil {
		return nil, err
	}
	return orderById(ids, conferences, func(c model.Conference) string { return c.Id }), nil
}

func (s *MongoStore) SaveConference(ctx context.Context, conf model.Conference) error {
	return replace(ctx, s.conferences, conf.Id, conf)
}

func (s *MongoStore) ConferencesByOrganizer(ctx context.Context, userId string) ([]model.Conference, error) {
	conferences := []model.Conference{}
	opts := options.Find().SetSort(bson.D{{Key: model.FieldName, Value: 1}})
	err := findAll(ctx, s.conferences, bson.D{{Key: "organizerUserId", Value: userId}}, opts, &conferences)
	return conferences, err
}

func (s *MongoStore) QueryConferences(ctx context.Context, query model.ConferenceQuery) ([]model.Conference, error) {
	filter, err := conferenceFilter(query)
	if err != nil {
		return nil, err
	}

	sortBy := bson.D{}
	if query.InequalityField != "" {
		sortBy = append(sortBy, bson.E{Key: query.InequalityField, Value: 1})
	}
	sortBy = append(sortBy, bson.E{Key: model.FieldName, Value: 1})

	conferences := []model.Conference{}
	err = findAll(ctx, s.conferences, filter, options.Find().SetSort(sortBy), &conferences)
	return conferences, err
}

func (s *MongoStore) CreateSpeaker(ctx context.Context, speaker model.Speaker) error {
	_, err := s.speakers.InsertOne(ctx, speaker)
	return err
}

func (s *MongoStore) GetSpeaker(ctx context.Context, id string) (model.Speaker, error) {
	var speaker model.Speaker
	err := findOne(ctx, s.speakers, id, &speaker)
	return speaker, err
}

func (s *MongoStore) SpeakersByName(ctx context.Context, name string) ([]model.Speaker, error) {
	speakers := []model.Speaker{}
	err := findAll(ctx, s.speakers, bson.D{{Key: "name", Value: name}}, options.Find(), &speakers)
	return speakers, err
}

func (s *MongoStore) CreateSession(ctx context.Context, session model.Session) error {
	_, err := s.sessions.InsertOne(ctx, session)
	return err
}

func (s *MongoStore) GetSession(ctx context.Context, id string) (model.Session, error) {
	var session model.Session
	err := findOne(ctx, s.sessions, id, &session)
	return session, err
}

func (s *MongoStore) GetSessions(ctx context.Context, ids []string) ([]model.Session, error) {
	sessions := []model.Session{}
	if err := findByIds(ctx, s.sessions, ids, &sessions); err != nil {
		return nil, err
	}
	return orderById(ids, sessions, func(sess model.Session) string { return sess.Id }), nil
}

func (s *MongoStore) QuerySessions(ctx context.Context, query model.SessionQuery) ([]model.Session, error) {
	sessions := []model.Session{}
	err := findAll(ctx, s.sessions, sessionFilter(query), options.Find(), &sessions)
	return sessions, err
}

func (s *MongoStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("cannot start db session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func conferenceFilter(query model.ConferenceQuery) (bson.D, error) {
	if len(query.Filters) == 0 {
		return bson.D{}, nil
	}

	clauses := bson.A{}
	for _, filter := range query.Filters {
		operator, ok := mongoOperators[filter.Operator]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q", filter.Operator)
		}
		condition := bson.D{{Key: operator, Value: filter.Value}}
		if filter.Field == model.FieldTopics && filter.Operator != model.OpEQ && filter.Operator != model.OpNE {
			// range operators on an array must be satisfied by one element
			condition = bson.D{{Key: "$elemMatch", Value: condition}}
		}
		clauses = append(clauses, bson.D{{Key: filter.Field, Value: condition}})
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}

func sessionFilter(query model.SessionQuery) bson.D {
	filter := bson.D{}
	if query.ConferenceId != "" {
		filter = append(filter, bson.E{Key: "conferenceId", Value: query.ConferenceId})
	}
	if len(query.SpeakerIds) > 0 {
		filter = append(filter, bson.E{Key: "speakerKeys", Value: bson.D{{Key: "$in", Value: query.SpeakerIds}}})
	}

	typeCondition := bson.D{}
	if query.TypeOfSession != "" {
		typeCondition = append(typeCondition, bson.E{Key: "$eq", Value: query.TypeOfSession})
	}
	if query.NotType != "" {
		typeCondition = append(typeCondition, bson.E{Key: "$ne", Value: query.NotType})
	}
	if len(typeCondition) > 0 {
		filter = append(filter, bson.E{Key: "typeOfSession", Value: typeCondition})
	}

	dateCondition := bson.D{}
	if query.DateFrom != nil {
		dateCondition = append(dateCondition, bson.E{Key: "$gte", Value: *query.DateFrom})
	}
	if query.DateTo != nil {
		dateCondition = append(dateCondition, bson.E{Key: "$lte", Value: *query.DateTo})
	}
	if len(dateCondition) > 0 {
		filter = append(filter, bson.E{Key: "date", Value: dateCondition})
	}

	timeCondition := bson.D{}
	if query.TimeFrom != nil {
		timeCondition = append(timeCondition, bson.E{Key: "$gte", Value: *query.TimeFrom})
	}
	if query.TimeTo != nil {
		timeCondition = append(timeCondition, bson.E{Key: "$lte", Value: *query.TimeTo})
	}
	if len(timeCondition) > 0 {
		filter = append(filter, bson.E{Key: "startTime", Value: timeCondition})
	}
	return filter
}

func findOne(ctx context.Context, collection *mongo.Collection, id string, out interface{}) error {
	err := collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("server side problem occured while reading %v from database: %v", collection.Name(), err)
	}
	return nil
}

func findByIds(ctx context.Context, collection *mongo.Collection, ids []string, out interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
	return findAll(ctx, collection, filter, options.Find(), out)
}

func findAll(ctx context.Context, collection *mongo.Collection, filter interface{}, opts *options.FindOptions, out interface{}) error {
	cur, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("server side problem occured while reading %v from database: %v", collection.Name(), err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("server side problem occured while reading %v from database: %v", collection.Name(), err)
	}
	return nil
}

func upsert(ctx context.Context, collection *mongo.Collection, id string, doc interface{}) error {
	_, err := collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("cannot write to %v: %v", collection.Name(), err)
	}
	return nil
}

func replace(ctx context.Context, collection *mongo.Collection, id string, doc interface{}) error {
	res, err := collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc)
	if err != nil {
		return fmt.Errorf("cannot write to %v: %v", collection.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func orderById[T any](ids []string, items []T, idOf func(T) string) []T {
	byId := make(map[string]T, len(items))
	for _, item := range items {
		byId[idOf(item)] = item
	}
	ordered := make([]T, 0, len(items))
	for _, id := range ids {
		if item, ok := byId[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered
}
