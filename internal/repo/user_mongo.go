package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"scentify/internal/domain"
)

const userCollection = "users"

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FirstName    string             `bson:"firstName"`
	LastName     string             `bson:"lastName"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	Role         string             `bson:"role"`
	IsActive     bool               `bson:"isActive"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *userDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		IsActive:     d.IsActive,
		LastLogin:    d.LastLogin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func userSet(u *domain.UserPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if u.FirstName != nil {
		set["firstName"] = *u.FirstName
	}
	if u.LastName != nil {
		set["lastName"] = *u.LastName
	}
	if u.Email != nil {
		set["email"] = domain.NormalizeEmail(*u.Email)
	}
	if u.Role != nil {
		set["role"] = string(*u.Role)
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}
	if u.LastLogin != nil {
		set["lastLogin"] = *u.LastLogin
	}
	return set
}

type UserMongoRepo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewUserMongoRepo(db *mongo.Database) *UserMongoRepo {
	return &UserMongoRepo{col: db.Collection(userCollection), now: time.Now}
}

func dupEmail(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *UserMongoRepo) find(ctx context.Context, filter interface{}) ([]domain.User, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *UserMongoRepo) one(res *mongo.SingleResult) (*domain.User, error) {
	var d userDoc
	if err := res.Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, dupEmail(err)
	}
	u := d.toDomain()
	return &u, nil
}

func (r *UserMongoRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *UserMongoRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.one(r.col.FindOne(ctx, bson.M{"_id": oid}))
}

func (r *UserMongoRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(r.col.FindOne(ctx, bson.M{"email": domain.NormalizeEmail(email)}))
}

func (r *UserMongoRepo) Create(ctx context.Context, u *domain.User) error {
	now := r.now().UTC()
	d := userDoc{
		ID:           primitive.NewObjectID(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		LastLogin:    u.LastLogin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.col.InsertOne(ctx, d); err != nil {
		return dupEmail(err)
	}
	u.ID, u.Email, u.CreatedAt, u.UpdatedAt = d.ID.Hex(), d.Email, now, now
	return nil
}

func (r *UserMongoRepo) Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.one(r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": userSet(patch, r.now().UTC())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	))
}

func (r *UserMongoRepo) Delete(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.one(r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}))
}

func (r *UserMongoRepo) FindActive(ctx context.Context) ([]domain.User, error) {
	return r.find(ctx, bson.M{"isActive": true})
}

func (r *UserMongoRepo) FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.find(ctx, bson.M{"role": string(role)})
}

func (r *UserMongoRepo) CountActive(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"isActive": true})
}
