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

const perfumeCollection = "perfumes"

type sizeDoc struct {
	Volume *float64 `bson:"volume,omitempty"`
	Price  *float64 `bson:"price,omitempty"`
	Stock  int      `bson:"stock"`
}

type notesDoc struct {
	Top    []string `bson:"top"`
	Middle []string `bson:"middle"`
	Base   []string `bson:"base"`
}

type perfumeDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Brand          string             `bson:"brand"`
	Description    string             `bson:"description"`
	Price          *float64           `bson:"price,omitempty"`
	Type           string             `bson:"type"`
	ScentFamily    string             `bson:"scentFamily"`
	Gender         string             `bson:"gender"`
	Sizes          []sizeDoc          `bson:"sizes"`
	FragranceNotes notesDoc           `bson:"fragranceNotes"`
	Images         []string           `bson:"images"`
	Rating         float64            `bson:"rating"`
	ReviewCount    int                `bson:"reviewCount"`
	InStock        bool               `bson:"inStock"`
	ReleaseDate    *time.Time         `bson:"releaseDate,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toSizeDocs(in []domain.Size) []sizeDoc {
	out := make([]sizeDoc, 0, len(in))
	for _, s := range in {
		out = append(out, sizeDoc{Volume: s.Volume, Price: s.Price, Stock: s.Stock})
	}
	return out
}

func toNotesDoc(n domain.FragranceNotes) notesDoc {
	return notesDoc{Top: n.Top, Middle: n.Middle, Base: n.Base}
}

func newPerfumeDoc(p *domain.Perfume) perfumeDoc {
	return perfumeDoc{
		ID:             primitive.NewObjectID(),
		Name:           p.Name,
		Brand:          p.Brand,
		Description:    p.Description,
		Price:          p.Price,
		Type:           string(p.Type),
		ScentFamily:    string(p.ScentFamily),
		Gender:         string(p.Gender),
		Sizes:          toSizeDocs(p.Sizes),
		FragranceNotes: toNotesDoc(p.FragranceNotes),
		Images:         p.Images,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		InStock:        p.InStock,
		ReleaseDate:    p.ReleaseDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (d *perfumeDoc) toDomain() domain.Perfume {
	p := domain.Perfume{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Brand:       d.Brand,
		Description: d.Description,
		Price:       d.Price,
		Type:        domain.PerfumeType(d.Type),
		ScentFamily: domain.ScentFamily(d.ScentFamily),
		Gender:      domain.Gender(d.Gender),
		FragranceNotes: domain.FragranceNotes{
			Top: d.FragranceNotes.Top, Middle: d.FragranceNotes.Middle, Base: d.FragranceNotes.Base,
		},
		Images:      d.Images,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
		InStock:     d.InStock,
		ReleaseDate: d.ReleaseDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	p.Sizes = make([]domain.Size, 0, len(d.Sizes))
	for _, s := range d.Sizes {
		p.Sizes = append(p.Sizes, domain.Size{Volume: s.Volume, Price: s.Price, Stock: s.Stock})
	}
	p.Normalize()
	return p
}

// perfumeSet PerfumePatch → $set，只包含非 nil 字段
func perfumeSet(u *domain.PerfumePatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Brand != nil {
		set["brand"] = *u.Brand
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Type != nil {
		set["type"] = string(*u.Type)
	}
	if u.ScentFamily != nil {
		set["scentFamily"] = string(*u.ScentFamily)
	}
	if u.Gender != nil {
		set["gender"] = string(*u.Gender)
	}
	if u.Sizes != nil {
		set["sizes"] = toSizeDocs(*u.Sizes)
	}
	if u.FragranceNotes != nil {
		n := *u.FragranceNotes
		if n.Top == nil {
			n.Top = []string{}
		}
		if n.Middle == nil {
			n.Middle = []string{}
		}
		if n.Base == nil {
			n.Base = []string{}
		}
		set["fragranceNotes"] = toNotesDoc(n)
	}
	if u.Images != nil {
		imgs := *u.Images
		if imgs == nil {
			imgs = []string{}
		}
		set["images"] = imgs
	}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	if u.ReviewCount != nil {
		set["reviewCount"] = *u.ReviewCount
	}
	if u.InStock != nil {
		set["inStock"] = *u.InStock
	}
	if t := u.ReleaseTime(); t != nil {
		set["releaseDate"] = *t
	}
	return set
}

type PerfumeMongoRepo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewPerfumeMongoRepo(db *mongo.Database) *PerfumeMongoRepo {
	return &PerfumeMongoRepo{col: db.Collection(perfumeCollection), now: time.Now}
}

// objectID 非法 hex 视为不存在
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func (r *PerfumeMongoRepo) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]domain.Perfume, error) {
	cur, err := r.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []perfumeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Perfume, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *PerfumeMongoRepo) one(res *mongo.SingleResult) (*domain.Perfume, error) {
	var d perfumeDoc
	if err := res.Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	p := d.toDomain()
	return &p, nil
}

func byNewest() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func (r *PerfumeMongoRepo) FindAll(ctx context.Context, skip, limit int) ([]domain.Perfume, error) {
	return r.find(ctx, bson.M{}, byNewest().SetSkip(int64(skip)).SetLimit(int64(limit)))
}

func (r *PerfumeMongoRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *PerfumeMongoRepo) FindByID(ctx context.Context, id string) (*domain.Perfume, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.one(r.col.FindOne(ctx, bson.M{"_id": oid}))
}

func (r *PerfumeMongoRepo) Create(ctx context.Context, p *domain.Perfume) error {
	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Normalize()
	d := newPerfumeDoc(p)
	if _, err := r.col.InsertOne(ctx, d); err != nil {
		return err
	}
	p.ID = d.ID.Hex()
	return nil
}

func (r *PerfumeMongoRepo) Update(ctx context.Context, id string, patch *domain.PerfumePatch) (*domain.Perfume, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": perfumeSet(patch, r.now().UTC())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return r.one(res)
}

func (r *PerfumeMongoRepo) Delete(ctx context.Context, id string) (*domain.Perfume, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.one(r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}))
}

func (r *PerfumeMongoRepo) FindByBrand(ctx context.Context, brand string) ([]domain.Perfume, error) {
	return r.find(ctx, bson.M{"brand": brand}, byNewest())
}

func (r *PerfumeMongoRepo) FindByScentFamily(ctx context.Context, f domain.ScentFamily) ([]domain.Perfume, error) {
	return r.find(ctx, bson.M{"scentFamily": string(f)}, byNewest())
}

func (r *PerfumeMongoRepo) FindByGender(ctx context.Context, g domain.Gender) ([]domain.Perfume, error) {
	return r.find(ctx, bson.M{"gender": string(g)}, byNewest())
}

// Search 走 name/brand/description 上的文本索引
func (r *PerfumeMongoRepo) Search(ctx context.Context, q string) ([]domain.Perfume, error) {
	return r.find(ctx, bson.M{"$text": bson.M{"$search": q}})
}

func catalogQuery(f domain.CatalogFilter) bson.M {
	q := bson.M{}
	if f.ScentFamily != "" {
		q["scentFamily"] = string(f.ScentFamily)
	}
	if f.Gender != "" {
		q["gender"] = string(f.Gender)
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		rng := bson.M{}
		if f.MinPrice != nil {
			rng["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			rng["$lte"] = *f.MaxPrice
		}
		q["price"] = rng
	}
	if f.Search != "" {
		q["$text"] = bson.M{"$search": f.Search}
	}
	return q
}

func (r *PerfumeMongoRepo) Browse(ctx context.Context, f domain.CatalogFilter) ([]domain.Perfume, error) {
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	field := f.SortField
	if field == "" {
		field, dir = "createdAt", -1
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return r.find(ctx, catalogQuery(f), opts)
}
