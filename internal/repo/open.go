package repo

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"scentify/internal/core/config"
	"scentify/internal/core/database"
	"scentify/internal/domain"
)

// Stores 两个仓储 + 连接关闭
type Stores struct {
	Perfumes domain.PerfumeRepository
	Users    domain.UserRepository
	Close    func(ctx context.Context) error
}

func noClose(context.Context) error { return nil }

// Open 按 db.driver 选择后端
func Open(ctx context.Context, c *config.Config, l *zap.Logger) (*Stores, error) {
	switch c.DB.Driver {
	case "mongo", "mongodb", "":
		m, err := database.NewMongo(ctx, database.MongoOpts{
			URI:               c.Mongo.URI,
			Database:          c.Mongo.Database,
			ConnectTimeoutSec: c.Mongo.ConnectTimeoutSec,
			MaxPoolSize:       uint64(max(c.DB.MaxOpenConns, 0)),
		})
		if err != nil {
			return nil, err
		}
		if c.Mongo.EnsureIndexes {
			if err := EnsureIndexes(ctx, m.DB); err != nil {
				_ = m.Close(ctx)
				return nil, err
			}
		}
		l.Info("store ready", zap.String("driver", "mongo"), zap.String("database", c.Mongo.Database))
		return &Stores{
			Perfumes: NewPerfumeMongoRepo(m.DB),
			Users:    NewUserMongoRepo(m.DB),
			Close:    m.Close,
		}, nil

	case "postgres", "mysql", "sqlite":
		db, err := database.NewGorm(database.Opts{
			Driver:             c.DB.Driver,
			DSN:                c.DB.DSN,
			Username:           c.DB.Username,
			Password:           c.DB.Password,
			MaxOpenConns:       c.DB.MaxOpenConns,
			MaxIdleConns:       c.DB.MaxIdleConns,
			ConnMaxLifetimeMin: c.DB.ConnMaxLifetimeMin,
			LogLevel:           c.DB.LogLevel,
			Log:                l,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", c.DB.Driver)
		}
		if c.DB.AutoMigrate || c.DB.Driver == "sqlite" {
			if err := AutoMigrate(db); err != nil {
				return nil, errors.Wrap(err, "auto migrate")
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		l.Info("store ready", zap.String("driver", c.DB.Driver))
		return &Stores{
			Perfumes: NewPerfumeGormRepo(db),
			Users:    NewUserGormRepo(db),
			Close:    func(context.Context) error { return sqlDB.Close() },
		}, nil

	case "memory":
		l.Warn("store ready: in-memory, data is lost on exit")
		return &Stores{Perfumes: NewPerfumeMemRepo(), Users: NewUserMemRepo(), Close: noClose}, nil
	}
	return nil, errors.Errorf("unsupported db driver %q", c.DB.Driver)
}
