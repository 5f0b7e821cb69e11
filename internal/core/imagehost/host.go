// Package imagehost 图床能力：上传返回可公开访问的 URL，按 public id 删除。
package imagehost

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Host interface {
	Upload(ctx context.Context, f File, folder string) (string, error)
	Delete(ctx context.Context, publicID string) error
}

// PublicIDFunc 由 URL 推导图床侧 id，纯函数
type PublicIDFunc func(url string) string

type Options struct {
	Driver     string
	Cloudinary CloudinaryOptions
	S3         S3Options
}

// New 按 driver 构造图床与对应的 public id 推导函数
func New(ctx context.Context, o Options) (Host, PublicIDFunc, error) {
	switch o.Driver {
	case "", "cloudinary":
		c, err := NewCloudinary(o.Cloudinary)
		if err != nil {
			return nil, nil, err
		}
		return c, CloudinaryPublicID, nil
	case "s3":
		s, err := NewS3(ctx, o.S3)
		if err != nil {
			return nil, nil, err
		}
		return s, s.PublicID, nil
	}
	return nil, nil, errors.Errorf("imagehost: unsupported driver %q", o.Driver)
}
