package imagehost

import (
	"context"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
)

// 上传时限制尺寸并自动选择质量/格式
const cloudinaryTransformation = "c_limit,h_1000,w_1000/q_auto:good/f_auto"

type CloudinaryOptions struct {
	CloudName string
	APIKey    string
	APISecret string
}

type cldUploader interface {
	Upload(ctx context.Context, file interface{}, p uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, p uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Cloudinary struct {
	up cldUploader
}

func NewCloudinary(o CloudinaryOptions) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(o.CloudName, o.APIKey, o.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "cloudinary init")
	}
	return &Cloudinary{up: &cld.Upload}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, f File, folder string) (string, error) {
	res, err := c.up.Upload(ctx, f.Body, uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "image",
		Transformation: cloudinaryTransformation,
	})
	if err != nil {
		return "", errors.Wrapf(err, "cloudinary upload %s", f.Filename)
	}
	if res.Error.Message != "" {
		return "", errors.Errorf("cloudinary upload %s: %s", f.Filename, res.Error.Message)
	}
	return res.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	res, err := c.up.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return errors.Wrapf(err, "cloudinary destroy %s", publicID)
	}
	if res.Error.Message != "" {
		return errors.Errorf("cloudinary destroy %s: %s", publicID, res.Error.Message)
	}
	// 已不存在也视为成功
	if res.Result != "ok" && res.Result != "not found" {
		return errors.Errorf("cloudinary destroy %s: result %q", publicID, res.Result)
	}
	return nil
}

var extRe = regexp.MustCompile(`\.[^/.]+$`)

// CloudinaryPublicID
//
//	https://res.cloudinary.com/demo/image/upload/v1712/perfumes/abc/x1.jpg → perfumes/abc/x1
//
// 没有 upload 段时返回 ""
func CloudinaryPublicID(url string) string {
	parts := strings.Split(url, "/")
	idx := -1
	for i, p := range parts {
		if p == "upload" {
			idx = i
			break
		}
	}
	if idx < 0 || idx+2 > len(parts) {
		return ""
	}
	return extRe.ReplaceAllString(strings.Join(parts[idx+2:], "/"), "")
}
