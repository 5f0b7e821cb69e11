package service

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scentify/internal/core/errs"
	"scentify/internal/core/imagehost"
	"scentify/internal/domain"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
}

type UploadLimits struct {
	MaxFiles     int
	MaxFileBytes int64
	Folder       string
}

type UploadResult struct {
	Message     string   `json:"message"`
	Images      []string `json:"images"`
	TotalImages int      `json:"totalImages"`
}

type RemoveImageResult struct {
	Message         string `json:"message"`
	RemainingImages int    `json:"remainingImages"`
}

type ImageService struct {
	perfumes *PerfumeService
	host     imagehost.Host
	publicID imagehost.PublicIDFunc
	limits   UploadLimits
	log      *zap.Logger
}

func NewImageService(p *PerfumeService, h imagehost.Host, pid imagehost.PublicIDFunc, lim UploadLimits, l *zap.Logger) *ImageService {
	if lim.MaxFiles <= 0 {
		lim.MaxFiles = 10
	}
	if lim.MaxFileBytes <= 0 {
		lim.MaxFileBytes = 10 << 20
	}
	if lim.Folder == "" {
		lim.Folder = "perfumes"
	}
	return &ImageService{perfumes: p, host: h, publicID: pid, limits: lim, log: l}
}

func (s *ImageService) validate(files []imagehost.File) error {
	if len(files) == 0 {
		return errs.BadRequest("No files uploaded")
	}
	if len(files) > s.limits.MaxFiles {
		return errs.BadRequest("Too many files")
	}
	for _, f := range files {
		if _, ok := allowedImageTypes[f.ContentType]; !ok {
			return errs.BadRequest("Invalid file type. Only JPEG, PNG, and WebP images are allowed")
		}
		if f.Size > s.limits.MaxFileBytes {
			return errs.BadRequest("File too large: " + f.Filename)
		}
	}
	return nil
}

// Upload 全部成功才写库；任一失败则回删本批已上传的图片
func (s *ImageService) Upload(ctx context.Context, perfumeID string, files []imagehost.File) (*UploadResult, error) {
	if err := s.validate(files); err != nil {
		return nil, err
	}
	p, err := s.perfumes.FindOne(ctx, perfumeID)
	if err != nil {
		return nil, err
	}

	folder := s.limits.Folder + "/" + perfumeID
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			u, err := s.host.Upload(gctx, f, folder)
			if err != nil {
				return err
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("image upload failed", zap.String("perfumeId", perfumeID), zap.Error(err))
		s.cleanup(ctx, urls)
		return nil, errs.Upstream("Failed to upload images", err)
	}

	images := append(slices.Clone(p.Images), urls...)
	if _, err := s.perfumes.Update(ctx, perfumeID, &domain.PerfumePatch{Images: &images}); err != nil {
		s.cleanup(ctx, urls)
		return nil, err
	}
	return &UploadResult{Message: "Images uploaded successfully", Images: urls, TotalImages: len(images)}, nil
}

// cleanup 尽力删除，失败只记日志
func (s *ImageService) cleanup(ctx context.Context, urls []string) {
	ctx = context.WithoutCancel(ctx)
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.host.Delete(ctx, s.publicID(u)); err != nil {
			s.log.Warn("orphaned image", zap.String("url", u), zap.Error(err))
		}
	}
}

// Remove 先删图床再改库；URL 不在列表中时记录不变
func (s *ImageService) Remove(ctx context.Context, perfumeID, imageURL string) (*RemoveImageResult, error) {
	if imageURL == "" {
		return nil, errs.BadRequest("imageUrl is required")
	}
	p, err := s.perfumes.FindOne(ctx, perfumeID)
	if err != nil {
		return nil, err
	}
	if pid := s.publicID(imageURL); pid != "" {
		if err := s.host.Delete(ctx, pid); err != nil {
			s.log.Error("image delete failed", zap.String("publicId", pid), zap.Error(err))
			return nil, errs.Upstream("Failed to delete image", err)
		}
	}

	remaining := slices.DeleteFunc(slices.Clone(p.Images), func(u string) bool { return u == imageURL })
	if len(remaining) != len(p.Images) {
		if _, err := s.perfumes.Update(ctx, perfumeID, &domain.PerfumePatch{Images: &remaining}); err != nil {
			return nil, err
		}
	}
	return &RemoveImageResult{Message: "Image deleted successfully", RemainingImages: len(remaining)}, nil
}
