package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"scentify/internal/core/errs"
	"scentify/internal/core/imagehost"
	"scentify/internal/service"
	"scentify/internal/transport/http/ez"
)

const imagesField = "images"

type UploadHandler struct {
	svc *service.ImageService
}

func NewUploadHandler(s *service.ImageService) *UploadHandler { return &UploadHandler{svc: s} }

func (h *UploadHandler) Priority() int { return 20 }

type removeImageIn struct {
	ImageURL string `json:"imageUrl"`
}

func (h *UploadHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g.Group("/upload/perfume"))

	// 多文件上传，字段名 images
	ez.RegisterAction(e, ez.Action[none, *service.UploadResult]{
		Method: http.MethodPost,
		Path:   "/:id/images",
		Binder: ez.BindNone,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *none) (*service.UploadResult, error) {
			files, closeAll, err := formFiles(c, imagesField)
			if err != nil {
				return nil, err
			}
			defer closeAll()
			return h.svc.Upload(c.Request.Context(), c.Param("id"), files)
		},
	})

	ez.RegisterAction(e, ez.Action[removeImageIn, *service.RemoveImageResult]{
		Method: http.MethodDelete,
		Path:   "/:id/image",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *removeImageIn) (*service.RemoveImageResult, error) {
			return h.svc.Remove(c.Request.Context(), c.Param("id"), in.ImageURL)
		},
	})
}

// formFiles 打开 multipart 中的文件；没有文件时返回空切片交给 service 判定
func formFiles(c *gin.Context, field string) ([]imagehost.File, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxb *http.MaxBytesError
		if errors.As(err, &maxb) {
			return nil, nil, &errs.Error{Code: http.StatusRequestEntityTooLarge, Msg: "request body too large"}
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return []imagehost.File{}, func() {}, nil
		}
		return nil, nil, errs.BadRequest("invalid multipart form: " + err.Error())
	}

	headers := form.File[field]
	opened := make([]io.Closer, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	files := make([]imagehost.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, errs.BadRequest("cannot read file: " + fh.Filename)
		}
		opened = append(opened, f)
		files = append(files, toFile(fh, f))
	}
	return files, closeAll, nil
}

func toFile(fh *multipart.FileHeader, f multipart.File) imagehost.File {
	return imagehost.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
}
