package businessflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
)

const sniffLength = 512

// videoExtensions maps known container extensions to their mime type
var videoExtensions = map[string]string{
	"mp4":  "video/mp4",
	"m4v":  "video/x-m4v",
	"mov":  "video/quicktime",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"mpeg": "video/mpeg",
	"mpg":  "video/mpeg",
	"ogv":  "video/ogg",
	"3gp":  "video/3gpp",
}

// VideoFlow manages uploaded videos and their bucket objects
type VideoFlow interface {
	ListVideos(ctx context.Context) (*dto.ListVideosResponse, error)
	UploadVideo(ctx context.Context, actor Actor, req *dto.UploadVideoRequest, metadata *ClientMetadata) (*dto.VideoResponse, error)
	UpdateVideo(ctx context.Context, actor Actor, id string, req *dto.UpdateVideoRequest, metadata *ClientMetadata) (*dto.VideoResponse, error)
	DeleteVideo(ctx context.Context, actor Actor, id string, metadata *ClientMetadata) error
	SetupBucket(ctx context.Context) (*dto.SuccessResponse, error)
	DownloadVideo(ctx context.Context, req *dto.DownloadVideoRequest) (*dto.DownloadVideoResponse, error)
}

// VideoFlowImpl implements VideoFlow
type VideoFlowImpl struct {
	videoRepo    repository.VideoRepository
	categoryRepo repository.CategoryRepository
	storage      services.ObjectStorage
	thumbnailer  services.Thumbnailer
	activity     ActivityRecorder
	writes       services.RecentWriteTracker
	now          func() time.Time
}

// NewVideoFlow accepts a nil thumbnailer, which skips poster frames
func NewVideoFlow(
	videoRepo repository.VideoRepository,
	categoryRepo repository.CategoryRepository,
	storage services.ObjectStorage,
	thumbnailer services.Thumbnailer,
	activity ActivityRecorder,
	writes services.RecentWriteTracker,
) VideoFlow {
	return &VideoFlowImpl{
		videoRepo:    videoRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		thumbnailer:  thumbnailer,
		activity:     activity,
		writes:       writes,
		now:          utils.UTCNow,
	}
}

func (f *VideoFlowImpl) withURL(v *models.Video) dto.VideoWithURL {
	return dto.VideoWithURL{Video: v, URL: f.storage.PublicURL(v.Filepath)}
}

func bucketMissing() *BusinessError {
	return NewBusinessError(CodeBucketNotFound, "Storage bucket not found", ErrBucketNotFound)
}

func (f *VideoFlowImpl) ListVideos(ctx context.Context) (*dto.ListVideosResponse, error) {
	exists, err := f.storage.BucketExists(ctx)
	if err != nil {
		return nil, NewBusinessError(CodeStorageError, "Failed to reach storage", err)
	}
	if !exists {
		return nil, bucketMissing()
	}

	rows, err := f.videoRepo.ListWithCategory(ctx)
	if err != nil {
		return nil, err
	}

	videos := make([]dto.VideoWithURL, 0, len(rows))
	for _, v := range rows {
		videos = append(videos, f.withURL(v))
	}
	return &dto.ListVideosResponse{Videos: videos}, nil
}

// detectVideoType accepts the upload when the sniffed bytes say video, or when
// sniffing is inconclusive and the extension is a known video container
func detectVideoType(head []byte, ext, declared string) (string, bool) {
	sniffed := http.DetectContentType(head)
	if strings.HasPrefix(sniffed, "video/") {
		return sniffed, true
	}
	if sniffed != "application/octet-stream" {
		return "", false
	}
	byExt, ok := videoExtensions[ext]
	if !ok {
		return "", false
	}
	if strings.HasPrefix(declared, "video/") {
		return declared, true
	}
	return byExt, true
}

func fileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func (f *VideoFlowImpl) objectKey(ext string) string {
	if ext == "" {
		ext = "mp4"
	}
	return fmt.Sprintf("%d-%d.%s", f.now().UnixMilli(), rand.IntN(1000), ext)
}

func (f *VideoFlowImpl) UploadVideo(ctx context.Context, actor Actor, req *dto.UploadVideoRequest, metadata *ClientMetadata) (*dto.VideoResponse, error) {
	if req.Content == nil {
		return nil, validationError("No file uploaded")
	}
	if req.Size > utils.MaxVideoSize {
		return nil, NewBusinessError(CodeFileTooLarge, "File too large. Maximum size is 100MB", nil)
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(req.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	ext := fileExtension(req.Filename)
	mimeType, ok := detectVideoType(head, ext, req.ContentType)
	if !ok {
		return nil, NewBusinessError(CodeInvalidFileType, "Invalid file type. Only video files are allowed", nil)
	}

	categoryID, err := f.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "upload-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	written, err := io.Copy(tmp, io.LimitReader(io.MultiReader(bytes.NewReader(head), req.Content), utils.MaxVideoSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if written > utils.MaxVideoSize {
		return nil, NewBusinessError(CodeFileTooLarge, "File too large. Maximum size is 100MB", nil)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename))
	}
	var description *string
	if d := strings.TrimSpace(req.Description); d != "" {
		description = &d
	}

	video := &models.Video{
		Title:        title,
		Description:  description,
		Filename:     req.Filename,
		Filepath:     f.objectKey(ext),
		Filesize:     written,
		MimeType:     mimeType,
		UploadStatus: models.VideoStatusProcessing,
		CategoryID:   categoryID,
	}
	if err := f.videoRepo.Save(ctx, video); err != nil {
		return nil, err
	}

	log := requestLogger(ctx, "video").WithField("video_id", video.ID)

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, f.failUpload(ctx, video.ID, err)
	}
	if err := f.storage.Put(ctx, video.Filepath, tmp, written, mimeType); err != nil {
		if errors.Is(err, services.ErrBucketNotFound) {
			_ = f.failUpload(ctx, video.ID, err)
			return nil, bucketMissing()
		}
		return nil, f.failUpload(ctx, video.ID, err)
	}

	fields := map[string]any{"upload_status": models.VideoStatusCompleted, "updated_at": f.now()}
	if thumbURL, err := f.storeThumbnail(ctx, video.ID, tmp.Name()); err != nil {
		log.WithError(err).Warn("thumbnail generation failed")
	} else if thumbURL != "" {
		fields["thumbnail_url"] = thumbURL
	}
	if _, err := f.videoRepo.UpdateFields(ctx, video.ID, fields); err != nil {
		return nil, err
	}

	stored, err := f.videoRepo.ByIDWithCategory(ctx, video.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewBusinessError(CodeVideoNotFound, "Video not found", ErrVideoNotFound)
	}

	markWrite(ctx, f.writes, actor, "videos", video.ID)
	f.activity.Record(ctx, actor, models.ActivityUploadVideo, models.ObjectTypeVideo, video.ID.String(),
		map[string]any{"title": stored.Title, "filename": stored.Filename, "filesize": stored.Filesize}, metadata)
	log.WithField("filepath", stored.Filepath).Info("video uploaded")

	return &dto.VideoResponse{Video: f.withURL(stored)}, nil
}

func (f *VideoFlowImpl) failUpload(ctx context.Context, id uuid.UUID, cause error) error {
	if _, err := f.videoRepo.UpdateFields(ctx, id, map[string]any{"upload_status": models.VideoStatusFailed}); err != nil {
		requestLogger(ctx, "video").WithError(err).WithField("video_id", id).Error("failed to mark upload failed")
	}
	return NewBusinessError(CodeStorageError, "Failed to upload video", cause)
}

func thumbnailKey(id uuid.UUID) string {
	return utils.ThumbnailPrefix + id.String() + ".jpg"
}

func (f *VideoFlowImpl) storeThumbnail(ctx context.Context, id uuid.UUID, videoPath string) (string, error) {
	if f.thumbnailer == nil {
		return "", nil
	}
	jpg, err := f.thumbnailer.Thumbnail(ctx, videoPath)
	if err != nil {
		return "", err
	}
	key := thumbnailKey(id)
	if err := f.storage.Put(ctx, key, bytes.NewReader(jpg), int64(len(jpg)), "image/jpeg"); err != nil {
		return "", err
	}
	return f.storage.PublicURL(key), nil
}

func (f *VideoFlowImpl) resolveCategory(ctx context.Context, raw string) (*uuid.UUID, error) {
	id, err := utils.ParseUUIDPtr(strings.TrimSpace(raw))
	if err != nil {
		return nil, NewBusinessError(CodeInvalidCategory, "Category not found", ErrCategoryNotFound)
	}
	if id == nil {
		return nil, nil
	}
	category, err := f.categoryRepo.ByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, NewBusinessError(CodeInvalidCategory, "Category not found", ErrCategoryNotFound)
	}
	return id, nil
}

func (f *VideoFlowImpl) UpdateVideo(ctx context.Context, actor Actor, id string, req *dto.UpdateVideoRequest, metadata *ClientMetadata) (*dto.VideoResponse, error) {
	videoID, err := uuid.Parse(id)
	if err != nil {
		return nil, validationError("Invalid video id")
	}

	fields := map[string]any{}
	if req.Title.Set {
		title := strings.TrimSpace(utils.Deref(req.Title.Value))
		if title == "" {
			return nil, validationError("Title cannot be empty")
		}
		fields["title"] = title
	}
	if req.Description.Set {
		fields["description"] = req.Description.Value
	}
	if req.CategoryID.Set {
		categoryID, err := f.resolveCategory(ctx, utils.Deref(req.CategoryID.Value))
		if err != nil {
			return nil, err
		}
		fields["category_id"] = categoryID
	}
	if len(fields) == 0 {
		return nil, NewBusinessError(CodeNoValidFields, "No valid fields to update", nil)
	}

	changes := make(map[string]any, len(fields))
	for k, v := range fields {
		changes[k] = v
	}
	fields["updated_at"] = f.now()

	ok, err := f.videoRepo.UpdateFields(ctx, videoID, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewBusinessError(CodeVideoNotFound, "Video not found", ErrVideoNotFound)
	}

	video, err := f.videoRepo.ByIDWithCategory(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, NewBusinessError(CodeVideoNotFound, "Video not found", ErrVideoNotFound)
	}

	markWrite(ctx, f.writes, actor, "videos", videoID)
	f.activity.Record(ctx, actor, models.ActivityUpdateVideo, models.ObjectTypeVideo, videoID.String(),
		map[string]any{"updates": changes}, metadata)

	return &dto.VideoResponse{Video: f.withURL(video)}, nil
}

func (f *VideoFlowImpl) DeleteVideo(ctx context.Context, actor Actor, id string, metadata *ClientMetadata) error {
	videoID, err := uuid.Parse(id)
	if err != nil {
		return validationError("Invalid video id")
	}

	video, err := f.videoRepo.ByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return NewBusinessError(CodeVideoNotFound, "Video not found", ErrVideoNotFound)
	}

	log := requestLogger(ctx, "video").WithField("video_id", videoID)
	if err := f.storage.Delete(ctx, video.Filepath); err != nil {
		log.WithError(err).WithField("filepath", video.Filepath).Warn("failed to delete video object")
	}
	if video.ThumbnailURL != nil {
		if err := f.storage.Delete(ctx, thumbnailKey(videoID)); err != nil {
			log.WithError(err).Warn("failed to delete thumbnail object")
		}
	}

	deleted, err := f.videoRepo.DeleteByID(ctx, videoID)
	if err != nil {
		return err
	}
	if !deleted {
		return NewBusinessError(CodeVideoNotFound, "Video not found", ErrVideoNotFound)
	}

	markWrite(ctx, f.writes, actor, "videos", videoID)
	f.activity.Record(ctx, actor, models.ActivityDeleteVideo, models.ObjectTypeVideo, videoID.String(),
		map[string]any{"title": video.Title, "filepath": video.Filepath}, metadata)
	return nil
}

func (f *VideoFlowImpl) SetupBucket(ctx context.Context) (*dto.SuccessResponse, error) {
	created, err := f.storage.EnsureBucket(ctx)
	if err != nil {
		return nil, NewBusinessError(CodeStorageError, "Failed to set up storage bucket", err)
	}
	message := "Bucket already exists"
	if created {
		message = "Bucket created and configured as public"
	}
	return &dto.SuccessResponse{Success: true, Message: message}, nil
}

func (f *VideoFlowImpl) DownloadVideo(ctx context.Context, req *dto.DownloadVideoRequest) (*dto.DownloadVideoResponse, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return nil, validationError("File path is required")
	}
	if strings.Contains(path, "..") || strings.HasPrefix(path, "/") {
		return nil, NewBusinessError(CodeInvalidPath, "Invalid file path", nil)
	}

	filename := filepath.Base(strings.TrimSpace(req.Filename))
	filename = strings.Map(func(r rune) rune {
		if r == '"' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, filename)
	if filename == "" || filename == "." || filename == "/" {
		filename = utils.DefaultDownloadFilename
	}

	obj, err := f.storage.Get(ctx, path)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrObjectNotFound):
			return nil, NewBusinessError(CodeObjectNotFound, "File not found", ErrObjectNotFound)
		case errors.Is(err, services.ErrBucketNotFound):
			return nil, bucketMissing()
		default:
			return nil, NewBusinessError(CodeStorageError, "Failed to download file", err)
		}
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &dto.DownloadVideoResponse{
		Body:        obj.Body,
		Size:        obj.Size,
		ContentType: contentType,
		Filename:    filename,
	}, nil
}
