package dto

import (
	"io"

	"github.com/amirphl/leadboard/models"
)

// VideoWithURL is a video row plus its public object URL
type VideoWithURL struct {
	*models.Video
	URL string `json:"url"`
}

type ListVideosResponse struct {
	Videos []VideoWithURL `json:"videos"`
}

// MissingBucketResponse is returned with 404 when the videos bucket is absent
type MissingBucketResponse struct {
	Error  string         `json:"error"`
	Code   string         `json:"code"`
	Videos []VideoWithURL `json:"videos"`
}

// UploadVideoRequest carries an opened multipart file; the flow does not close Content
type UploadVideoRequest struct {
	Content     io.Reader
	Filename    string
	Size        int64
	ContentType string
	Title       string
	Description string
	CategoryID  string
}

type UpdateVideoRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	CategoryID  Optional[string] `json:"category_id"`
}

type VideoResponse struct {
	Video VideoWithURL `json:"video"`
}

type DownloadVideoRequest struct {
	Path     string
	Filename string
}

// DownloadVideoResponse streams an object; the handler closes Body
type DownloadVideoResponse struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	Filename    string
}
