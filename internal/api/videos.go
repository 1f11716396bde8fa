package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/s/learnhub/internal/models"
)

type VideoInput struct {
	Title          string    `json:"title" validate:"required,max=200"`
	Description    string    `json:"description" validate:"max=5000"`
	Duration       float64   `json:"duration" validate:"gte=0"`
	SequenceNumber int       `json:"sequence_number" validate:"gte=0"`
	MediaURL       string    `json:"media_url" validate:"required"`
	SubcategoryID  models.ID `json:"subcategory_id" validate:"required"`
}

// ListCourseVideos returns the videos of a course in backend order. Callers
// sort them by sequence number.
func (c *Client) ListCourseVideos(ctx context.Context, subcategoryID models.ID) ([]models.Video, error) {
	return getList[models.Video](ctx, c, idPath("subcategories", subcategoryID, "videos"), nil, "videos")
}

func (c *Client) ListVideos(ctx context.Context) ([]models.Video, error) {
	return getList[models.Video](ctx, c, "videos", nil, "videos")
}

func (c *Client) GetVideo(ctx context.Context, id models.ID) (*models.Video, error) {
	return getObject[models.Video](ctx, c, idPath("videos", id), "video")
}

func (c *Client) CreateVideo(ctx context.Context, in VideoInput) (*models.Video, error) {
	return sendObject[models.Video](ctx, c, http.MethodPost, "videos", in, "video")
}

func (c *Client) UpdateVideo(ctx context.Context, id models.ID, in VideoInput) (*models.Video, error) {
	return sendObject[models.Video](ctx, c, http.MethodPut, idPath("videos", id), in, "video")
}

func (c *Client) DeleteVideo(ctx context.Context, id models.ID) error {
	return c.remove(ctx, idPath("videos", id))
}

// CompleteVideo marks a video completed for the session's user. The backend
// treats repeated calls as no-ops.
func (c *Client) CompleteVideo(ctx context.Context, id models.ID) error {
	_, err := c.send(ctx, http.MethodPost, idPath("videos", id, "complete"), nil)
	return err
}

// CourseProgress returns the ids of the completed videos of a course. The
// entries may be bare ids or objects naming the video.
func (c *Client) CourseProgress(ctx context.Context, subcategoryID models.ID) ([]models.ID, error) {
	path := idPath("subcategories", subcategoryID, "progress")
	data, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if err := DecodeList(data, &entries, "completed_videos", "completedVideos", "completed", "progress"); err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}

	ids := make([]models.ID, 0, len(entries))
	for _, entry := range entries {
		id, err := progressEntryID(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "GET %s", path)
		}
		if !id.IsZero() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func progressEntryID(entry json.RawMessage) (models.ID, error) {
	var id models.ID
	if len(entry) > 0 && entry[0] == '{' {
		var obj struct {
			VideoID  models.ID `json:"video_id"`
			VideoID2 models.ID `json:"videoId"`
			ID       models.ID `json:"id"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return "", errors.Wrapf(ErrMalformed, "progress entry: %v", err)
		}
		switch {
		case !obj.VideoID.IsZero():
			return obj.VideoID, nil
		case !obj.VideoID2.IsZero():
			return obj.VideoID2, nil
		}
		return obj.ID, nil
	}
	if err := json.Unmarshal(entry, &id); err != nil {
		return "", errors.Wrapf(ErrMalformed, "progress entry: %v", err)
	}
	return id, nil
}
