package y2mate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kkdai/youtube/v2"
)

// YouTubeTitles looks titles up from YouTube's own metadata.
type YouTubeTitles struct {
	Client *youtube.Client
}

// NewYouTubeTitles returns a lookup using httpClient for YouTube requests.
func NewYouTubeTitles(httpClient *http.Client) *YouTubeTitles {
	return &YouTubeTitles{Client: &youtube.Client{HTTPClient: httpClient}}
}

func (y *YouTubeTitles) LookupTitle(ctx context.Context, videoID string) (string, error) {
	video, err := y.Client.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("fetching metadata for %s: %w", videoID, err)
	}
	return video.Title, nil
}
