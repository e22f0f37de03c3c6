package y2mate

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs/v2"
	"go.uber.org/zap"

	"github.com/lvcoi/y2mate-dl/internal/downloader"
)

// Endpoints are the undocumented AJAX endpoints of the remote service.
type Endpoints struct {
	Analyze    string
	MP3Analyze string
	Convert    string
	MP3Convert string
	// Referer is prefixed to the video id for the Referer header.
	Referer string
	// DowngradeHTTPS rewrites https download links to http. The y2mate CDN
	// serves its blob storage without a valid certificate on that path.
	DowngradeHTTPS bool
}

// DefaultEndpoints are the y2mate endpoints the tool was built against.
var DefaultEndpoints = Endpoints{
	Analyze:        "https://www.y2mate.com/mates/es19/analyze/ajax",
	MP3Analyze:     "https://www.y2mate.com/mates/en31/mp3/ajax",
	Convert:        "https://www.y2mate.com/mates/es/convert",
	MP3Convert:     "https://www.y2mate.com/mates/mp3Convert",
	Referer:        "https://www.y2mate.com/es/youtube/",
	DowngradeHTTPS: true,
}

const (
	tokenMarker   = `k__id = "`
	tooLongMarker = "video is too long"
	formContent   = "application/x-www-form-urlencoded; charset=UTF-8"
)

// TitleLookup resolves a video title when the analyze response has none.
type TitleLookup interface {
	LookupTitle(ctx context.Context, videoID string) (string, error)
}

// Client talks to the remote conversion service.
type Client struct {
	HTTPClient *http.Client
	Endpoints  Endpoints
	Layout     TableLayout
	Titles     TitleLookup
	Logger     *zap.Logger
}

// NewClient returns a client for the default endpoints.
func NewClient(httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = downloader.NewHTTPClient(0, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTPClient: httpClient,
		Endpoints:  DefaultEndpoints,
		Layout:     DefaultLayout,
		Logger:     logger,
	}
}

// Analyze issues the first round-trip and builds the options for videoID.
// ErrRemoteUnavailable means the caller should restart the resolution.
func (c *Client) Analyze(ctx context.Context, videoID string, mode Mode) (Options, error) {
	endpoint := c.Endpoints.Analyze
	if mode == ModeConverter {
		endpoint = c.Endpoints.MP3Analyze
	}
	form := url.Values{
		"url":    {WatchURL(videoID)},
		"q_auto": {"0"},
		"ajax":   {"1"},
	}

	c.Logger.Info("getting download available options", zap.String("video_id", videoID), zap.Stringer("service", mode))
	fragment, err := c.post(ctx, endpoint, videoID, form)
	if err != nil {
		return Options{}, err
	}

	token, err := extractToken(fragment)
	if err != nil {
		return Options{}, err
	}
	doc, err := parseFragment(fragment)
	if err != nil {
		return Options{}, fmt.Errorf("%w: parsing result: %v", ErrRemoteUnavailable, err)
	}

	opts := Options{
		Formats: map[string][]Option{},
		Token:   token,
		Title:   strings.TrimSpace(textContent(find(doc, byClass("caption")))),
		Mode:    mode,
	}
	if opts.Title == "" {
		opts.Title = c.fallbackTitle(ctx, videoID)
	}

	if mode == ModeConverter {
		options, err := extractConverterOptions(doc)
		c.logSkipped("mp3", err)
		if len(options) > 0 {
			opts.Formats["mp3"] = options
		}
		return opts, nil
	}

	tabs := []struct{ family, id string }{
		{"mp4", "mp4"},
		{"mp3", "mp3"},
		{"m4a", "audio"},
	}
	for _, tab := range tabs {
		options, err := c.Layout.Extract(find(doc, byID(tab.id)))
		c.logSkipped(tab.family, err)
		if tab.family == "m4a" {
			options = withoutType(options, "mp3")
		}
		if len(options) > 0 {
			opts.Formats[tab.family] = options
		}
	}
	return opts, nil
}

// Convert issues the second round-trip and returns the direct file URL.
func (c *Client) Convert(ctx context.Context, opts Options, videoID, format string, quality int) (string, error) {
	endpoint := c.Endpoints.Convert
	if opts.Mode == ModeConverter {
		endpoint = c.Endpoints.MP3Convert
	}
	form := url.Values{
		"type":     {"youtube"},
		"_id":      {opts.Token},
		"v_id":     {videoID},
		"ajax":     {"1"},
		"token":    {""},
		"ftype":    {format},
		"fquality": {strconv.Itoa(quality)},
	}

	c.Logger.Info("getting file download link", zap.String("format", format), zap.Int("quality", quality))
	fragment, err := c.post(ctx, endpoint, videoID, form)
	if err != nil {
		return "", err
	}
	if strings.Contains(fragment, tooLongMarker) {
		return "", downloader.WrapCategory(downloader.CategoryRestricted, ErrVideoTooLong)
	}

	doc, err := parseFragment(fragment)
	if err != nil {
		return "", downloader.WrapCategory(downloader.CategoryNetwork, fmt.Errorf("%w: %v", ErrLinkResolutionFailed, err))
	}
	anchor := find(doc, byTag("a"))
	href, ok := attr(anchor, "href")
	if anchor == nil || !ok || strings.TrimSpace(href) == "" {
		return "", downloader.WrapCategory(downloader.CategoryNetwork, ErrLinkResolutionFailed)
	}
	link := strings.TrimSpace(href)
	if c.Endpoints.DowngradeHTTPS {
		link = downgradeHTTPS(link)
	}
	c.Logger.Info("file to download", zap.String("link", link))
	return link, nil
}

func (c *Client) post(ctx context.Context, endpoint, videoID string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", formContent)
	req.Header.Set("User-Agent", downloader.BrowserUserAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Pragma", "no-cache")
	if parsed, err := url.Parse(endpoint); err == nil {
		req.Header.Set("Origin", parsed.Scheme+"://"+parsed.Host)
	}
	if c.Endpoints.Referer != "" {
		req.Header.Set("Referer", c.Endpoints.Referer+videoID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", downloader.WrapCategory(downloader.CategoryUnavailable, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", downloader.WrapCategory(downloader.CategoryUnavailable, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode))
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return "", downloader.WrapCategory(downloader.CategoryUnavailable, fmt.Errorf("%w: content type %q", ErrRemoteUnavailable, resp.Header.Get("Content-Type")))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", downloader.WrapCategory(downloader.CategoryUnavailable, fmt.Errorf("%w: reading body: %v", ErrRemoteUnavailable, err))
	}
	return resultFragment(body)
}

// resultFragment returns the HTML carried in the envelope's result field.
func resultFragment(body []byte) (string, error) {
	envelope, err := gabs.ParseJSON(body)
	if err != nil {
		return "", downloader.WrapCategory(downloader.CategoryUnavailable, fmt.Errorf("%w: decoding envelope: %v", ErrRemoteUnavailable, err))
	}
	fragment, ok := envelope.Path("result").Data().(string)
	if !ok {
		return "", downloader.WrapCategory(downloader.CategoryUnavailable, fmt.Errorf("%w: envelope has no result", ErrRemoteUnavailable))
	}
	return fragment, nil
}

// extractToken reads the security token embedded in the result's script.
func extractToken(fragment string) (string, error) {
	_, rest, found := strings.Cut(fragment, tokenMarker)
	if !found {
		return "", downloader.WrapCategory(downloader.CategoryUnavailable, fmt.Errorf("%w: security token not found", ErrRemoteUnavailable))
	}
	token, _, found := strings.Cut(rest, `"`)
	if !found {
		return "", downloader.WrapCategory(downloader.CategoryUnavailable, fmt.Errorf("%w: security token not terminated", ErrRemoteUnavailable))
	}
	return token, nil
}

func (c *Client) fallbackTitle(ctx context.Context, videoID string) string {
	if c.Titles != nil {
		title, err := c.Titles.LookupTitle(ctx, videoID)
		if err == nil && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
		c.Logger.Warn("title lookup failed", zap.String("video_id", videoID), zap.Error(err))
	}
	return videoID
}

func (c *Client) logSkipped(family string, err error) {
	if err != nil {
		c.Logger.Warn("skipped malformed options", zap.String("format", family), zap.Error(err))
	}
}

func withoutType(options []Option, ftype string) []Option {
	kept := options[:0:0]
	for _, o := range options {
		if o.Type != ftype {
			kept = append(kept, o)
		}
	}
	return kept
}

func downgradeHTTPS(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || !strings.EqualFold(parsed.Scheme, "https") {
		return link
	}
	parsed.Scheme = "http"
	return parsed.String()
}
