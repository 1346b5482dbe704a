package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
)

// DefaultBaseURL is the public YouTube origin.
const DefaultBaseURL = "https://www.youtube.com"

// maxPageSize bounds the watch page read into memory.
const maxPageSize = 8 << 20

// Config configures a TranscriptFetcher.
type Config struct {
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// Languages lists preferred transcript languages in order.
	Languages []string
	Timeout   time.Duration
}

// captionTrack is one entry of the captionTracks list in the watch page.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (c captionTrack) generated() bool {
	return c.Kind == "asr"
}

type timedText struct {
	Texts []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Body     string  `xml:",chardata"`
	} `xml:"text"`
}

// TranscriptFetcher implements generation.TranscriptFetcher.
type TranscriptFetcher struct {
	baseURL   *url.URL
	languages []string
	client    *http.Client
	logger    *slog.Logger
}

var _ generation.TranscriptFetcher = (*TranscriptFetcher)(nil)

// NewTranscriptFetcher creates a fetcher from cfg.
func NewTranscriptFetcher(cfg Config, logger *slog.Logger) (*TranscriptFetcher, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid YouTube base URL: %v", generation.ErrInvalidConfig, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &TranscriptFetcher{
		baseURL:   baseURL,
		languages: cfg.Languages,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.With("component", "youtube_transcript"),
	}, nil
}

// FetchTranscript implements generation.TranscriptFetcher.
func (f *TranscriptFetcher) FetchTranscript(ctx context.Context, videoURL string) ([]domain.TranscriptSegment, error) {
	videoID, err := VideoID(videoURL)
	if err != nil {
		return nil, err
	}

	log := f.logger.With("video_id", videoID)
	log.InfoContext(ctx, "fetching transcript")

	watchURL := f.baseURL.JoinPath("watch")
	watchURL.RawQuery = url.Values{"v": {videoID}}.Encode()
	page, err := f.get(ctx, watchURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load watch page for %s: %w", videoID, err)
	}

	tracks, err := parseCaptionTracks(page)
	if err != nil {
		return nil, fmt.Errorf("%w for video %s: %v", generation.ErrNoTranscript, videoID, err)
	}
	track, ok := selectTrack(tracks, f.languages)
	if !ok {
		return nil, fmt.Errorf("%w for video %s", generation.ErrNoTranscript, videoID)
	}

	trackURL, err := f.baseURL.Parse(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid caption track URL: %w", err)
	}
	body, err := f.get(ctx, trackURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to download %s transcript for %s: %w", track.LanguageCode, videoID, err)
	}

	segments, err := parseTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrNoTranscript, err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w for video %s: transcript is empty", generation.ErrNoTranscript, videoID)
	}

	log.InfoContext(ctx, "transcript fetched",
		"language", track.LanguageCode,
		"generated", track.generated(),
		"segments", len(segments))
	return segments, nil
}

func (f *TranscriptFetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if len(f.languages) > 0 {
		req.Header.Set("Accept-Language", strings.Join(f.languages, ","))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
}

// parseCaptionTracks decodes the captionTracks array embedded in a watch page.
func parseCaptionTracks(page []byte) ([]captionTrack, error) {
	marker := []byte(`"captionTracks":`)
	idx := bytes.Index(page, marker)
	if idx < 0 {
		return nil, errors.New("video has no captions")
	}

	var tracks []captionTrack
	dec := json.NewDecoder(bytes.NewReader(page[idx+len(marker):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("malformed caption track list: %w", err)
	}
	return tracks, nil
}

// selectTrack picks the first preferred language, manual tracks before
// generated ones, then any manual track, then any generated track.
func selectTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, lang := range languages {
		for _, generated := range []bool{false, true} {
			for _, t := range tracks {
				if t.generated() == generated && strings.EqualFold(baseLanguage(t.LanguageCode), lang) && t.BaseURL != "" {
					return t, true
				}
			}
		}
	}
	for _, generated := range []bool{false, true} {
		for _, t := range tracks {
			if t.generated() == generated && t.BaseURL != "" {
				return t, true
			}
		}
	}
	return captionTrack{}, false
}

// baseLanguage strips a region suffix such as "-US".
func baseLanguage(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return code[:i]
	}
	return code
}

func parseTimedText(body []byte) ([]domain.TranscriptSegment, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("malformed timed text: %w", err)
	}

	segments := make([]domain.TranscriptSegment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.Join(strings.Fields(html.UnescapeString(t.Body)), " ")
		if text == "" {
			continue
		}
		segments = append(segments, domain.TranscriptSegment{
			Text:     text,
			Start:    t.Start,
			Duration: t.Duration,
		})
	}
	return segments, nil
}
