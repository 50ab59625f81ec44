package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/okonechnikov/chromesnap/internal/catalog"
	"github.com/okonechnikov/chromesnap/internal/platform"
)

const (
	// listingFields trims the listing response to what the builder needs.
	listingFields = "items(name,size,mediaLink),prefixes,nextPageToken"

	// releasePageSize is how many releases one channel query returns.
	releasePageSize = 100
)

// ErrUnexpectedStatus is returned when a remote endpoint answers with a
// non-success HTTP status.
var ErrUnexpectedStatus = errors.New("unexpected http status")

// revisionPattern extracts the numeric revision from a listing prefix
// such as "Linux_x64/911515/".
var revisionPattern = regexp.MustCompile(`^[^/]+/(\d+)/$`)

// HTTPClient describes the minimal HTTP client surface, so tests can
// substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the snapshot storage and the release feed.
type Client struct {
	snapshotsURL string
	releasesURL  string
	httpClient   HTTPClient
	platform     platform.Platform
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithSnapshotsURL overrides the snapshot listing endpoint.
func WithSnapshotsURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.snapshotsURL = u
		}
	}
}

// WithReleasesURL overrides the release feed endpoint.
func WithReleasesURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.releasesURL = u
		}
	}
}

// NewClient creates a remote client for the given platform.
func NewClient(snapshotsURL, releasesURL string, p platform.Platform, opts ...Option) *Client {
	c := &Client{
		snapshotsURL: snapshotsURL,
		releasesURL:  releasesURL,
		httpClient:   http.DefaultClient,
		platform:     p,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// listingPage mirrors one page of the storage listing response.
type listingPage struct {
	Prefixes      []string       `json:"prefixes"`
	Items         []ArtifactItem `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

// ArtifactItem is one downloadable object attached to a revision.
type ArtifactItem struct {
	// Name is the object path inside the bucket.
	Name string `json:"name"`
	// Size is the object size in bytes; the endpoint serializes it as a string.
	Size string `json:"size"`
	// MediaLink is the direct download URL.
	MediaLink string `json:"mediaLink"`
}

// SizeBytes parses the item size.
func (i ArtifactItem) SizeBytes() (int64, error) {
	n, err := strconv.ParseInt(i.Size, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse artifact size %q: %w", i.Size, err)
	}

	return n, nil
}

// ListRevisions fetches every revision record for the client's platform,
// following continuation tokens until exhausted or until maxPages pages
// have been fetched (zero means no cap).
func (c *Client) ListRevisions(ctx context.Context, maxPages int) ([]catalog.RevisionRecord, error) {
	var (
		records   []catalog.RevisionRecord
		pageToken string
		pages     int
	)

	for {
		page, err := c.fetchListingPage(ctx, c.platform.StoragePrefix+"/", pageToken)
		if err != nil {
			return nil, err
		}

		for _, prefix := range page.Prefixes {
			match := revisionPattern.FindStringSubmatch(prefix)
			if match == nil {
				continue
			}

			records = append(records, catalog.RevisionRecord{
				Revision: match[1],
				Platform: c.platform.StoragePrefix,
			})
		}

		pages++
		pageToken = page.NextPageToken

		if pageToken == "" || (maxPages > 0 && pages >= maxPages) {
			return records, nil
		}
	}
}

// Releases fetches the published releases of one channel. The feed
// reports each release's branch position, which the catalog builder
// matches against revisions.
func (c *Client) Releases(ctx context.Context, channel string) ([]catalog.ChannelRelease, error) {
	query := url.Values{}
	query.Set("channel", channel)
	query.Set("platform", c.platform.ReleasePlatform)
	query.Set("num", strconv.Itoa(releasePageSize))
	query.Set("offset", "0")

	body, err := c.get(ctx, c.releasesURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var feed []struct {
		Version        string `json:"version"`
		BranchPosition int    `json:"chromium_main_branch_position"`
	}

	if err = json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode releases: %w", err)
	}

	releases := make([]catalog.ChannelRelease, 0, len(feed))
	for _, r := range feed {
		releases = append(releases, catalog.ChannelRelease{
			Version:        r.Version,
			Channel:        channel,
			BranchPosition: r.BranchPosition,
		})
	}

	return releases, nil
}

// Artifact returns the downloadable build archive for one revision:
// the listing item whose name ends with the platform archive filename.
func (c *Client) Artifact(ctx context.Context, revision string) (*ArtifactItem, error) {
	prefix := c.platform.StoragePrefix + "/" + revision + "/"

	page, err := c.fetchListingPage(ctx, prefix, "")
	if err != nil {
		return nil, err
	}

	for _, item := range page.Items {
		if strings.HasSuffix(item.Name, "/"+c.platform.ArchiveName) {
			return &item, nil
		}
	}

	return nil, nil
}

// fetchListingPage queries one page of the storage listing.
func (c *Client) fetchListingPage(ctx context.Context, prefix, pageToken string) (*listingPage, error) {
	query := url.Values{}
	query.Set("delimiter", "/")
	query.Set("prefix", prefix)
	query.Set("fields", listingFields)

	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	body, err := c.get(ctx, c.snapshotsURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var page listingPage
	if err = json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode listing page: %w", err)
	}

	return &page, nil
}

// get issues a GET request and returns the whole response body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", rawURL, resp.Status, ErrUnexpectedStatus)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}
