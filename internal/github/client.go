package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/treeson/internal/tree"
)

const (
	defaultAPIBaseURL         = "https://api.github.com"
	defaultAPITimeout         = 10 * time.Second
	defaultReference          = "main"
	defaultUserAgent          = "treeson"
	headerAuthorization       = "Authorization"
	headerAccept              = "Accept"
	headerGitHubAPIVersion    = "X-GitHub-Api-Version"
	acceptGitHubJSON          = "application/vnd.github+json"
	githubAPIVersionValue     = "2022-11-28"
	authorizationBearerPrefix = "Bearer "
	authorizationTokenPrefix  = "token "

	contentTypeDirectory = "dir"
	contentTypeFile      = "file"
)

var (
	// ErrRepositoryNotFound reports a missing repository or branch.
	ErrRepositoryNotFound = errors.New("repository or branch not found")
	// ErrRequestTimeout reports an API request that exceeded its deadline.
	ErrRequestTimeout = errors.New("request timeout")
	// ErrMalformedListing reports a response body that is not a tree listing.
	ErrMalformedListing = errors.New("malformed listing response")
)

// RemoteError wraps a fetch failure with enough context to diagnose it:
// repository identity and the reference that was requested. Fetch failures
// are fatal to the conversion and never retried.
type RemoteError struct {
	Repository Repository
	Reference  string
	Cause      error
}

// Error renders the failure with the repository identity attached.
func (remoteError *RemoteError) Error() string {
	return fmt.Sprintf("fetching %s@%s: %v", remoteError.Repository, remoteError.Reference, remoteError.Cause)
}

// Unwrap exposes the underlying cause for errors.Is matching.
func (remoteError *RemoteError) Unwrap() error {
	return remoteError.Cause
}

type httpClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// treeListingResponse mirrors the relevant fields of the git/trees payload.
type treeListingResponse struct {
	Tree      []tree.Entry `json:"tree"`
	Truncated bool         `json:"truncated"`
}

// contentsItem mirrors the relevant fields of a contents API record.
type contentsItem struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Client fetches flat tree listings for one repository. The zero value is not
// usable; construct with NewClient and refine with the With* methods.
type Client struct {
	client                   httpClient
	apiBase                  string
	userAgent                string
	authorizationHeaderValue string
}

// NewClient returns a listing client for the given repository. A nil client
// falls back to an http.Client with the default timeout.
func NewClient(client httpClient) Client {
	if client == nil {
		client = &http.Client{Timeout: defaultAPITimeout}
	}
	return Client{
		client:    client,
		apiBase:   defaultAPIBaseURL,
		userAgent: defaultUserAgent,
	}
}

// WithAPIBase overrides the API base URL, primarily for tests and GitHub
// Enterprise installations.
func (client Client) WithAPIBase(base string) Client {
	if base == "" {
		return client
	}
	client.apiBase = strings.TrimRight(base, "/")
	return client
}

// WithUserAgent overrides the User-Agent header value.
func (client Client) WithUserAgent(agent string) Client {
	if agent == "" {
		return client
	}
	client.userAgent = agent
	return client
}

// WithAuthorizationToken configures the client to authenticate API calls.
func (client Client) WithAuthorizationToken(token string) Client {
	client.authorizationHeaderValue = formatAuthorizationHeaderValue(token)
	return client
}

// FetchTreeEntries retrieves the recursive tree listing of repository at the
// given reference. When the API truncates the recursive listing the client
// completes it by walking the contents API instead, so callers always receive
// the full listing or an error, never a silently shortened one.
func (client Client) FetchTreeEntries(ctx context.Context, repository Repository, reference string) ([]tree.Entry, error) {
	if reference == "" {
		reference = defaultReference
	}

	listing, fetchError := client.fetchRecursiveListing(ctx, repository, reference)
	if fetchError != nil {
		return nil, &RemoteError{Repository: repository, Reference: reference, Cause: fetchError}
	}
	if !listing.Truncated {
		return listing.Tree, nil
	}

	completedEntries, walkError := client.walkContents(ctx, repository, reference)
	if walkError != nil {
		return nil, &RemoteError{Repository: repository, Reference: reference, Cause: walkError}
	}
	return completedEntries, nil
}

func (client Client) fetchRecursiveListing(ctx context.Context, repository Repository, reference string) (treeListingResponse, error) {
	treesURL := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		client.apiBase, url.PathEscape(repository.Owner), url.PathEscape(repository.Name), url.PathEscape(reference))

	request, requestError := client.buildRequest(ctx, treesURL)
	if requestError != nil {
		return treeListingResponse{}, requestError
	}
	response, responseError := client.client.Do(request)
	if responseError != nil {
		return treeListingResponse{}, classifyTransportError(responseError)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return treeListingResponse{}, ErrRepositoryNotFound
	}
	if response.StatusCode != http.StatusOK {
		return treeListingResponse{}, fmt.Errorf("unexpected status %d", response.StatusCode)
	}

	var listing treeListingResponse
	if decodeError := json.NewDecoder(response.Body).Decode(&listing); decodeError != nil {
		return treeListingResponse{}, fmt.Errorf("%w: %v", ErrMalformedListing, decodeError)
	}
	return listing, nil
}

// walkContents rebuilds the flat listing through the contents API, one request
// per directory. Directories are walked concurrently; the collected entries
// are sorted by path afterwards so the result is deterministic.
func (client Client) walkContents(ctx context.Context, repository Repository, reference string) ([]tree.Entry, error) {
	var collectedMutex sync.Mutex
	var collectedEntries []tree.Entry

	group, groupCtx := errgroup.WithContext(ctx)

	var walkDirectory func(directoryPath string)
	walkDirectory = func(directoryPath string) {
		group.Go(func() error {
			directoryListing, listError := client.fetchContents(groupCtx, repository, reference, directoryPath)
			if listError != nil {
				return listError
			}
			collectedMutex.Lock()
			for _, listedItem := range directoryListing {
				switch listedItem.Type {
				case contentTypeDirectory:
					collectedEntries = append(collectedEntries, tree.Entry{Path: listedItem.Path, Type: tree.EntryTypeTree})
				case contentTypeFile:
					collectedEntries = append(collectedEntries, tree.Entry{Path: listedItem.Path, Type: tree.EntryTypeBlob})
				}
			}
			collectedMutex.Unlock()
			for _, listedItem := range directoryListing {
				if listedItem.Type == contentTypeDirectory {
					walkDirectory(listedItem.Path)
				}
			}
			return nil
		})
	}
	walkDirectory("")

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}

	sort.SliceStable(collectedEntries, func(leftIndex, rightIndex int) bool {
		return collectedEntries[leftIndex].Path < collectedEntries[rightIndex].Path
	})
	return collectedEntries, nil
}

func (client Client) fetchContents(ctx context.Context, repository Repository, reference string, directoryPath string) ([]contentsItem, error) {
	contentsURL := client.buildContentsURL(repository, directoryPath, reference)
	request, requestError := client.buildRequest(ctx, contentsURL)
	if requestError != nil {
		return nil, requestError
	}
	response, responseError := client.client.Do(request)
	if responseError != nil {
		return nil, classifyTransportError(responseError)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, ErrRepositoryNotFound
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", response.StatusCode, contentsURL)
	}

	var directoryListing []contentsItem
	if decodeError := json.NewDecoder(response.Body).Decode(&directoryListing); decodeError != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedListing, decodeError)
	}
	return directoryListing, nil
}

func (client Client) buildContentsURL(repository Repository, directoryPath string, reference string) string {
	var builder strings.Builder
	builder.WriteString(client.apiBase)
	builder.WriteString("/repos/")
	builder.WriteString(url.PathEscape(repository.Owner))
	builder.WriteByte('/')
	builder.WriteString(url.PathEscape(repository.Name))
	builder.WriteString("/contents")
	cleanedPath := strings.Trim(directoryPath, "/")
	if cleanedPath != "" {
		for _, pathSegment := range strings.Split(cleanedPath, "/") {
			builder.WriteByte('/')
			builder.WriteString(url.PathEscape(pathSegment))
		}
	}
	builder.WriteString("?ref=")
	builder.WriteString(url.QueryEscape(reference))
	return builder.String()
}

func (client Client) buildRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	request, requestError := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if requestError != nil {
		return nil, requestError
	}
	if client.userAgent != "" {
		request.Header.Set("User-Agent", client.userAgent)
	}
	if client.authorizationHeaderValue != "" {
		request.Header.Set(headerAuthorization, client.authorizationHeaderValue)
	}
	request.Header.Set(headerAccept, acceptGitHubJSON)
	request.Header.Set(headerGitHubAPIVersion, githubAPIVersionValue)
	return request, nil
}

// classifyTransportError maps transport failures onto the error taxonomy.
func classifyTransportError(transportError error) error {
	if errors.Is(transportError, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrRequestTimeout, transportError)
	}
	var netError net.Error
	if errors.As(transportError, &netError) && netError.Timeout() {
		return fmt.Errorf("%w: %v", ErrRequestTimeout, transportError)
	}
	return fmt.Errorf("network error: %w", transportError)
}

func formatAuthorizationHeaderValue(rawToken string) string {
	trimmedToken := strings.TrimSpace(rawToken)
	if trimmedToken == "" {
		return ""
	}
	lowerToken := strings.ToLower(trimmedToken)
	if strings.HasPrefix(lowerToken, strings.ToLower(authorizationBearerPrefix)) ||
		strings.HasPrefix(lowerToken, strings.ToLower(authorizationTokenPrefix)) {
		return trimmedToken
	}
	if strings.Contains(trimmedToken, ".") {
		return authorizationBearerPrefix + trimmedToken
	}
	return authorizationTokenPrefix + trimmedToken
}
