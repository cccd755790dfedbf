// Package github fetches repository tree listings from the GitHub API. The
// package is a collaborator of the core conversion: it surfaces every fetch
// failure before the flat-listing builder runs.
package github

import (
	"errors"
	"fmt"
	"strings"
)

const (
	urlSchemeHTTP   = "http://"
	urlSchemeHTTPS  = "https://"
	gitSuffix       = ".git"
	urlPartDivider  = "/"
	minimumURLParts = 2
)

// ErrMalformedRepositoryURL reports a repository URL the parser cannot reduce
// to an owner and a repository name.
var ErrMalformedRepositoryURL = errors.New("malformed repository URL")

// Repository identifies a remote repository by owner and name.
type Repository struct {
	Owner string
	Name  string
}

// String renders the repository as owner/name.
func (repository Repository) String() string {
	return repository.Owner + urlPartDivider + repository.Name
}

// IsRepositoryURL reports whether target looks like a remote repository URL
// rather than a local filesystem path.
func IsRepositoryURL(target string) bool {
	return strings.HasPrefix(target, urlSchemeHTTP) || strings.HasPrefix(target, urlSchemeHTTPS)
}

// ParseRepositoryURL extracts the owner and repository name from a repository
// URL. A trailing slash and a ".git" suffix are tolerated; the last two path
// parts identify the repository.
func ParseRepositoryURL(rawURL string) (Repository, error) {
	trimmedURL := strings.TrimRight(rawURL, urlPartDivider)
	trimmedURL = strings.TrimSuffix(trimmedURL, gitSuffix)
	urlParts := strings.Split(trimmedURL, urlPartDivider)
	if len(urlParts) < minimumURLParts {
		return Repository{}, fmt.Errorf("%w: %s", ErrMalformedRepositoryURL, rawURL)
	}
	repositoryOwner := urlParts[len(urlParts)-2]
	repositoryName := urlParts[len(urlParts)-1]
	if repositoryOwner == "" || repositoryName == "" {
		return Repository{}, fmt.Errorf("%w: %s", ErrMalformedRepositoryURL, rawURL)
	}
	return Repository{Owner: repositoryOwner, Name: repositoryName}, nil
}
