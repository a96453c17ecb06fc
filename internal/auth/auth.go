// Package auth resolves Battle.net client credentials and exchanges them for
// a bearer token using the OAuth2 client-credentials grant.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/icedo724/WoW-Auction/internal/config"
)

// Credentials is a client id/secret pair.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Source       string // "env" or "file"
}

// Resolve finds credentials, preferring the environment-supplied values in
// cfg over the fallback files. Each file holds one raw value; surrounding
// whitespace is trimmed.
func Resolve(cfg config.Blizzard) (Credentials, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		return Credentials{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret, Source: "env"}, nil
	}

	id, idErr := readSecretFile(cfg.ClientIDFile)
	secret, secretErr := readSecretFile(cfg.SecretFile)

	var missing []string
	if id == "" {
		missing = append(missing, "client id")
	}
	if secret == "" {
		missing = append(missing, "client secret")
	}
	if len(missing) > 0 {
		return Credentials{}, &ConfigurationError{Missing: missing, Err: errors.Join(idErr, secretErr)}
	}
	return Credentials{ClientID: id, ClientSecret: secret, Source: "file"}, nil
}

func readSecretFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Provider exchanges credentials for bearer tokens.
type Provider struct {
	creds      Credentials
	tokenURL   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider for the given token endpoint. A nil
// httpClient uses http.DefaultClient.
func NewProvider(creds Credentials, tokenURL string, httpClient *http.Client, log *slog.Logger) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Provider{creds: creds, tokenURL: tokenURL, httpClient: httpClient, log: log}
}

// Acquire performs one credential exchange and returns the opaque bearer
// token. It is not retried.
func (p *Provider) Acquire(ctx context.Context) (string, error) {
	conf := &clientcredentials.Config{
		ClientID:     p.creds.ClientID,
		ClientSecret: p.creds.ClientSecret,
		TokenURL:     p.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := conf.Token(ctx)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return "", &AuthError{StatusCode: re.Response.StatusCode, Err: err}
		}
		return "", &AuthError{Err: err}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Err: errors.New("empty access token in response")}
	}

	p.log.Debug("access token acquired", "source", p.creds.Source, "expiry", tok.Expiry)
	return tok.AccessToken, nil
}

// Acquire resolves credentials from cfg and exchanges them in one step.
func Acquire(ctx context.Context, cfg config.Blizzard, httpClient *http.Client, log *slog.Logger) (string, error) {
	creds, err := Resolve(cfg)
	if err != nil {
		return "", err
	}
	return NewProvider(creds, cfg.TokenURL, httpClient, log).Acquire(ctx)
}
