package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	federatedProviderID = "google.com"
	federatedRequestURI = "http://localhost"
)

// RESTProvider talks to the Identity Toolkit REST API.
type RESTProvider struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewRESTProvider(baseURL, apiKey string, client *http.Client) *RESTProvider {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &RESTProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
}

type accountResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	FullName    string `json:"fullName"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *RESTProvider) SignUpWithEmail(ctx context.Context, email, password string) (domain.Principal, error) {
	return p.call(ctx, "accounts:signUp", passwordRequest{Email: email, Password: password, ReturnSecureToken: true})
}

func (p *RESTProvider) SignInWithEmail(ctx context.Context, email, password string) (domain.Principal, error) {
	return p.call(ctx, "accounts:signInWithPassword", passwordRequest{Email: email, Password: password, ReturnSecureToken: true})
}

func (p *RESTProvider) SignInWithFederated(ctx context.Context, idToken string) (domain.Principal, error) {
	form := url.Values{}
	form.Set("id_token", idToken)
	form.Set("providerId", federatedProviderID)
	return p.call(ctx, "accounts:signInWithIdp", idpRequest{
		PostBody:            form.Encode(),
		RequestURI:          federatedRequestURI,
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	})
}

func (p *RESTProvider) call(ctx context.Context, method string, in any) (domain.Principal, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("marshal %s request: %w", method, err)
	}

	endpoint := p.baseURL + "/" + method + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("read %s response: %w", method, err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var e errorResponse
		_ = json.Unmarshal(body, &e)
		if e.Error.Message == "" {
			e.Error.Message = resp.Status
		}
		return domain.Principal{}, fmt.Errorf("%w: %s", ErrRejected, e.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Principal{}, fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var acct accountResponse
	if err := json.Unmarshal(body, &acct); err != nil {
		return domain.Principal{}, fmt.Errorf("decode %s response: %w", method, err)
	}
	name := acct.DisplayName
	if name == "" {
		name = acct.FullName
	}
	return domain.Principal{UID: acct.LocalID, DisplayName: name, Email: acct.Email}, nil
}
