package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIClient is a thin HTTP client for the directory API. The bot never
// touches storage directly; every action goes through the same endpoints
// a browser would use.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError carries the backend's status code and detail message so the
// wizard can show the user what actually went wrong.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Detail)
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login exchanges credentials for a bearer token via the password grant.
func (c *APIClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Me returns the authenticated user's profile, used to gate the
// admin-creation flow on the superadmin role.
func (c *APIClient) Me(ctx context.Context, token string) (*userPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out userPayload
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a user. With a superadmin token the backend grants the
// admin role.
func (c *APIClient) Signup(ctx context.Context, token, username, password string) (*userPayload, error) {
	var out userPayload
	if err := c.postJSON(ctx, token, "/api/auth/signup", map[string]string{
		"username": username,
		"password": password,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) CreateCity(ctx context.Context, token, name string) error {
	return c.postJSON(ctx, token, "/api/cities", map[string]string{"name": name}, nil)
}

func (c *APIClient) CreateCategory(ctx context.Context, token, name, imageURL string) error {
	return c.postJSON(ctx, token, "/api/categories", map[string]string{
		"name":      name,
		"image_url": imageURL,
	}, nil)
}

// OfferDraft accumulates answers across the create-offer wizard steps.
type OfferDraft struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	BackgroundImageURL string   `json:"background_image_url"`
	CompanyLogoURL     string   `json:"company_logo_url"`
	CompanyName        string   `json:"company_name"`
	CityIDs            []string `json:"city_ids"`
	CategoryIDs        []string `json:"category_ids"`
}

func (c *APIClient) CreateOffer(ctx context.Context, token string, draft OfferDraft) error {
	return c.postJSON(ctx, token, "/api/offers", draft, nil)
}

func (c *APIClient) postJSON(ctx context.Context, token, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *APIClient) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}

	if res.StatusCode >= 400 {
		var detail struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &detail)
		if detail.Error == "" {
			detail.Error = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Detail: detail.Error}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
