package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"orgchart/internal/platform/config"
)

const userSelectFields = "id,displayName,jobTitle,department,mail,userPrincipalName,mobilePhone," +
	"businessPhones,officeLocation,city,state,country,usageLocation,streetAddress," +
	"postalCode,employeeHireDate,employeeLeaveDateTime,accountEnabled,userType,assignedLicenses"

const signInSelectFields = "id,displayName,jobTitle,department,mail,userPrincipalName," +
	"signInActivity,accountEnabled,userType,assignedLicenses"

var ErrMissingCredentials = errors.New("directory credentials are not configured")

// maxThrottleRetries bounds how often a single request is retried after a
// 429 before the cycle gives up and falls back to cached data.
const maxThrottleRetries = 5

// Client talks to the directory provider. All requests share a bounded
// timeout so a hung provider call cannot stall a refresh cycle indefinitely.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	loginURL      string
	tenantID      string
	clientID      string
	clientSecret  string
	minRetryDelay time.Duration
}

func NewClient(cfg config.DirectoryConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		loginURL:      strings.TrimRight(cfg.LoginURL, "/"),
		tenantID:      cfg.TenantID,
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		minRetryDelay: 5 * time.Second,
	}
}

// AccessToken exchanges client credentials for an application token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.tenantID == "" || c.clientID == "" || c.clientSecret == "" {
		return "", ErrMissingCredentials
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"scope":         {"https://graph.microsoft.com/.default"},
	}

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginURL, c.tenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", errors.New("token endpoint returned an empty access token")
	}
	return payload.AccessToken, nil
}

// FetchUsers pages through the member directory with the manager
// back-reference expanded. Hidden categories are filtered server side when
// the corresponding toggle is on, matching what the report layer will drop
// anyway.
func (c *Client) FetchUsers(ctx context.Context, token string, hideDisabled, hideGuests bool) ([]User, error) {
	var filters []string
	if hideDisabled {
		filters = append(filters, "accountEnabled eq true")
	}
	if hideGuests {
		filters = append(filters, "userType eq 'Member'")
	}

	query := url.Values{
		"$select": {userSelectFields},
		"$expand": {"manager($select=id,displayName)"},
	}
	if len(filters) > 0 {
		query.Set("$filter", strings.Join(filters, " and "))
	}

	return c.fetchUserPages(ctx, token, c.baseURL+"/users?"+query.Encode(), nil)
}

// FetchDisabledUsers pages through accounts with accountEnabled=false,
// including the provider's leave timestamp when it has one.
func (c *Client) FetchDisabledUsers(ctx context.Context, token string) ([]User, error) {
	query := url.Values{
		"$select": {userSelectFields},
		"$filter": {"accountEnabled eq false"},
	}
	return c.fetchUserPages(ctx, token, c.baseURL+"/users?"+query.Encode(), nil)
}

// FetchSignInActivity pages through sign-in activity records. The endpoint
// throttles aggressively, so 429 responses are retried after the advertised
// delay.
func (c *Client) FetchSignInActivity(ctx context.Context, token string) ([]User, error) {
	query := url.Values{
		"$select": {signInSelectFields},
		"$top":    {"999"},
	}
	headers := map[string]string{"ConsistencyLevel": "eventual"}
	return c.fetchUserPages(ctx, token, c.baseURL+"/users?"+query.Encode(), headers)
}

// FetchSubscribedSKUs returns the skuId (lower-cased) to friendly part
// number map used to label assigned licenses.
func (c *Client) FetchSubscribedSKUs(ctx context.Context, token string) (map[string]string, error) {
	skuMap := make(map[string]string)

	query := url.Values{"$select": {"skuId,skuPartNumber"}}
	next := c.baseURL + "/subscribedSkus?" + query.Encode()

	for next != "" {
		var page skuPage
		if err := c.getJSON(ctx, token, next, nil, &page); err != nil {
			return nil, err
		}
		for _, sku := range page.Value {
			if sku.SkuID == "" {
				continue
			}
			label := sku.SkuPartNumber
			if label == "" {
				label = sku.SkuID
			}
			skuMap[strings.ToLower(sku.SkuID)] = label
		}
		next = page.NextLink
	}

	return skuMap, nil
}

func (c *Client) fetchUserPages(ctx context.Context, token, first string, headers map[string]string) ([]User, error) {
	var users []User

	next := first
	for next != "" {
		var page userPage
		if err := c.getJSON(ctx, token, next, headers, &page); err != nil {
			return users, err
		}
		users = append(users, page.Value...)
		next = page.NextLink
	}

	return users, nil
}

func (c *Client) getJSON(ctx context.Context, token, rawURL string, headers map[string]string, out interface{}) error {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("directory request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt >= maxThrottleRetries {
				return fmt.Errorf("directory throttled %d consecutive requests; giving up", attempt+1)
			}
			delay := retryDelay(resp.Header.Get("Retry-After"), c.minRetryDelay)
			log.Warn().Dur("delay", delay).Msg("directory throttled request; retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("directory authentication failed (status %d)", resp.StatusCode)
			case http.StatusForbidden:
				return fmt.Errorf("directory permission denied (status %d)", resp.StatusCode)
			default:
				return fmt.Errorf("directory returned status %d", resp.StatusCode)
			}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		return err
	}
}

func retryDelay(header string, floor time.Duration) time.Duration {
	delay := floor
	if parsed, err := strconv.Atoi(header); err == nil && time.Duration(parsed)*time.Second > delay {
		delay = time.Duration(parsed) * time.Second
	}
	return delay
}
