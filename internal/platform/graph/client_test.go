package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orgchart/internal/platform/config"
)

func testClient(baseURL, loginURL string) *Client {
	return NewClient(config.DirectoryConfig{
		BaseURL:      baseURL,
		LoginURL:     loginURL,
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
	})
}

func TestAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tenant/oauth2/v2.0/token" {
			t.Errorf("Unexpected token path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("Expected client_credentials grant, got %s", r.PostForm.Get("grant_type"))
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	token, err := client.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken failed: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("Expected tok-123, got %s", token)
	}
}

func TestAccessToken_MissingCredentials(t *testing.T) {
	client := NewClient(config.DirectoryConfig{})
	if _, err := client.AccessToken(context.Background()); err != ErrMissingCredentials {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

func TestFetchUsers_Pagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
		}

		page := r.URL.Query().Get("page")
		switch page {
		case "2":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"value": []map[string]string{{"id": "u3", "displayName": "C"}},
			})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"value": []map[string]string{
					{"id": "u1", "displayName": "A"},
					{"id": "u2", "displayName": "B"},
				},
				"@odata.nextLink": server.URL + "/users?page=2",
			})
		}
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	users, err := client.FetchUsers(context.Background(), "tok", true, true)
	if err != nil {
		t.Fatalf("FetchUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("Expected 3 users across pages, got %d", len(users))
	}
	if users[2].ID != "u3" {
		t.Errorf("Expected u3 last, got %s", users[2].ID)
	}
}

func TestFetchUsers_ServerSideFilters(t *testing.T) {
	var gotFilter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("$filter")
		json.NewEncoder(w).Encode(map[string]interface{}{"value": []map[string]string{}})
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	if _, err := client.FetchUsers(context.Background(), "tok", true, true); err != nil {
		t.Fatalf("FetchUsers failed: %v", err)
	}
	expected := "accountEnabled eq true and userType eq 'Member'"
	if gotFilter != expected {
		t.Errorf("Expected filter %q, got %q", expected, gotFilter)
	}

	if _, err := client.FetchUsers(context.Background(), "tok", false, false); err != nil {
		t.Fatal(err)
	}
	if gotFilter != "" {
		t.Errorf("Expected no filter with toggles off, got %q", gotFilter)
	}
}

func TestGetJSON_RetriesAfterThrottle(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]string{{"id": "u1"}},
		})
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	client.minRetryDelay = time.Millisecond

	users, err := client.FetchDisabledUsers(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
	if len(users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(users))
	}
}

func TestGetJSON_AuthErrors(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, "authentication"},
		{http.StatusForbidden, "permission"},
		{http.StatusBadGateway, "status 502"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("Status%d", tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := testClient(server.URL, server.URL)
			_, err := client.FetchDisabledUsers(context.Background(), "tok")
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestFetchSubscribedSKUs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]string{
				{"skuId": "AAA-111", "skuPartNumber": "ENTERPRISE_E5"},
				{"skuId": "BBB-222"},
			},
		})
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	skuMap, err := client.FetchSubscribedSKUs(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FetchSubscribedSKUs failed: %v", err)
	}

	if skuMap["aaa-111"] != "ENTERPRISE_E5" {
		t.Errorf("Expected lower-cased key with part number, got %v", skuMap)
	}
	if skuMap["bbb-222"] != "BBB-222" {
		t.Errorf("Expected raw id fallback label, got %v", skuMap)
	}
}

func TestGetJSON_GivesUpAfterSustainedThrottling(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	client.minRetryDelay = time.Millisecond

	_, err := client.FetchDisabledUsers(context.Background(), "tok")
	if err == nil {
		t.Fatal("Expected error after sustained throttling")
	}
	if !strings.Contains(err.Error(), "throttled") {
		t.Errorf("Expected throttling error, got %v", err)
	}
	if attempts != maxThrottleRetries+1 {
		t.Errorf("Expected %d attempts, got %d", maxThrottleRetries+1, attempts)
	}
}

func TestRetryDelay(t *testing.T) {
	floor := 5 * time.Second
	if got := retryDelay("", floor); got != 5*time.Second {
		t.Errorf("Expected 5s default, got %v", got)
	}
	if got := retryDelay("2", floor); got != 5*time.Second {
		t.Errorf("Expected minimum 5s, got %v", got)
	}
	if got := retryDelay("30", floor); got != 30*time.Second {
		t.Errorf("Expected 30s from header, got %v", got)
	}
}
