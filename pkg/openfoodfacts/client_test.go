package openfoodfacts

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubClient(t *testing.T, status int, body string, capture func(*http.Request)) *Client {
	t.Helper()
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if capture != nil {
			capture(req)
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})
	return NewClient(
		WithBaseURL("http://off.test/"),
		WithUserAgent("scancart-test/0.1"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)
}

func TestLookupFound(t *testing.T) {
	var capturedURL, capturedUA string
	client := stubClient(t, http.StatusOK,
		`{"status":1,"product":{"product_name":"Milk","image_url":"http://x/milk.png"}}`,
		func(req *http.Request) {
			capturedURL = req.URL.String()
			capturedUA = req.Header.Get("User-Agent")
		})

	res, err := client.Lookup(context.Background(), "111")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if capturedURL != "http://off.test/api/v0/product/111.json" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedUA != "scancart-test/0.1" {
		t.Fatalf("unexpected user agent %q", capturedUA)
	}
	if !res.Found || res.Name != "Milk" || res.ImageURL != "http://x/milk.png" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLookupFoundWithoutName(t *testing.T) {
	client := stubClient(t, http.StatusOK, `{"status":1,"product":{}}`, nil)
	res, err := client.Lookup(context.Background(), "222")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !res.Found || res.Name != "" || res.ImageURL != "" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLookupNotFoundIsNotAnError(t *testing.T) {
	client := stubClient(t, http.StatusNotFound, `{"status":0,"status_verbose":"product not found"}`, nil)
	res, err := client.Lookup(context.Background(), "000")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if res.Found {
		t.Fatalf("expected not found, got %+v", res)
	}
}

func TestLookupEscapesCode(t *testing.T) {
	var capturedPath string
	client := stubClient(t, http.StatusOK, `{"status":0}`, func(req *http.Request) {
		capturedPath = req.URL.EscapedPath()
	})
	if _, err := client.Lookup(context.Background(), " a/b "); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if capturedPath != "/api/v0/product/a%2Fb.json" {
		t.Fatalf("unexpected path %q", capturedPath)
	}
}

func TestLookupFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *Client
		code   string
		want   pkgerrors.Code
	}{
		{name: "empty code", client: NewClient(), code: "  ", want: pkgerrors.CodeValidation},
		{name: "server error", client: stubClient(t, http.StatusBadGateway, "upstream down", nil), code: "1", want: pkgerrors.CodeDependency},
		{name: "malformed body", client: stubClient(t, http.StatusOK, "<html>", nil), code: "1", want: pkgerrors.CodeDependency},
		{name: "transport", client: NewClient(WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		})})), code: "1", want: pkgerrors.CodeDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Lookup(context.Background(), tt.code)
			if err == nil {
				t.Fatal("expected error")
			}
			if !pkgerrors.IsCode(err, tt.want) {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if _, err := c.Lookup(context.Background(), "1"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
