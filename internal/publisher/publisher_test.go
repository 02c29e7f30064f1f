package publisher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// Vector from the X developer docs ("Creating a signature").
func TestOAuth1SignatureVector(t *testing.T) {
	s := newOAuth1Signer(
		"xvz1evFS4wEEPTGEFPHBog",
		"kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		"370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		"LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	)
	s.nonce = func() string { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg" }
	s.timestamp = func() string { return "1318622958" }

	form := url.Values{}
	form.Set("status", "Hello Ladies + Gentlemen, a signed OAuth request!")

	header, err := s.authorizationHeader(
		http.MethodPost,
		"https://api.twitter.com/1.1/statuses/update.json?include_entities=true",
		form,
	)
	if err != nil {
		t.Fatal(err)
	}

	const wantSig = `oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D"`
	if !strings.Contains(header, wantSig) {
		t.Errorf("header missing expected signature:\n%s", header)
	}
	if !strings.HasPrefix(header, "OAuth ") {
		t.Errorf("header missing OAuth prefix: %s", header)
	}
}

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abcABC123", "abcABC123"},
		{"-._~", "-._~"},
		{"Ladies + Gentlemen", "Ladies%20%2B%20Gentlemen"},
		{"An encoded string!", "An%20encoded%20string%21"},
		{"Dogs, Cats & Mice", "Dogs%2C%20Cats%20%26%20Mice"},
		{"☃", "%E2%98%83"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := percentEncode(tt.input); got != tt.expected {
				t.Errorf("percentEncode(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   string
	}{
		{"rate limited", 429, "Too Many Requests", FailureRateLimited},
		{"duplicate", 403, `{"detail":"You are not allowed to create a Tweet with duplicate content."}`, FailureDuplicate},
		{"forbidden", 403, `{"detail":"read-only token"}`, FailureAuth},
		{"unauthorized", 401, "Unauthorized", FailureAuth},
		{"server error", 500, "oops", FailureOther},
		{"bad request", 400, "invalid", FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.status, tt.body)
			if err.Kind != tt.kind {
				t.Errorf("classify(%d) kind = %q, want %q", tt.status, err.Kind, tt.kind)
			}
			if err.StatusCode != tt.status {
				t.Errorf("classify(%d) status = %d", tt.status, err.StatusCode)
			}
		})
	}
}

func newTestPublisher(tweetURL, uploadURL string) *Publisher {
	p := New("k", "ks", "t", "ts", 5*time.Second, zap.NewNop())
	p.tweetURL = tweetURL
	p.uploadURL = uploadURL
	return p
}

func TestPublishTextOnly(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1"}}`))
	}))
	defer srv.Close()

	p := newTestPublisher(srv.URL, srv.URL)
	if err := p.Publish(context.Background(), "hello world", nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.HasPrefix(gotAuth, "OAuth ") {
		t.Errorf("missing OAuth header, got %q", gotAuth)
	}
	if !strings.Contains(gotBody, `"text":"hello world"`) {
		t.Errorf("unexpected body %q", gotBody)
	}
	if strings.Contains(gotBody, "media") {
		t.Errorf("text-only tweet must omit media block, got %q", gotBody)
	}
}

func TestPublishWithMedia(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "pic.jpg")
	if err := os.WriteFile(img, []byte("fakejpegdata"), 0o644); err != nil {
		t.Fatal(err)
	}

	var uploads int
	var tweetBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		uploads++
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("upload content type = %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"media_id_string":"778"}`))
	})
	mux.HandleFunc("/tweet", func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		tweetBody = string(buf)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"2"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newTestPublisher(srv.URL+"/tweet", srv.URL+"/upload")
	if err := p.Publish(context.Background(), "with pic", []string{img}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if uploads != 1 {
		t.Errorf("uploads = %d, want 1", uploads)
	}
	if !strings.Contains(tweetBody, `"media_ids":["778"]`) {
		t.Errorf("tweet body missing media id: %q", tweetBody)
	}
}

func TestPublishFailureClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"duplicate content"}`))
	}))
	defer srv.Close()

	p := newTestPublisher(srv.URL, srv.URL)
	err := p.Publish(context.Background(), "same again", nil)
	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("err = %v, want *PublishError", err)
	}
	if pubErr.Kind != FailureDuplicate {
		t.Errorf("kind = %q, want %q", pubErr.Kind, FailureDuplicate)
	}
}
