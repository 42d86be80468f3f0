package graph

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestResolveNetwork(t *testing.T) {
	cases := []struct {
		input   string
		want    Network
		wantErr bool
	}{
		{"facebook", NetworkFacebook, false},
		{"instagram", NetworkInstagram, false},
		{" Facebook ", NetworkFacebook, false},
		{"INSTAGRAM", NetworkInstagram, false},
		{"tiktok", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ResolveNetwork(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ResolveNetwork(%q) expected error, got %q", tc.input, got)
				continue
			}
			var unsupported *ErrUnsupportedNetwork
			if !errors.As(err, &unsupported) {
				t.Errorf("ResolveNetwork(%q) error should be ErrUnsupportedNetwork, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveNetwork(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ResolveNetwork(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeMediaType(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", "text"},
		{"IMAGE", "image"},
		{" VIDEO ", "video"},
		{"CAROUSEL_ALBUM", "carousel_album"},
		{"reel", "reel"},
	}

	for _, tc := range cases {
		if got := NormalizeMediaType(tc.input); got != tc.want {
			t.Errorf("NormalizeMediaType(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMetricsForMediaType(t *testing.T) {
	cases := []struct {
		mediaType string
		want      []string
	}{
		{"image", []string{"impressions", "reach", "saved", "likes", "comments"}},
		{"carousel_album", []string{"impressions", "reach", "saved", "likes", "comments"}},
		{"video", []string{"reach", "saved", "video_views", "likes", "comments"}},
		{"VIDEO ", []string{"reach", "saved", "video_views", "likes", "comments"}},
		{"reel", []string{"reach", "saved", "plays", "likes", "comments"}},
		{"text", []string{"reach", "saved", "likes", "comments"}},
		{"something_else", []string{"reach", "saved", "likes", "comments"}},
	}

	for _, tc := range cases {
		got := MetricsForMediaType(tc.mediaType)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("MetricsForMediaType(%q) = %v, want %v", tc.mediaType, got, tc.want)
		}
	}
}

func TestFacebookMetrics(t *testing.T) {
	initial := FacebookMetrics(false)
	if !reflect.DeepEqual(initial, []string{"post_impressions_unique", "post_impressions", "post_engaged_users"}) {
		t.Errorf("initial Facebook metrics = %v", initial)
	}

	refresh := FacebookMetrics(true)
	if !reflect.DeepEqual(refresh, []string{"post_impressions_unique", "post_impressions"}) {
		t.Errorf("refresh Facebook metrics = %v", refresh)
	}
}

func TestProviderListingURL(t *testing.T) {
	fb := NewProvider(NetworkFacebook, "v19.0")
	fbURL := fb.ListingURL("12345", "token-abc")
	if !strings.HasPrefix(fbURL, "https://graph.facebook.com/v19.0/12345/posts?") {
		t.Errorf("unexpected Facebook listing URL: %s", fbURL)
	}
	for _, want := range []string{"access_token=token-abc", "created_time", "permalink_url", "likes.summary%28true%29"} {
		if !strings.Contains(fbURL, want) {
			t.Errorf("Facebook listing URL missing %q: %s", want, fbURL)
		}
	}

	ig := NewProvider(NetworkInstagram, "v19.0")
	igURL := ig.ListingURL("67890", "token-xyz")
	if !strings.HasPrefix(igURL, "https://graph.instagram.com/67890/media?") {
		t.Errorf("unexpected Instagram listing URL: %s", igURL)
	}
	for _, want := range []string{"access_token=token-xyz", "media_type", "timestamp"} {
		if !strings.Contains(igURL, want) {
			t.Errorf("Instagram listing URL missing %q: %s", want, igURL)
		}
	}
}

func TestProviderInsightsURL(t *testing.T) {
	ig := NewProvider(NetworkInstagram, "v19.0")
	igURL := ig.InsightsURL("post-1", "reel", "tok", false)
	if !strings.HasPrefix(igURL, "https://graph.instagram.com/post-1/insights?") {
		t.Errorf("unexpected Instagram insights URL: %s", igURL)
	}
	if !strings.Contains(igURL, "metric=reach%2Csaved%2Cplays%2Clikes%2Ccomments") {
		t.Errorf("Instagram reel insights URL has wrong metric set: %s", igURL)
	}

	fb := NewProvider(NetworkFacebook, "v19.0")
	fbInitial := fb.InsightsURL("post-2", "", "tok", false)
	if !strings.Contains(fbInitial, "post_engaged_users") {
		t.Errorf("Facebook initial insights URL should request post_engaged_users: %s", fbInitial)
	}

	fbRefresh := fb.InsightsURL("post-2", "", "tok", true)
	if strings.Contains(fbRefresh, "post_engaged_users") {
		t.Errorf("Facebook refresh insights URL should not request post_engaged_users: %s", fbRefresh)
	}
	if !strings.HasPrefix(fbRefresh, "https://graph.facebook.com/v19.0/post-2/insights?") {
		t.Errorf("unexpected Facebook insights URL: %s", fbRefresh)
	}
}
