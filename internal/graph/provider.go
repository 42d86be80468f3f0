package graph

import (
	"fmt"
	"net/url"
	"strings"
)

// Network identifies a supported social network.
type Network string

const (
	NetworkFacebook  Network = "facebook"
	NetworkInstagram Network = "instagram"
)

const (
	facebookHost  = "https://graph.facebook.com"
	instagramHost = "https://graph.instagram.com"
)

// ErrUnsupportedNetwork marks a network name the adapter cannot handle.
// Callers are expected to log and skip, not abort.
type ErrUnsupportedNetwork struct {
	Name string
}

func (e *ErrUnsupportedNetwork) Error() string {
	return fmt.Sprintf("unsupported network: %q", e.Name)
}

// ResolveNetwork normalizes a configured network name. Unknown names return
// an *ErrUnsupportedNetwork.
func ResolveNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(NetworkFacebook):
		return NetworkFacebook, nil
	case string(NetworkInstagram):
		return NetworkInstagram, nil
	default:
		return "", &ErrUnsupportedNetwork{Name: name}
	}
}

const (
	MediaTypeText          = "text"
	MediaTypeImage         = "image"
	MediaTypeVideo         = "video"
	MediaTypeReel          = "reel"
	MediaTypeCarouselAlbum = "carousel_album"
)

// NormalizeMediaType maps a provider-reported media type onto the canonical
// lowercase form. Empty values default to text (Facebook posts carry no
// media_type field).
func NormalizeMediaType(raw string) string {
	mt := strings.ToLower(strings.TrimSpace(raw))
	if mt == "" {
		return MediaTypeText
	}
	return mt
}

var (
	facebookListingFields  = "id,message,created_time,permalink_url,likes.summary(true),comments.summary(true),shares"
	instagramListingFields = "id,caption,media_type,media_url,permalink,timestamp,username"

	// Facebook posts use fixed metric sets regardless of media type.
	facebookInitialMetrics = []string{"post_impressions_unique", "post_impressions", "post_engaged_users"}
	facebookRefreshMetrics = []string{"post_impressions_unique", "post_impressions"}
)

// MetricsForMediaType returns the Instagram insight metric names to request
// for a given media type. Input is normalized, so callers may pass the
// provider value verbatim.
func MetricsForMediaType(mediaType string) []string {
	switch NormalizeMediaType(mediaType) {
	case MediaTypeImage, MediaTypeCarouselAlbum:
		return []string{"impressions", "reach", "saved", "likes", "comments"}
	case MediaTypeVideo:
		return []string{"reach", "saved", "video_views", "likes", "comments"}
	case MediaTypeReel:
		return []string{"reach", "saved", "plays", "likes", "comments"}
	default:
		return []string{"reach", "saved", "likes", "comments"}
	}
}

// FacebookMetrics returns the fixed Facebook metric set. The refresh pass
// omits post_engaged_users, which newer API versions no longer serve.
func FacebookMetrics(refresh bool) []string {
	if refresh {
		return facebookRefreshMetrics
	}
	return facebookInitialMetrics
}

// Provider builds the Graph API URLs for one network.
type Provider struct {
	network    Network
	apiVersion string
}

func NewProvider(network Network, apiVersion string) *Provider {
	return &Provider{network: network, apiVersion: apiVersion}
}

func (p *Provider) Network() Network {
	return p.network
}

func (p *Provider) host() string {
	if p.network == NetworkInstagram {
		return instagramHost
	}
	return facebookHost
}

// ListingURL returns the paginated post/media listing endpoint for an
// account.
func (p *Provider) ListingURL(accountID, accessToken string) string {
	params := url.Values{}
	params.Set("access_token", accessToken)

	switch p.network {
	case NetworkInstagram:
		params.Set("fields", instagramListingFields)
		return fmt.Sprintf("%s/%s/media?%s", p.host(), accountID, params.Encode())
	default:
		params.Set("fields", facebookListingFields)
		return fmt.Sprintf("%s/%s/%s/posts?%s", p.host(), p.apiVersion, accountID, params.Encode())
	}
}

// InsightsURL returns the per-post insights endpoint requesting the metric
// set appropriate for the post's media type. refresh selects the reduced
// Facebook metric set.
func (p *Provider) InsightsURL(postID, mediaType, accessToken string, refresh bool) string {
	var metrics []string
	switch p.network {
	case NetworkInstagram:
		metrics = MetricsForMediaType(mediaType)
	default:
		metrics = FacebookMetrics(refresh)
	}

	params := url.Values{}
	params.Set("metric", strings.Join(metrics, ","))
	params.Set("access_token", accessToken)

	if p.network == NetworkInstagram {
		return fmt.Sprintf("%s/%s/insights?%s", p.host(), postID, params.Encode())
	}
	return fmt.Sprintf("%s/%s/%s/insights?%s", p.host(), p.apiVersion, postID, params.Encode())
}
