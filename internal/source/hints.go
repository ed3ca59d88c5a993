package source

import (
	"crypto/md5" //nolint:gosec // used for stable selection, not security
	"encoding/binary"
	"net/url"
	"strconv"

	"github.com/davidbz/imgresolve/internal/domain"
)

const (
	standardQuality = 85
	premiumQuality  = 95
)

// FallbackIndex selects a stable position in a list of n entries for name:
// the first 32 bits of MD5(name), modulo n.
func FallbackIndex(name string, n int) int {
	if n <= 0 {
		return 0
	}
	sum := md5.Sum([]byte(name)) //nolint:gosec // see import
	return int(binary.BigEndian.Uint32(sum[:4]) % uint32(n))
}

// sizeHintSupport reports whether a host understands sizing parameters.
type sizeHintSupport interface {
	SupportsSizeHints(host string) bool
}

// WithSizeHints adds w, h, q, fm and fit parameters for CDNs that honour them.
// URLs on other hosts, and requests without dimensions, are returned unchanged.
func WithSizeHints(raw string, v domain.Variant, hosts sizeHintSupport) string {
	if !v.HasSize() {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || !hosts.SupportsSizeHints(u.Hostname()) {
		return raw
	}

	q := u.Query()
	if v.Width > 0 {
		q.Set("w", strconv.Itoa(v.Width))
	}
	if v.Height > 0 {
		q.Set("h", strconv.Itoa(v.Height))
	}
	quality := standardQuality
	if v.Quality == domain.QualityPremium {
		quality = premiumQuality
	}
	q.Set("q", strconv.Itoa(quality))
	q.Set("fit", "crop")
	if v.Format != "" {
		q.Set("fm", v.Format)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
