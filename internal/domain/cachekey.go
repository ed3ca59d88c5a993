package domain

import (
	"encoding/hex"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// trackingParams are dropped before fingerprinting a URL.
//
//nolint:gochecknoglobals // read-only lookup table
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"msclkid": true,
	"mc_cid":  true,
	"mc_eid":  true,
	"ref_src": true,
}

// CanonicalReference returns the normalized form of a reference used for fingerprinting.
func CanonicalReference(ref ImageReference) string {
	switch ref.Kind() {
	case KindURL:
		return canonicalURL(ref.Raw())
	case KindLocal:
		return path.Clean(ref.Raw())
	default:
		return strings.ToLower(ref.Raw())
	}
}

func canonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	query := u.Query()
	for name := range query {
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, "utm_") || trackingParams[lower] {
			query.Del(name)
		}
	}
	// Encode sorts by key.
	u.RawQuery = query.Encode()

	return u.String()
}

// CacheKey derives the deterministic cache fingerprint of a reference and its variant.
func CacheKey(ref ImageReference) string {
	v := ref.Variant()

	var b strings.Builder
	b.WriteString(ref.Kind().String())
	b.WriteByte('|')
	b.WriteString(CanonicalReference(ref))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(v.Width))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(v.Height))
	b.WriteByte('|')
	b.WriteString(string(v.Quality))
	b.WriteByte('|')
	b.WriteString(v.Format)

	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}
