package moderation

import (
	"net/url"
	"sort"
	"strings"
)

// popEncode percent-encodes s the way the moderation endpoint's signature
// scheme requires. It is standard form-encoding with three substitutions:
// encoded space becomes %20, asterisk must be %2A, and %7E relaxes back to
// a literal tilde. Any deviation makes the remote reject every signature.
func popEncode(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	e = strings.ReplaceAll(e, "*", "%2A")
	e = strings.ReplaceAll(e, "%7E", "~")
	return e
}

// canonicalize joins the parameter map as key=value pairs, byte-ordered by
// key, each side popEncoded.
func canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, popEncode(k)+"="+popEncode(params[k]))
	}
	return strings.Join(pairs, "&")
}

// stringToSign builds METHOD&%2F&encode(query), the exact byte sequence the
// HMAC runs over.
func stringToSign(method, canonicalQuery string) string {
	return method + "&" + popEncode("/") + "&" + popEncode(canonicalQuery)
}
