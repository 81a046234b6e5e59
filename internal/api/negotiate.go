package api

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

const (
	mediaHTML = "text/html"
	mediaJSON = "application/json"
)

// wantsJSON reports whether the client prefers JSON over HTML. Ties and
// missing Accept headers go to HTML.
func wantsJSON(r *http.Request) bool {
	return negotiate(r.Header.Get("Accept"), mediaHTML, mediaJSON) == mediaJSON
}

// negotiate returns the offer with the highest quality in accept. Earlier
// offers win ties; offers[0] is returned when nothing is acceptable.
func negotiate(accept string, offers ...string) string {
	best, bestQ := offers[0], 0.0
	if strings.TrimSpace(accept) == "" {
		return best
	}
	for _, offer := range offers {
		if q := quality(accept, offer); q > bestQ {
			best, bestQ = offer, q
		}
	}
	return best
}

// quality returns the q-value the most specific matching range in accept
// assigns to offer, or 0 when no range matches.
func quality(accept, offer string) float64 {
	offerType, offerSub, _ := strings.Cut(offer, "/")
	bestSpecificity, q := -1, 0.0
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		typ, sub, _ := strings.Cut(mediaType, "/")

		specificity := -1
		switch {
		case typ == offerType && sub == offerSub:
			specificity = 2
		case typ == offerType && sub == "*":
			specificity = 1
		case typ == "*" && sub == "*":
			specificity = 0
		}
		if specificity <= bestSpecificity {
			continue
		}

		pq := 1.0
		if v, ok := params["q"]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				pq = f
			}
		}
		bestSpecificity, q = specificity, pq
	}
	return q
}
