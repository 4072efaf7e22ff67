// Package upstream interprets responses from external data providers such
// as the university timetable service. Providers return errors in a handful
// of inconsistent shapes, so callers hand raw material to Classify and get
// back a uniform verdict they can map onto domain errors.
package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Kind buckets an upstream failure by what the caller should do about it.
type Kind string

const (
	KindAuth       Kind = "AUTH"
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindServer     Kind = "SERVER"
	KindNetwork    Kind = "NETWORK"
	KindUnknown    Kind = "UNKNOWN"
)

// Classified is the verdict on a single upstream response.
type Classified struct {
	Kind    Kind
	Message string
}

// maxLiteralMessage caps how much raw body text gets surfaced to users.
const maxLiteralMessage = 200

// Classify turns an upstream response into a Classified verdict. A non-nil
// transport error wins over everything else. Otherwise the HTTP status
// picks the kind and the body supplies the message when one can be
// extracted from it.
func Classify(status int, body []byte, err error) Classified {
	if err != nil {
		return Classified{Kind: KindNetwork, Message: fmt.Sprintf("upstream unreachable: %v", err)}
	}

	kind := kindForStatus(status)
	if msg := extractMessage(body); msg != "" {
		return Classified{Kind: kind, Message: msg}
	}
	return Classified{Kind: kind, Message: defaultMessage(kind, status)}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500:
		return KindServer
	case status >= 200 && status < 300:
		return KindUnknown
	default:
		return KindUnknown
	}
}

// extractMessage pulls a human-readable message out of the response body.
// Providers have been seen to answer with {"error": ...}, {"message": ...},
// {"msg": ...}, with JSON buried inside an HTML error page, or with plain
// text.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	if msg := messageFromJSON([]byte(trimmed)); msg != "" {
		return msg
	}

	// Some providers wrap a JSON payload in surrounding prose. Try the
	// outermost brace-delimited slice before giving up on JSON.
	if start, end := strings.Index(trimmed, "{"), strings.LastIndex(trimmed, "}"); start >= 0 && end > start {
		if msg := messageFromJSON([]byte(trimmed[start : end+1])); msg != "" {
			return msg
		}
	}

	// Raw JSON and markup make poor user-facing messages even when short.
	if looksLikeMarkup(trimmed) || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") || len(trimmed) > maxLiteralMessage {
		return ""
	}
	return trimmed
}

func messageFromJSON(raw []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message", "msg", "detail"} {
		if value, ok := payload[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func looksLikeMarkup(s string) bool {
	return strings.HasPrefix(s, "<")
}

func defaultMessage(kind Kind, status int) string {
	switch kind {
	case KindAuth:
		return "upstream rejected the request credentials"
	case KindValidation:
		return "upstream rejected the request data"
	case KindNotFound:
		return "upstream resource not found"
	case KindServer:
		return fmt.Sprintf("upstream server error (status %d)", status)
	default:
		return fmt.Sprintf("unexpected upstream response (status %d)", status)
	}
}
