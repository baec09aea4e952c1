package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

const bodyContextKey contextKey = "body"

// Body is a decoded request payload: a JSON object or array, or an expanded form.
type Body struct {
	value any
}

// Map returns the payload as an object, empty when the payload was absent or an array.
func (b Body) Map() map[string]any {
	m, _ := b.value.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

// Value returns the raw decoded payload.
func (b Body) Value() any {
	return b.value
}

// Bind copies the payload into dst using the json struct tags of dst.
func (b Body) Bind(dst any) error {
	v := b.value
	if v == nil {
		v = map[string]any{}
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to re-encode body: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return NewError(http.StatusBadRequest, fmt.Sprintf("Invalid value for field %q", typeErr.Field), ErrBadRequest)
		}
		return MalformedBody(err)
	}

	return nil
}

// Decode parses raw according to contentType. JSON payloads must be an object or an array; an
// empty JSON payload decodes to an empty object. Form payloads expand bracketed keys into nested
// objects and arrays. Other content types yield an empty Body.
func Decode(raw []byte, contentType string) (Body, error) {
	if contentType == "" {
		return Body{}, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Body{}, nil
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return decodeJSON(raw)
	case mediaType == "application/x-www-form-urlencoded":
		form, err := parseNestedForm(string(raw))
		if err != nil {
			return Body{}, MalformedBody(err)
		}
		return Body{value: form}, nil
	default:
		return Body{}, nil
	}
}

func decodeJSON(raw []byte) (Body, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Body{value: map[string]any{}}, nil
	}

	if trimmed[0] != '{' && trimmed[0] != '[' {
		return Body{}, MalformedBody(errors.New("JSON body must be an object or an array"))
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return Body{}, MalformedBody(err)
	}

	return Body{value: v}, nil
}

// BodyFromContext returns the payload decoded by BodyDecoder.
func BodyFromContext(ctx context.Context) Body {
	b, _ := ctx.Value(bodyContextKey).(Body)
	return b
}

// WithBody stores b in ctx.
func WithBody(ctx context.Context, b Body) context.Context {
	return context.WithValue(ctx, bodyContextKey, b)
}

// BodyDecoder reads at most limit bytes of the request body, decodes it and stores the result
// in the request context. The raw bytes stay readable through r.Body.
func BodyDecoder(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			if r.ContentLength > limit {
				return PayloadTooLarge(limit)
			}

			var raw []byte
			if r.Body != nil && r.Body != http.NoBody {
				var err error
				raw, err = io.ReadAll(io.LimitReader(r.Body, limit+1))
				if err != nil {
					return NewError(http.StatusBadRequest, "Failed to read request body", err)
				}
				if int64(len(raw)) > limit {
					return PayloadTooLarge(limit)
				}
				r.Body = io.NopCloser(bytes.NewReader(raw))
			}

			body, err := Decode(raw, r.Header.Get("Content-Type"))
			if err != nil {
				return err
			}

			next.ServeHTTP(w, r.WithContext(WithBody(r.Context(), body)))
			return nil
		})
	}
}
