package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// maxBodyBytes bounds JSON request bodies. Uploads do not go through decode.
const maxBodyBytes = 1 << 20

// decode reads a single JSON document from the request body into v, rejecting
// unknown fields.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func respond(ctx context.Context, rw http.ResponseWriter, status int, data interface{}) {
	_, span := otel.Tracer("handler").Start(ctx, "handler.respond")
	span.SetAttributes(attribute.Int("http.status_code", status))
	defer span.End()

	if status == http.StatusNoContent || data == nil {
		rw.WriteHeader(status)
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		span.RecordError(err)
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(raw)
}

func respondErr(ctx context.Context, rw http.ResponseWriter, status int, err error) {
	respond(ctx, rw, status, map[string]string{
		"code":  http.StatusText(status),
		"error": err.Error(),
	})
}
