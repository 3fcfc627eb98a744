package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// maxBodyBytes caps a single upstream payload. A full race of OpenF1
// position samples is a few MB.
const maxBodyBytes = 64 << 20

// GetJSON fetches rawURL and decodes a single JSON object into T.
func GetJSON[T any](ctx context.Context, g Getter, rawURL string) (*T, error) {
	body, err := g.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	var out T
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&out); err != nil {
		return nil, &DecodeError{URL: rawURL, Err: eris.Wrap(err, "decode object")}
	}
	return &out, nil
}

// GetArray fetches rawURL and decodes a JSON array of T. A null payload is
// treated as an empty array.
func GetArray[T any](ctx context.Context, g Getter, rawURL string) ([]T, error) {
	body, err := g.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	items, errs := DecodeJSONArray[T](ctx, io.LimitReader(body, maxBodyBytes))
	out := []T{}
	for item := range items {
		out = append(out, item)
	}
	if err := <-errs; err != nil {
		if ctx.Err() != nil {
			return nil, &NetworkError{URL: rawURL, Err: err}
		}
		return nil, &DecodeError{URL: rawURL, Err: err}
	}
	return out, nil
}

// DecodeJSONArray streams the elements of a JSON array to a channel so large
// payloads are never held twice in memory. Both channels close when decoding
// finishes; at most one error is sent.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		dec := json.NewDecoder(r)

		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				errCh <- eris.New("json: empty payload")
				return
			}
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}
		if tok == nil {
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected array, got %v", tok)
			return
		}

		for dec.More() {
			var item T
			if err := dec.Decode(&item); err != nil {
				errCh <- eris.Wrap(err, "json: decode element")
				return
			}
			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		if _, err := dec.Token(); err != nil {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}
