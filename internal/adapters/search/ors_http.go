package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const orsMaxAttempts = 4

// orsStatusError is a non-2xx answer from the geocoder, with the start of its body.
type orsStatusError struct {
	Status int
	Body   string
}

func (e *orsStatusError) Error() string {
	return fmt.Sprintf("geocoder answered %d: %s", e.Status, e.Body)
}

// transient reports whether a geocode attempt is worth repeating: rate
// limiting, upstream 5xx, or a network failure.
func transient(err error) bool {
	var se *orsStatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (o *ORSPlaceSearcher) geocodeRequest(ctx context.Context, text string) (*http.Request, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("size", strconv.Itoa(orsMaxResults))
	if o.country != "" {
		params.Set("boundary.country", o.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/geocode/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (o *ORSPlaceSearcher) geocodeOnce(ctx context.Context, text string) (*http.Response, error) {
	req, err := o.geocodeRequest(ctx, text)
	if err != nil {
		return nil, err
	}

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &orsStatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// geocode runs the search, repeating transient failures with doubling delays
// until orsMaxAttempts or ctx runs out. The caller closes the body.
func (o *ORSPlaceSearcher) geocode(ctx context.Context, text string) (*http.Response, error) {
	delay := o.backoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := o.geocodeOnce(ctx, text)
		if err == nil {
			return resp, nil
		}
		if !transient(err) || attempt == orsMaxAttempts {
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
