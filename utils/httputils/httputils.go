// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides the HTTP client used to download seed files.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"
)

const (
	maxTraceLines = 256
	maxTraceChars = 240
)

var redactedHeaders = []string{"authorization:", "cookie:", "set-cookie:"}

// TraceRoundTripper writes an abbreviated dump of every request and response.
type TraceRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
}

// abbreviate prefixes each line, hides credentials and caps the dump size.
func abbreviate(dump []byte, prefix rune) string {
	lines := strings.Split(string(dump), "\n")
	if len(lines) > maxTraceLines {
		lines = append(lines[:maxTraceLines], "…")
	}

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, h := range redactedHeaders {
			if strings.HasPrefix(lower, h) {
				line = line[:len(h)] + " [redacted]"

				break
			}
		}

		if len(line) > maxTraceChars {
			line = line[:maxTraceChars] + "…"
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, line)
	}

	return strings.Join(lines, "\n") + "\n"
}

// RoundTrip implements the http.RoundTripper interface.
func (t *TraceRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP request: %w", err)
	}

	if _, err := io.WriteString(t.Writer, abbreviate(dump, '>')); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	dump, err = httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP response: %w", err)
	}

	if _, err := fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n%s", time.Since(start), abbreviate(dump, '<')); err != nil {
		return nil, err
	}

	return resp, nil
}

// HeaderRoundTripper sets fixed headers on every request.
type HeaderRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.Transport.RoundTrip(req)
}

// NewClient returns a client that identifies itself with userAgent and,
// when trace is not nil, dumps every exchange to it.
func NewClient(userAgent string, trace io.Writer, timeout time.Duration) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport

	if trace != nil {
		transport = &TraceRoundTripper{Transport: transport, Writer: trace}
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &HeaderRoundTripper{
			Transport: transport,
			Headers:   map[string]string{"User-Agent": userAgent},
		},
	}
}
