// Package rewrite builds the outbound request from a matched route
// and relays the upstream response back to the client: URI
// construction, hop-by-hop header filtering, and X-Forwarded-*
// policy.
package rewrite

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/latticegw/gatewayd/internal/gwerrors"
	"github.com/latticegw/gatewayd/internal/proxydef"
	"github.com/latticegw/gatewayd/internal/routetable"
)

// hopByHopHeaders are stripped from both the inbound request and the
// upstream response, per RFC 7230 §6.1.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

// BuildUpstreamURL constructs the backend URL for an inbound request
// matched against def. When StripListenPath is set, the pattern's
// leading literal segments (literalSegments, as reported by
// routetable.Match) are removed from the inbound path before it is
// appended to BackendPath, so that any parameter segments captured by
// the route survive into the forwarded path. The two are joined with
// exactly one slash regardless of whether either side already
// carries one; when nothing remains after stripping, BackendPath is
// used as is.
func BuildUpstreamURL(def *proxydef.Definition, inboundPath string, literalSegments int, rawQuery string) string {
	path := inboundPath
	if def.StripListenPath {
		path = stripLeadingSegments(path, literalSegments)
	}

	base := strings.TrimSuffix(def.BackendPath, "/")
	joined := base + path
	if path == "" {
		joined = def.BackendPath
	}
	if joined == "" {
		joined = "/"
	}

	u := fmt.Sprintf("%s://%s:%d%s", def.BackendProtocol, def.BackendHost, def.BackendPort, joined)
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// stripLeadingSegments removes the first n path segments from path,
// operating on the actual segments of path rather than any literal
// pattern text, so it works correctly even when those segments were
// matched by a route parameter. Removing every segment yields the
// empty string.
func stripLeadingSegments(path string, n int) string {
	trimmed := strings.TrimPrefix(path, "/")
	var segments []string
	if trimmed != "" {
		segments = strings.Split(trimmed, "/")
	}
	if n > len(segments) {
		n = len(segments)
	}
	remaining := segments[n:]
	if len(remaining) == 0 {
		return ""
	}
	return "/" + strings.Join(remaining, "/")
}

// CopyRequestHeaders copies src into dst, dropping hop-by-hop headers.
func CopyRequestHeaders(dst, src http.Header) {
	for name, values := range src {
		if isHopByHop(name) {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

// CopyResponseHeaders copies src into dst, dropping hop-by-hop
// headers.
func CopyResponseHeaders(dst, src http.Header) {
	CopyRequestHeaders(dst, src)
}

func isHopByHop(name string) bool {
	for _, h := range hopByHopHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

// ApplyForwardingHeaders sets the Host header and X-Forwarded-*
// headers on outbound per def's preserve_host_header policy and the
// inbound request's real peer address and scheme.
func ApplyForwardingHeaders(outbound *http.Request, inbound *http.Request, def *proxydef.Definition) {
	if def.PreserveHostHeader {
		outbound.Host = inbound.Host
	} else {
		outbound.Host = def.BackendHost
	}

	peerIP := inbound.RemoteAddr
	if host, _, err := net.SplitHostPort(inbound.RemoteAddr); err == nil {
		peerIP = host
	}
	if existing := outbound.Header.Get("X-Forwarded-For"); existing != "" {
		outbound.Header.Set("X-Forwarded-For", existing+", "+peerIP)
	} else {
		outbound.Header.Set("X-Forwarded-For", peerIP)
	}

	scheme := "http"
	if inbound.TLS != nil {
		scheme = "https"
	}
	outbound.Header.Set("X-Forwarded-Proto", scheme)
	outbound.Header.Set("X-Forwarded-Host", inbound.Host)
}

// Dispatch forwards inbound to the backend described by match using
// client, and writes the response (or an error status) to w.
// The matched definition's ID is attached as an X-Proxy-Id response
// header so operators can see which definition served a given response.
func Dispatch(w http.ResponseWriter, inbound *http.Request, match routetable.Match, client *http.Client) {
	def := match.Definition

	connectTimeout := time.Duration(def.BackendConnectTimeoutMs) * time.Millisecond
	readTimeout := time.Duration(def.BackendReadTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(inbound.Context(), connectTimeout+readTimeout)
	defer cancel()

	url := BuildUpstreamURL(def, inbound.URL.Path, match.LiteralSegments, inbound.URL.RawQuery)
	outbound, err := http.NewRequestWithContext(ctx, inbound.Method, url, inbound.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build upstream request")
		return
	}

	CopyRequestHeaders(outbound.Header, inbound.Header)
	ApplyForwardingHeaders(outbound, inbound, def)
	outbound.Header.Set("X-Proxy-Id", def.ID)

	resp, err := client.Do(outbound)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream request failed")
		return
	}
	defer resp.Body.Close()

	CopyResponseHeaders(w.Header(), resp.Header)
	w.Header().Set("X-Proxy-Id", def.ID)
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// NotFoundError describes a routing miss as a gwerrors.Routing error.
// Dispatch never returns it; a routing miss is answered with a 404 by
// the caller that performed the route lookup.
var NotFoundError = gwerrors.New(gwerrors.Routing, "no route matches the request path")
