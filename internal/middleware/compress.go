package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/onnwee/forcemap/internal/logger"
)

// minCompressSize is the response size below which compression is
// skipped. The API serves two very different payloads: multi-megabyte
// snapshots and sub-hundred-byte control responses. Compressing the
// latter costs CPU and bytes for nothing, so responses are buffered
// until they cross this threshold and only then committed to an
// encoder.
const minCompressSize = 1 << 10

// deferredWriter buffers the response until it either exceeds
// minCompressSize (then streams through the negotiated encoder) or the
// handler returns (then ships the small body uncompressed). The status
// code is held back with the body so the encoding decision can still
// change headers.
type deferredWriter struct {
	http.ResponseWriter
	encoding string

	status    int
	buf       []byte
	enc       io.WriteCloser
	committed bool
}

func (w *deferredWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *deferredWriter) Write(p []byte) (int, error) {
	if w.enc != nil {
		return w.enc.Write(p)
	}
	w.buf = append(w.buf, p...)
	if len(w.buf) >= minCompressSize {
		if err := w.beginStreaming(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// beginStreaming commits the headers with Content-Encoding set and
// replays the buffered prefix through a fresh encoder.
func (w *deferredWriter) beginStreaming() error {
	w.Header().Set("Content-Encoding", w.encoding)
	w.Header().Del("Content-Length")
	w.commit()
	if w.encoding == "br" {
		w.enc = brotli.NewWriter(w.ResponseWriter)
	} else {
		w.enc = gzip.NewWriter(w.ResponseWriter)
	}
	_, err := w.enc.Write(w.buf)
	w.buf = nil
	return err
}

func (w *deferredWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(w.status)
}

// close finishes the response: flushing the encoder when streaming, or
// writing the small buffered body as-is when the threshold was never
// reached.
func (w *deferredWriter) close() error {
	if w.enc != nil {
		return w.enc.Close()
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(w.buf)))
	w.commit()
	_, err := w.ResponseWriter.Write(w.buf)
	return err
}

// acceptedEncodings parses an Accept-Encoding header into a
// name-to-quality map, dropping entries the client disabled with q=0.
func acceptedEncodings(header string) map[string]float64 {
	accepted := make(map[string]float64)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		q := 1.0
		for _, param := range strings.Split(params, ";") {
			if k, v, ok := strings.Cut(strings.TrimSpace(param), "="); ok {
				if strings.TrimSpace(k) == "q" {
					if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
						q = parsed
					}
				}
			}
		}
		if q > 0 {
			accepted[name] = q
		}
	}
	return accepted
}

// supportedEncodings in preference order: brotli wins a quality tie.
var supportedEncodings = []string{"br", "gzip"}

func pickEncoding(header string) string {
	if header == "" {
		return ""
	}
	accepted := acceptedEncodings(header)
	best, bestQ := "", 0.0
	for _, name := range supportedEncodings {
		if q := accepted[name]; q > bestQ {
			best, bestQ = name, q
		}
	}
	return best
}

// Compress negotiates brotli or gzip from Accept-Encoding and
// compresses responses larger than minCompressSize; smaller ones pass
// through untouched with an exact Content-Length.
func Compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")

		encoding := pickEncoding(r.Header.Get("Accept-Encoding"))
		if encoding == "" {
			next.ServeHTTP(w, r)
			return
		}

		dw := &deferredWriter{ResponseWriter: w, encoding: encoding}
		next.ServeHTTP(dw, r)
		if err := dw.close(); err != nil {
			logger.FromContext(r.Context()).Error("Failed to flush compressed response", "error", err)
		}
	})
}
