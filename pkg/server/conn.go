package server

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// response buffers a handler's output for a single-request connection and
// writes it as an HTTP/1.1 response followed by connection close.
//
// It supports Hijack so WebSocket upgrades can take the connection over;
// a hijacked response writes nothing.
type response struct {
	conn net.Conn
	br   *bufio.Reader
	req  *http.Request

	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
	hijacked    bool
}

func newResponse(conn net.Conn, br *bufio.Reader, req *http.Request) *response {
	return &response{
		conn:   conn,
		br:     br,
		req:    req,
		header: make(http.Header),
	}
}

func (r *response) Header() http.Header {
	return r.header
}

func (r *response) WriteHeader(code int) {
	if r.wroteHeader || r.hijacked {
		return
	}
	r.status = code
	r.wroteHeader = true
}

func (r *response) Write(p []byte) (int, error) {
	if r.hijacked {
		return 0, http.ErrHijacked
	}
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if !bodyAllowed(r.status) {
		return 0, http.ErrBodyNotAllowed
	}
	return r.body.Write(p)
}

// Flush is a no-op; the response is written once the handler returns.
func (r *response) Flush() {}

// Hijack hands the connection to the caller and clears its deadlines.
func (r *response) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if r.hijacked {
		return nil, nil, http.ErrHijacked
	}
	r.hijacked = true
	_ = r.conn.SetDeadline(time.Time{})
	return r.conn, bufio.NewReadWriter(r.br, bufio.NewWriter(r.conn)), nil
}

// finish writes the buffered response. HEAD requests get the headers only.
func (r *response) finish() error {
	if r.hijacked {
		return nil
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}

	h := r.header.Clone()
	if bodyAllowed(status) && h.Get("Content-Length") == "" && r.req.Method != http.MethodHead {
		h.Set("Content-Length", strconv.Itoa(r.body.Len()))
	}
	if h.Get("Date") == "" {
		h.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	}
	h.Set("Connection", "close")

	bw := bufio.NewWriter(r.conn)
	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status)); err != nil {
		return err
	}
	if err := h.Write(bw); err != nil {
		return err
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	if r.req.Method != http.MethodHead && bodyAllowed(status) {
		if _, err := bw.Write(r.body.Bytes()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
