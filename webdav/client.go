package webdav

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/php-denken/schubser/davpath"
)

const (
	methodPropfind = "PROPFIND"
	methodMkcol    = "MKCOL"
)

type defaultClient struct {
	c  *config
	hc *http.Client
}

func New(opts ...Option) (IClient, error) {
	c := &config{
		Timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.BaseURL) == 0 {
		return nil, fmt.Errorf("no base url found")
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		return nil, fmt.Errorf("base url should end with '/', url:%s", c.BaseURL)
	}
	tr := &http.Transport{
		MaxIdleConns:        5,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
	if c.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &defaultClient{
		c: c,
		hc: &http.Client{
			Timeout:   c.Timeout,
			Transport: tr,
			// a redirected resource is not the resource we asked for, the
			// probes need to see the raw status
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

func (d *defaultClient) buildURL(rel string) string {
	return d.c.BaseURL + davpath.EncodePath(davpath.Normalize(rel))
}

func (d *defaultClient) applyAuth(req *http.Request) {
	if len(d.c.Username) == 0 {
		return
	}
	req.SetBasicAuth(d.c.Username, d.c.Password)
}

func (d *defaultClient) do(ctx context.Context, method string, rel string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.buildURL(rel), body)
	if err != nil {
		return nil, fmt.Errorf("build request failed, method:%s, err:%w", method, err)
	}
	d.applyAuth(req)
	if method == methodPropfind {
		req.Header.Set("Depth", "0")
	}
	rsp, err := d.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call remote failed, method:%s, path:%s, err:%w", method, rel, err)
	}
	return rsp, nil
}

func discard(rsp *http.Response) {
	_, _ = io.Copy(io.Discard, rsp.Body)
	_ = rsp.Body.Close()
}

func (d *defaultClient) StatFile(ctx context.Context, rel string) (bool, error) {
	rsp, err := d.do(ctx, http.MethodHead, rel, nil)
	if err != nil {
		return false, err
	}
	defer discard(rsp)
	return rsp.StatusCode == http.StatusOK, nil
}

func (d *defaultClient) StatCollection(ctx context.Context, rel string) (bool, error) {
	rsp, err := d.do(ctx, methodPropfind, rel, nil)
	if err != nil {
		return false, err
	}
	defer discard(rsp)
	// 207 multi-status is the usual answer, plain 2xx also counts
	return rsp.StatusCode >= 200 && rsp.StatusCode < 300, nil
}

func (d *defaultClient) MakeCollection(ctx context.Context, rel string) error {
	rsp, err := d.do(ctx, methodMkcol, rel, nil)
	if err != nil {
		return err
	}
	defer discard(rsp)
	switch {
	case rsp.StatusCode >= 200 && rsp.StatusCode < 300:
		return nil
	case rsp.StatusCode == http.StatusMethodNotAllowed, rsp.StatusCode == http.StatusMovedPermanently:
		// rfc4918: MKCOL on an existing resource answers 405; some servers
		// redirect the collection url instead
		return ErrCollectionExists
	default:
		return &StatusError{Method: methodMkcol, Path: rel, Code: rsp.StatusCode}
	}
}

func (d *defaultClient) PutFile(ctx context.Context, rel string, r io.Reader, size int64, contentType string) error {
	body := r
	if size == 0 {
		// a plain reader with ContentLength 0 would be sent chunked without
		// Content-Length, which some servers reject for empty files
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, d.buildURL(rel), body)
	if err != nil {
		return fmt.Errorf("build request failed, method:PUT, err:%w", err)
	}
	d.applyAuth(req)
	req.ContentLength = size
	if len(contentType) != 0 {
		req.Header.Set("Content-Type", contentType)
	}
	rsp, err := d.hc.Do(req)
	if err != nil {
		return fmt.Errorf("call remote failed, method:PUT, path:%s, err:%w", rel, err)
	}
	defer discard(rsp)
	switch rsp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return &StatusError{Method: http.MethodPut, Path: rel, Code: rsp.StatusCode}
	}
}
