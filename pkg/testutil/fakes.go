// pkg/testutil/fakes.go
// DEPENDENCIES: pkg/errors
// PURPOSE: In-memory downloader and privilege check for command tests

package testutil

import (
	"sync"

	"github.com/arthur-debert/hostsub/pkg/errors"
)

// FakeDownloader serves canned bodies keyed by URL. Unknown URLs fail
// with ErrDownload; Probe answers true unless told otherwise.
type FakeDownloader struct {
	mu        sync.Mutex
	bodies    map[string]string
	failures  map[string]error
	probes    map[string]bool
	downloads []string
	probed    []string
}

// NewFakeDownloader returns an empty FakeDownloader.
func NewFakeDownloader() *FakeDownloader {
	return &FakeDownloader{
		bodies:   make(map[string]string),
		failures: make(map[string]error),
		probes:   make(map[string]bool),
	}
}

// Serve makes url answer with body.
func (f *FakeDownloader) Serve(url, body string) *FakeDownloader {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = body
	delete(f.failures, url)
	return f
}

// Fail makes url answer with err.
func (f *FakeDownloader) Fail(url string, err error) *FakeDownloader {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[url] = err
	return f
}

// SetReachable sets what Probe answers for url.
func (f *FakeDownloader) SetReachable(url string, ok bool) *FakeDownloader {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes[url] = ok
	return f
}

func (f *FakeDownloader) Download(url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, url)
	if err, ok := f.failures[url]; ok {
		return "", err
	}
	body, ok := f.bodies[url]
	if !ok {
		return "", errors.Newf(errors.ErrDownload, "no such url: %s", url).WithDetail("url", url)
	}
	return body, nil
}

func (f *FakeDownloader) Probe(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probed = append(f.probed, url)
	if ok, set := f.probes[url]; set {
		return ok
	}
	return true
}

// Downloads returns the URLs passed to Download, in call order.
func (f *FakeDownloader) Downloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.downloads...)
}

// Probed returns the URLs passed to Probe, in call order.
func (f *FakeDownloader) Probed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.probed...)
}

// FakePrivilege is a privilege check with a fixed answer.
type FakePrivilege struct {
	Err   error
	Calls int
}

// Denied returns a FakePrivilege that always refuses.
func Denied() *FakePrivilege {
	return &FakePrivilege{Err: errors.New(errors.ErrPermission, "modifying the hosts file requires root privileges, run with sudo")}
}

func (f *FakePrivilege) EnsureElevated() error {
	f.Calls++
	return f.Err
}
