package paths

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	cache     map[string][]byte
	cacheLock sync.Mutex

	// HTTPClient is used for textures named by URL.
	HTTPClient = http.DefaultClient
)

func isURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// fetchHTTP downloads url once per process; later calls are served from
// memory.
func fetchHTTP(url string) ([]byte, error) {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	if cache == nil {
		cache = make(map[string][]byte)
	}
	if b, ok := cache[url]; ok {
		glog.V(3).Infof("paths/http.go: %q served from cache", url)
		return b, nil
	}

	glog.V(2).Infof("paths/http.go: getting %q", url)
	response, err := HTTPClient.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "paths.Open(%q): failed to get", url)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		e := os.ErrInvalid
		if response.StatusCode == http.StatusNotFound {
			e = os.ErrNotExist
		}
		return nil, errors.Wrapf(e, "paths.Open(%q): http response.StatusCode=%v, want 200", url, response.StatusCode)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, response.Body); err != nil {
		return nil, errors.Wrap(err, "copying response to buffer")
	}
	cache[url] = buf.Bytes()
	return buf.Bytes(), nil
}
