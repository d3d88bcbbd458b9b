package web

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/net/trace"

	"github.com/panzi/pixbufloader-vtf/export"
	"github.com/panzi/pixbufloader-vtf/loader"
	"github.com/panzi/pixbufloader-vtf/paths"
)

// generation is part of every ETag; bump it if the way responses are
// generated changes.
const generation = 1

// Options configure a Handler. Zero values pick the defaults.
type Options struct {
	// MaxAge is sent in Cache-Control for texture responses.
	MaxAge time.Duration
	// ChunkSize is how many bytes of an upload are appended to the decoding
	// session at a time.
	ChunkSize int
	// MaxUploadBytes bounds the body of POST /decode.
	MaxUploadBytes int64
	Quantizer      export.Quantizer
}

type Handler struct {
	maxAge         int
	chunkSize      int
	maxUploadBytes int64
	quantizer      export.Quantizer

	newTrace func(family, title string) trace.Trace
}

// NewHandler constructs a web handler serving textures found through the
// paths package.
func NewHandler(o Options) *Handler {
	h := &Handler{
		maxAge:         int(o.MaxAge / time.Second),
		chunkSize:      o.ChunkSize,
		maxUploadBytes: o.MaxUploadBytes,
		quantizer:      o.Quantizer,
		newTrace:       trace.New,
	}
	if h.maxAge <= 0 {
		h.maxAge = 36000 // 10h
	}
	if h.chunkSize <= 0 {
		h.chunkSize = 4096
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = 64 << 20
	}
	return h
}

// RegisterRoutes adds the texture routes to r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/texture/{name:.+}.png", h.pngHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/texture/{name:.+}.gif", h.gifHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/texture/{name:.+}.json", h.infoHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/decode", h.decodeHandler).Methods(http.MethodPost)
}

// statusFor maps a loader or paths error to an HTTP status.
func statusFor(err error) int {
	var le *loader.Error
	if errors.As(err, &le) {
		switch le.Kind {
		case loader.CorruptContainer, loader.ConversionFailure:
			return http.StatusUnprocessableEntity
		case loader.InsufficientMemory:
			return http.StatusRequestEntityTooLarge
		}
	}
	if os.IsNotExist(errors.Cause(err)) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, tr trace.Trace, err error) {
	status := statusFor(err)
	tr.LazyPrintf("%d: %v", status, err)
	tr.SetError()
	if status == http.StatusInternalServerError {
		glog.Errorf("web: %v", err)
	}
	http.Error(w, err.Error(), status)
}

// encoded reports a failure to write the body of a response whose headers
// are already sent.
func (h *Handler) encoded(tr trace.Trace, what string, err error) {
	if err == nil {
		return
	}
	glog.Warningf("web: writing %s: %v", what, err)
	tr.LazyPrintf("writing %s: %v", what, err)
	tr.SetError()
}

// etag returns a weak ETag for the named texture as rendered with variant,
// or "" if the texture is not a local file.
func etag(name, variant, mime string) string {
	st, err := paths.Stat(name)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`W/"texture:%d:%s:%d:%x:%s:%s"`, generation, name, st.Size(), st.ModTime().UnixNano(), variant, mime)
}

// notModified writes caching headers and reports whether the client's copy
// is current, in which case a 304 has been written.
func (h *Handler) notModified(w http.ResponseWriter, r *http.Request, name, tag string) bool {
	if tag == "" {
		return false
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public; max-age=%d", h.maxAge))
	w.Header().Set("ETag", tag)
	if st, err := paths.Stat(name); err == nil {
		w.Header().Set("Last-Modified", st.ModTime().Format(http.TimeFormat))
	}
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (h *Handler) pngHandler(w http.ResponseWriter, r *http.Request) {
	tr := h.newTrace("web.png", r.URL.Path)
	defer tr.Finish()

	name := mux.Vars(r)["name"]
	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		var err error
		if size, err = strconv.Atoi(s); err != nil || size <= 0 {
			http.Error(w, "size not a positive number", http.StatusBadRequest)
			return
		}
	}

	mime := "image/png"
	if h.notModified(w, r, name, etag(name, strconv.Itoa(size), mime)) {
		tr.LazyPrintf("not modified")
		return
	}

	b, err := paths.ReadAll(name)
	if err != nil {
		h.fail(w, tr, err)
		return
	}
	still, err := loader.Decode(b)
	if err != nil {
		h.fail(w, tr, err)
		return
	}
	var img image.Image = still.Image
	if size > 0 {
		img = resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3)
	}
	tr.LazyPrintf("decoded %s: %v", name, img.Bounds())

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	h.encoded(tr, name+".png", export.EncodePNG(w, img))
}

func (h *Handler) gifHandler(w http.ResponseWriter, r *http.Request) {
	tr := h.newTrace("web.gif", r.URL.Path)
	defer tr.Finish()

	name := mux.Vars(r)["name"]
	mime := "image/gif"
	if h.notModified(w, r, name, etag(name, "", mime)) {
		tr.LazyPrintf("not modified")
		return
	}

	b, err := paths.ReadAll(name)
	if err != nil {
		h.fail(w, tr, err)
		return
	}
	anim, err := loader.DecodeAnimated(b)
	if err != nil {
		h.fail(w, tr, err)
		return
	}
	tr.LazyPrintf("decoded %s: %d frames", name, len(anim.Frames))

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	h.encoded(tr, name+".gif", export.EncodeGIF(w, anim, h.quantizer))
}

// Info is the body of the .json route.
type Info struct {
	Name       string            `json:"name"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Frames     int               `json:"frames"`
	Attributes map[string]string `json:"attributes"`
	Thumbnail  string            `json:"thumbnail,omitempty"`
}

func (h *Handler) infoHandler(w http.ResponseWriter, r *http.Request) {
	tr := h.newTrace("web.info", r.URL.Path)
	defer tr.Finish()

	name := mux.Vars(r)["name"]
	mime := "application/json"
	if h.notModified(w, r, name, etag(name, "", mime)) {
		tr.LazyPrintf("not modified")
		return
	}

	b, err := paths.ReadAll(name)
	if err != nil {
		h.fail(w, tr, err)
		return
	}
	t, attrs, err := loader.Inspect(b)
	if err != nil {
		h.fail(w, tr, err)
		return
	}
	info := Info{
		Name:       name,
		Width:      t.Width(),
		Height:     t.Height(),
		Frames:     t.Frames(),
		Attributes: attrs,
	}
	if thumb, err := t.Thumbnail(); err != nil {
		tr.LazyPrintf("thumbnail: %v", err)
	} else if thumb != nil {
		if info.Thumbnail, err = export.DataURL(thumb); err != nil {
			glog.Warningf("web: thumbnail of %s: %v", name, err)
		}
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	h.encoded(tr, name+".json", json.NewEncoder(w).Encode(&info))
}

// decodeHandler streams the request body into a loader session chunk by
// chunk and responds with the PNG or GIF it produced.
func (h *Handler) decodeHandler(w http.ResponseWriter, r *http.Request) {
	tr := h.newTrace("web.decode", r.URL.Path)
	defer tr.Finish()

	var (
		still *loader.Still
		anim  *loader.Animation
	)
	s := loader.Open(loader.Callbacks{
		Size: func(width, height int) {
			tr.LazyPrintf("size %dx%d", width, height)
		},
		Prepared: func(st *loader.Still, an *loader.Animation) {
			still, anim = st, an
		},
		StillOnly: r.URL.Query().Get("still") != "",
	})

	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	buf := make([]byte, h.chunkSize)
	total := 0
	for {
		n, err := body.Read(buf)
		if n > 0 {
			total += n
			if err := s.Append(buf[:n]); err != nil {
				h.fail(w, tr, err)
				return
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			s.Abort()
			tr.LazyPrintf("reading body after %d bytes: %v", total, err)
			tr.SetError()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	tr.LazyPrintf("received %d bytes", total)

	if err := s.Finalize(); err != nil {
		h.fail(w, tr, err)
		return
	}

	mime := "image/png"
	if anim != nil {
		mime = "image/gif"
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, err := export.Encode(w, still, anim, h.quantizer)
	h.encoded(tr, mime, err)
}
