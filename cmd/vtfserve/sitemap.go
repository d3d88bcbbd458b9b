package main

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang/glog"

	"github.com/panzi/pixbufloader-vtf/paths"
)

type SitemapURLImage struct {
	Loc string `xml:"image:loc"`
}

type SitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`

	Image []SitemapURLImage `xml:"image:image,omitempty"`
}

type SitemapURLSet struct {
	XMLName    xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	XMLNSImage string       `xml:"xmlns:image,attr"`
	URL        []SitemapURL `xml:"url,omitempty"` // up to 50k entries
}

func (e *SitemapURLSet) Write(w http.ResponseWriter, r *http.Request) {
	e.XMLNSImage = "http://www.google.com/schemas/sitemap-image/1.1"

	w.Header().Set("Content-Type", "application/xml")

	fmt.Fprintf(w, "%s", xml.Header)
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(e); err != nil {
		glog.Errorf("encoding sitemap: %v", err)
	}
}

// sitemapHandler lists every texture in the search path, pointing at its
// info page with the PNG as the image.
func sitemapHandler(baseURL string) http.HandlerFunc {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := paths.List()
		if err != nil {
			http.Error(w, "<error>could not list textures</error>", http.StatusInternalServerError)
			return
		}
		base := baseURL
		if base == "" {
			base = "http://" + r.Host
		}
		set := &SitemapURLSet{}
		for _, name := range names {
			u := SitemapURL{
				Loc:   base + "/texture/" + escapeName(name) + ".json",
				Image: []SitemapURLImage{{Loc: base + "/texture/" + escapeName(name) + ".png"}},
			}
			if st, err := paths.Stat(name); err == nil {
				u.LastMod = st.ModTime().UTC().Format("2006-01-02")
			}
			set.URL = append(set.URL, u)
		}
		set.Write(w, r)
	}
}

func escapeName(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
