// Command vtfserve serves Valve textures over HTTP as PNG, GIF and JSON,
// and decodes uploaded textures.
package main

import (
	"flag"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "golang.org/x/net/trace"

	"github.com/panzi/pixbufloader-vtf/loader"
	"github.com/panzi/pixbufloader-vtf/paths"
	"github.com/panzi/pixbufloader-vtf/web"
)

var (
	configPath     = flag.String("config", "", "YAML config file")
	listenAddress  = flag.String("listen_address", "", "http listen address for vtfserve; overrides the config")
	debugWebServer = flag.String("debug_web_server_listen_address", "", "where the debug server (/debug/requests) will listen; overrides the config")
	accessLog      = flag.Bool("access_log", true, "whether to write a combined access log to stderr")
	banner         = flag.Bool("banner", true, "whether to print a banner on startup")
)

// newRouter builds the public handler for cfg.
func newRouter(cfg *Config) http.Handler {
	r := mux.NewRouter()
	web.NewHandler(cfg.HandlerOptions()).RegisterRoutes(r)
	r.HandleFunc("/sitemap.xml", sitemapHandler(cfg.BaseURL)).Methods(http.MethodGet)

	var h http.Handler = handlers.CompressHandler(r)
	if *accessLog {
		h = handlers.CombinedLoggingHandler(os.Stderr, h)
	}
	return h
}

func main() {
	paths.SetupSearchPathFlag()
	loader.SetupLimitFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		glog.Exitf("%v", err)
	}
	if len(cfg.TexturePath) > 0 && len(paths.SearchPath()) == 1 {
		paths.SetSearchPath(cfg.TexturePath)
	}
	loader.SetLimits(cfg.LoaderLimits())
	loader.ApplyLimitFlags()
	if *listenAddress != "" {
		cfg.ListenAddress = *listenAddress
	}
	if *debugWebServer != "" {
		cfg.DebugListenAddress = *debugWebServer
	}

	if *banner {
		figure.Write(os.Stderr, figure.NewFigure("vtfserve", "", true))
	}
	glog.Infof("texture search path: %v", paths.SearchPath())

	if cfg.DebugListenAddress != "" {
		// x/net/trace registers /debug/requests and /debug/events on the
		// default mux.
		go func() {
			glog.Errorf("debug server: %v", http.ListenAndServe(cfg.DebugListenAddress, nil))
		}()
	}

	glog.Infof("vtfserve now listening on %s", cfg.ListenAddress)
	glog.Fatal(http.ListenAndServe(cfg.ListenAddress, newRouter(cfg)))
}
