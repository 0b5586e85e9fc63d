package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/kodek/obdlive/common"
	"github.com/kodek/obdlive/frontend"
	"github.com/kodek/obdlive/telemetry"
	"github.com/kodek/obdlive/telemetry/clock"
)

// frontend_server serves gauge images and live KML from an obdgpslogger database.
func main() {
	_ = flag.Set("logtostderr", "true")
	flag.Parse()

	glog.Info("Loading config")
	conf, err := common.LoadConfig()
	if err != nil {
		glog.Fatal(err)
	}

	database, err := telemetry.OpenWithRetry(conf.Database.Path, conf.Database.OpenTimeout)
	if err != nil {
		glog.Fatal(err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			glog.Errorf("Cannot close database: %s", err)
		}
	}()

	mux := common.NewKodekMux(conf.Server.Name)
	frontend.NewServer(database, clock.NewReal(), conf).Register(mux)

	listenSpec := fmt.Sprintf(":%d", conf.Server.Port)
	glog.Infof("Starting %s at %s, reading %s", conf.Server.Name, listenSpec, conf.Database.Path)
	glog.Fatal(http.ListenAndServe(listenSpec, mux))
}
