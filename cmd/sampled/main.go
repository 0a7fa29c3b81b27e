package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/sampleslot/pkg/app"
	"github.com/robotalks/sampleslot/pkg/config"
	fx "github.com/robotalks/sampleslot/pkg/framework"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	a := app.MustNew(config.MustLoad())
	err := fx.NewRunner().HandleSignals().Go(fx.NamedRun("app", a)).Wait()
	if err != nil {
		glog.Errorf("exit: %v", err)
	}
	glog.Infof("session %s stopped: %+v", a.Session, a.Stats().Handoff)
}
