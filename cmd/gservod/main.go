package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/gservo/pkg/config"
	dxl "github.com/robotalks/gservo/pkg/dynamixel"
	"github.com/robotalks/gservo/pkg/eeprom"
	"github.com/robotalks/gservo/pkg/firmware"
	fx "github.com/robotalks/gservo/pkg/framework"
	"github.com/robotalks/gservo/pkg/link"
	"github.com/robotalks/gservo/pkg/link/console"
	"github.com/robotalks/gservo/pkg/link/mqtt"
	"github.com/robotalks/gservo/pkg/link/stream"
	"github.com/robotalks/gservo/pkg/link/websocket"
	"github.com/robotalks/gservo/pkg/serialport"
	"github.com/robotalks/gservo/pkg/servo"
	"github.com/robotalks/gservo/pkg/settings"
	"github.com/robotalks/gservo/pkg/sim"
)

// MemorySize is the size of the in-memory settings store.
const MemorySize = 1024

func init() {
	config.SetupFlags()
}

type daemon struct {
	conf    *config.Config
	loop    *fx.Loop
	hub     *link.Hub
	closers []io.Closer
}

func (d *daemon) openBus() dxl.Bus {
	units := servo.Active
	ids := d.conf.Bus.ServoIDs()
	if d.conf.Bus.Simulate {
		bank := sim.NewBank(ids[:]...)
		bank.SpeedScale = float64(units.Speed / 60 * units.DegInv)
		d.loop.Add(bank)
		glog.Infof("bus: simulating %s servos %v", units.Name, ids)
		return bank
	}
	port, err := serialport.Open(d.conf.Bus.Port, d.conf.Bus.Baud, d.conf.Bus.Timeout)
	if err != nil {
		glog.Fatalf("bus: %v", err)
	}
	d.closers = append(d.closers, port)
	bus := dxl.NewPortBus(port)
	bus.Timeout = d.conf.Bus.Timeout
	glog.Infof("bus: %s at %d baud", d.conf.Bus.Port, d.conf.Bus.Baud)
	return bus
}

func (d *daemon) openStore() settings.Store {
	if d.conf.EEPROM == "" {
		return eeprom.NewMemory(MemorySize)
	}
	store, err := eeprom.OpenStorm(d.conf.EEPROM)
	if err != nil {
		glog.Fatalf("eeprom: %v", err)
	}
	d.closers = append(d.closers, store)
	return store
}

func (d *daemon) addLinks() {
	lc := &d.conf.Link
	switch {
	case lc.Console:
		d.loop.Add(console.New(d.hub))
	case lc.Stdio:
		d.loop.Add(link.NewPipe("stdio", stream.NewWith(os.Stdin, os.Stdout), d.hub))
	}
	if lc.Serial != "" {
		port, err := serialport.Open(lc.Serial, lc.SerialBaud, 0)
		if err != nil {
			glog.Fatalf("link: %v", err)
		}
		d.loop.Add(link.NewPipe("serial", stream.New(port), d.hub))
	}
	if lc.WebSocket != "" {
		d.loop.Add(&websocket.Server{Addr: lc.WebSocket, Hub: d.hub})
	}
	if lc.MQTT != "" {
		l, err := mqtt.New(lc.MQTT, d.conf.Name, d.hub)
		if err != nil {
			glog.Fatalf("link: %v", err)
		}
		d.loop.Add(l)
	}
}

func (d *daemon) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			glog.Warningf("close: %v", err)
		}
	}
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := config.NewConfig().MustLoad()
	loop := fx.NewLoop()
	loop.Interval = conf.Interval
	d := &daemon{conf: conf, loop: loop, hub: &link.Hub{}}
	defer d.close()

	motors := servo.NewMotors(d.openBus(), servo.Active, conf.Bus.ServoIDs())
	loop.Add(firmware.New(motors, d.openStore(), d.hub))
	d.addLinks()

	glog.Infof("%s: started", conf.Name)
	if err := fx.NewRunner().HandleSignals().Go(loop).Wait(); err != nil {
		glog.Errorf("%s: %v", conf.Name, err)
	}
}
