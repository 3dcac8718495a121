package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/api"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/internal/logger"
	"github.com/matt-g-everett/ledmotion/metrics"
	"github.com/matt-g-everett/ledmotion/stream"
	"github.com/matt-g-everett/ledmotion/value"
)

var log = logger.New("ledmotion")

type app struct {
	Config     stream.Config
	Client     mqtt.Client
	Loop       *frameloop.Loop
	Metrics    *metrics.Metrics
	Device     *stream.Device
	Strip      *stream.Strip
	Streamer   *stream.Streamer
	Controller *stream.Controller
	connected  atomic.Bool
}

func newApp(config stream.Config) *app {
	a := new(app)
	a.Config = config
	a.Loop = frameloop.New(config.Engine.FPS)
	a.Metrics = metrics.New()
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Info("Connected to %s", a.Config.Mqtt.URL)
	a.connected.Store(true)
	a.Strip.SetConnected(true)
	if err := a.Device.Listen(); err != nil {
		log.Error("Listening for device status: %v", err)
	}
}

func (a *app) handleConnectionLost(client mqtt.Client, err error) {
	log.Warn("Connection lost: %v", err)
	a.connected.Store(false)
	a.Strip.SetConnected(false)
}

func (a *app) health() error {
	if !a.connected.Load() {
		return errors.New("not connected to the broker")
	}
	return nil
}

func (a *app) setup() {
	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID(a.Config.Mqtt.ClientID).
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(a.handleOnConnect).
		SetConnectionLostHandler(a.handleConnectionLost)
	a.Client = mqtt.NewClient(options)
	broker := stream.NewMQTT(a.Client, 0)

	cfg := a.Config
	engine := animation.NewEngine(a.Loop, cfg.EngineConfig(), a.Metrics)
	a.Device = stream.NewDevice(cfg.Device.Name, broker, cfg.Mqtt.Topics, a.Loop, cfg.Engine.LinearEasing, a.Metrics)
	a.Strip = stream.NewStrip(cfg.Device.Name, cfg.Device.Pixels, a.Loop, value.String("#000000"))
	a.Strip.SetConnected(false)
	a.Strip.SetStreaming(cfg.Device.Stream)
	a.Streamer = stream.NewStreamer(broker, cfg.Mqtt.Topics.Stream, a.Strip, a.Loop, a.Metrics)
	a.Controller = stream.NewController(engine, a.Strip, a.Device, cfg.Scenes, cfg.Transitions, cfg.SceneDuration())
}

func (a *app) run(ctx context.Context) error {
	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer a.Client.Disconnect(250)

	a.Streamer.Start()
	defer a.Streamer.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Loop.Run(ctx) })
	g.Go(func() error { return a.Controller.Run(ctx) })
	g.Go(func() error {
		return api.NewApi(a.Config.Metrics.Listen, a.Metrics.Registry(), a.health).Serve(ctx)
	})
	return g.Wait()
}

func main() {
	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Parse()

	// Read the config
	config, err := stream.LoadConfig(*configPath)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	logger.SetGlobalLevelFromString(config.Engine.LogLevel)
	mqtt.ERROR = stdlog.New(log.Writer(logger.LevelError), "", 0)
	mqtt.WARN = stdlog.New(log.Writer(logger.LevelWarn), "", 0)
	log.Debug("Config: %+v", config)

	a := newApp(config)
	a.setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("%v", err)
		os.Exit(1)
	}
}
