// Package app assembles a running sysdeck: the gateway for the configured
// transport and everything that reads through it.
//
// An App is created once at startup and passed to whatever needs it; there
// is no package-level state.
package app

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/backend"
	"github.com/rileyhilliard/sysdeck/internal/cache"
	"github.com/rileyhilliard/sysdeck/internal/classify"
	"github.com/rileyhilliard/sysdeck/internal/config"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/rileyhilliard/sysdeck/internal/normalize"
	"github.com/rileyhilliard/sysdeck/internal/settings"
	"github.com/rileyhilliard/sysdeck/internal/shortcuts"
)

// SSHTimeout bounds connecting to the backend host.
const SSHTimeout = 10 * time.Second

// App owns the long-lived components.
type App struct {
	Config     *config.Config
	Log        logger.Logger
	Gateway    gateway.Gateway
	Normalizer *normalize.Normalizer
	Engine     *classify.Engine
	Cache      *cache.Manager
	Catalog    *actions.Catalog
	Notices    *actions.Queue
	Dispatcher *actions.Dispatcher
	Shortcuts  *shortcuts.Registry
	Settings   *settings.Store

	closers []io.Closer
}

type options struct {
	gw           gateway.Gateway
	log          logger.Logger
	settingsPath string
	confirmer    actions.Confirmer
	cacheOpts    []cache.Option
	now          func() time.Time
}

// Option configures New.
type Option func(*options)

// WithGateway uses gw instead of building one from the config.
func WithGateway(gw gateway.Gateway) Option {
	return func(o *options) { o.gw = gw }
}

// WithLogger sets the logger every component shares.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSettingsPath overrides both the config and the default state file.
func WithSettingsPath(path string) Option {
	return func(o *options) { o.settingsPath = path }
}

// WithConfirmer sets how dangerous actions are confirmed.
func WithConfirmer(c actions.Confirmer) Option {
	return func(o *options) { o.confirmer = c }
}

// WithCacheOptions passes extra options to the cache manager.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(o *options) { o.cacheOpts = append(o.cacheOpts, opts...) }
}

// WithClock sets the clock notifications are stamped with.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds an App from cfg. A nil cfg means config.DefaultConfig().
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.OrDefault(o.log)

	a := &App{Config: cfg, Log: log}

	rules, err := classify.LoadRules(cfg.Classify.Rules)
	if err != nil {
		return nil, err
	}
	a.Normalizer = normalize.New(log)
	a.Engine = classify.NewEngine(rules, cfg.Classify.Locale, log)

	path := o.settingsPath
	if path == "" {
		path = cfg.Settings.Path
	}
	if path == "" {
		if path, err = settings.DefaultPath(); err != nil {
			return nil, err
		}
	}
	if a.Settings, err = settings.Open(path, log); err != nil {
		return nil, err
	}

	a.Gateway = o.gw
	if a.Gateway == nil {
		gw, closer, err := NewGateway(cfg.Gateway, log)
		if err != nil {
			return nil, err
		}
		a.Gateway = gw
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	cacheOpts := append([]cache.Option{
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithRefreshInterval(cfg.Cache.RefreshInterval),
		cache.WithLogger(log),
	}, o.cacheOpts...)
	a.Cache = cache.NewManager(a.Gateway, a.Normalizer, a.Engine, cacheOpts...)

	a.Catalog = actions.DefaultCatalog()
	a.Notices = actions.NewQueue(o.now)
	dispatchOpts := []actions.Option{
		actions.WithInvalidator(a.Cache),
		actions.WithConfirmSetting(a.Settings.ConfirmDangerous),
		actions.WithLogger(log),
	}
	if o.confirmer != nil {
		dispatchOpts = append(dispatchOpts, actions.WithConfirmer(o.confirmer))
	}
	a.Dispatcher = actions.NewDispatcher(a.Gateway, a.Catalog, a.Notices, dispatchOpts...)

	a.Shortcuts = shortcuts.NewRegistry(shortcuts.Defaults()...)

	log.Debug("app ready: transport=%s codec=%s settings=%s",
		cfg.Gateway.Transport, cfg.Gateway.Codec, a.Settings.Path())
	return a, nil
}

// NewGateway builds the gateway for a transport. The closer, when non-nil,
// releases the transport's connection.
func NewGateway(cfg config.GatewayConfig, log logger.Logger) (gateway.Gateway, io.Closer, error) {
	switch cfg.Transport {
	case "", config.TransportLocal:
		return backend.NewRegistry(backend.New(backend.WithLogger(log)), log), nil, nil

	case config.TransportProcess, config.TransportSSH:
		codec, err := gateway.CodecByName(cfg.Codec)
		if err != nil {
			return nil, nil, err
		}
		argv := strings.Fields(cfg.Binary)
		var exec gateway.Executor = gateway.LocalExecutor{}
		if cfg.Transport == config.TransportSSH {
			exec = gateway.NewSSHExecutor(cfg.Host, SSHTimeout)
		}
		if cfg.Sudo {
			argv = append([]string{"sudo", "-n"}, argv...)
		}
		p := gateway.NewProcess(exec, argv, codec, log)
		return p, p, nil
	}
	return nil, nil, errors.New(errors.ErrConfig,
		"Unknown gateway transport: "+cfg.Transport,
		"Use local, process, or ssh.")
}

// Start launches background work: the snapshot refresher.
func (a *App) Start(ctx context.Context) {
	a.Cache.Start(ctx)
}

// Close stops background work and closes transports.
func (a *App) Close() error {
	a.Cache.Close()
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
