package app

import (
	"context"
	"net/http"
	"os"
	"sort"

	"github.com/charmbracelet/log"

	"phpvm/internal/alias"
	"phpvm/internal/audit"
	"phpvm/internal/autoswitch"
	"phpvm/internal/config"
	"phpvm/internal/doctor"
	"phpvm/internal/engine"
	"phpvm/internal/installer"
	"phpvm/internal/ledger"
	"phpvm/internal/phpver"
	"phpvm/internal/remote"
	"phpvm/internal/shellhook"
	storepkg "phpvm/internal/store"
)

type Options struct {
	ConfigPath string
	HTTPClient *http.Client
	Getenv     func(string) string
	Backend    installer.Backend
	Verbose    bool
}

type Service struct {
	ConfigPath string
	Config     config.Config
	Root       string

	Engine    *engine.Service
	Installer *installer.Service
	Monitor   *autoswitch.Monitor
	Remote    *remote.Client
	Doctor    *doctor.Service
	Audit     *audit.Logger
	Log       *log.Logger
}

func New(opts Options) (*Service, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Ensure(configPath)
	if err != nil {
		return nil, err
	}
	root, err := config.ResolveStorageRoot(cfg)
	if err != nil {
		return nil, err
	}
	if err := storepkg.EnsureLayout(root); err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "phpvm",
	})
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	auditLog := audit.New(storepkg.AuditPath(root))
	engineSvc := &engine.Service{Root: root, Audit: auditLog, Getenv: opts.Getenv}
	backend := opts.Backend
	if backend == nil && cfg.Installer.Command != "" {
		backend = installer.CommandBackend{Template: cfg.Installer.Command}
	}
	installerSvc := &installer.Service{Root: root, Backend: backend, Audit: auditLog}
	monitor := &autoswitch.Monitor{Root: root, Engine: engineSvc, Audit: auditLog, Log: logger}
	remoteClient := remote.NewClient(opts.HTTPClient, cfg.Remote.ReleasesURL)
	doctorSvc := &doctor.Service{ConfigPath: configPath, Root: root}

	return &Service{
		ConfigPath: configPath,
		Config:     cfg,
		Root:       root,
		Engine:     engineSvc,
		Installer:  installerSvc,
		Monitor:    monitor,
		Remote:     remoteClient,
		Doctor:     doctorSvc,
		Audit:      auditLog,
		Log:        logger,
	}, nil
}

// Install normalizes the requested version and delegates to the installer.
func (s *Service) Install(ctx context.Context, requested string) (installer.Result, error) {
	version := phpver.Normalize(requested)
	s.Log.Debug("installing", "version", version)
	return s.Installer.Install(ctx, version)
}

// Uninstall removes a normalized version from the store. Confirmation is
// the command layer's concern.
func (s *Service) Uninstall(requested string) error {
	return s.Installer.Uninstall(phpver.Normalize(requested))
}

// Use activates a version, alias, or (with an empty argument) the project
// marker of dir.
func (s *Service) Use(dir, requested string) (engine.Context, error) {
	return s.Engine.Activate(dir, requested)
}

// List returns installed versions sorted newest-first plus the ledger
// value, for marking the active entry.
func (s *Service) List() ([]storepkg.Record, string, error) {
	records, err := storepkg.List(s.Root)
	if err != nil {
		return nil, "", err
	}
	sort.Slice(records, func(i, j int) bool {
		return phpver.Compare(records[i].Version, records[j].Version) > 0
	})
	active, err := ledger.Get(s.Root)
	if err != nil {
		return nil, "", err
	}
	return records, active, nil
}

func (s *Service) ListRemote(ctx context.Context) ([]string, error) {
	return s.Remote.Versions(ctx)
}

func (s *Service) Current() (engine.Status, error) {
	return s.Engine.Current()
}

func (s *Service) Which(requested string) (string, error) {
	return s.Engine.Which(requested)
}

func (s *Service) Exec(ctx context.Context, requested string, args []string) (int, error) {
	return s.Engine.Exec(ctx, requested, args)
}

func (s *Service) Env() (engine.Context, bool, error) {
	return s.Engine.Env()
}

func (s *Service) AutoSwitch(dir string) (engine.Context, bool) {
	return s.Monitor.OnDirectoryChange(dir)
}

func (s *Service) AliasSet(name, requestedTarget string) error {
	return alias.Set(s.Root, name, phpver.Normalize(requestedTarget))
}

func (s *Service) AliasGet(name string) (string, error) {
	return alias.Get(s.Root, name)
}

func (s *Service) AliasRemove(name string) error {
	return alias.Remove(s.Root, name)
}

func (s *Service) AliasList() ([]alias.Record, error) {
	return alias.List(s.Root)
}

func (s *Service) DoctorRun() doctor.Report {
	return s.Doctor.Run()
}

// InitScript renders the shell hook, detecting the shell from the
// environment when name is empty.
func (s *Service) InitScript(name string) (string, error) {
	var (
		shell shellhook.Shell
		err   error
	)
	if name == "" {
		getenv := s.Engine.Getenv
		if getenv == nil {
			getenv = os.Getenv
		}
		shell = shellhook.Detect(getenv)
	} else {
		shell, err = shellhook.Parse(name)
		if err != nil {
			return "", err
		}
	}
	return shellhook.Script(shell, "phpvm")
}
