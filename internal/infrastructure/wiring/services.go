package wiring

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atelierworks/sheetwright/internal/infrastructure/config"
	"github.com/atelierworks/sheetwright/internal/infrastructure/imaging"
	synthinfra "github.com/atelierworks/sheetwright/internal/infrastructure/synth"
	"github.com/atelierworks/sheetwright/pkg/application"
	"github.com/atelierworks/sheetwright/pkg/domain/drift"
	domainsynth "github.com/atelierworks/sheetwright/pkg/domain/synth"
	"github.com/atelierworks/sheetwright/pkg/storage"
)

// AppServices exposes the application layer wired together for a project
// root: one shared provider adapter (the vendor rate limit is global), one
// artifact store and the pipeline services on top.
type AppServices struct {
	Config    *config.Config
	Repo      *storage.BaselineRepository
	Provider  domainsynth.Provider
	Validator *drift.Validator
	Generate  *application.GenerateService
	Modify    *application.ModifyService
	Explain   *application.ExplainService

	store interface{ Close() error }
}

// BuildAppServices constructs the service graph for a project root.
func BuildAppServices(root string) (*AppServices, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	kv, closer, err := buildStore(root, cfg)
	if err != nil {
		return nil, err
	}
	repo := storage.NewBaselineRepository(kv)

	p, err := buildProvider(root, cfg)
	if err != nil {
		if closer != nil {
			closer.Close() //nolint:errcheck // construction failed already
		}
		return nil, err
	}

	validator := drift.NewValidator(thresholdsFromConfig(cfg))
	images := imaging.NewFileReader()

	return &AppServices{
		Config:    cfg,
		Repo:      repo,
		Provider:  p,
		Validator: validator,
		Generate:  application.NewGenerateService(p, repo),
		Modify:    application.NewModifyService(p, repo, images, validator),
		Explain:   application.NewExplainService(p),
		store:     closer,
	}, nil
}

// Close releases the store backend.
func (s *AppServices) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func buildStore(root string, cfg *config.Config) (storage.KVStore, interface{ Close() error }, error) {
	switch cfg.Store.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil, nil
	case "sqlite", "":
		path := cfg.Store.Path
		if path == "" {
			path = filepath.Join(config.ConfigDirName, "artifacts.db")
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		st, err := storage.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open artifact store: %w", err)
		}
		return st, st, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %q", cfg.Store.Backend)
	}
}

func buildProvider(root string, cfg *config.Config) (domainsynth.Provider, error) {
	imageDir := cfg.ImageDir
	if imageDir == "" {
		imageDir = filepath.Join(root, config.ConfigDirName, "images")
	}
	base, err := synthinfra.GetDefaultProvider(synthinfra.ProviderSettings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
		Reasoner: cfg.Reasoner,
		ImageDir: imageDir,
	})
	if err != nil {
		return nil, err
	}

	var opts []synthinfra.Option
	if cfg.RateIntervalSeconds > 0 {
		opts = append(opts, synthinfra.WithMinInterval(time.Duration(cfg.RateIntervalSeconds)*time.Second))
	}
	return synthinfra.NewAdapter(synthinfra.NewResilientProvider(base), opts...), nil
}

func thresholdsFromConfig(cfg *config.Config) drift.Thresholds {
	t := drift.DefaultThresholds()
	o := cfg.Thresholds
	if o == nil {
		return t
	}
	if o.AcceptCanvas > 0 {
		t.AcceptCanvas = o.AcceptCanvas
	}
	if o.RetryCanvas > 0 {
		t.RetryCanvas = o.RetryCanvas
	}
	if o.RegionFloor > 0 {
		t.RegionFloor = o.RegionFloor
	}
	if o.TargetFloor > 0 {
		t.TargetFloor = o.TargetFloor
	}
	if o.SpecRetry > 0 {
		t.SpecRetry = o.SpecRetry
	}
	if o.SpecReject > 0 {
		t.SpecReject = o.SpecReject
	}
	return t
}
