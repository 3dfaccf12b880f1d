package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/changes"
	"github.com/plcqa/plcqa/internal/domain/declaration"
	"github.com/plcqa/plcqa/internal/domain/rules"
	"github.com/plcqa/plcqa/internal/domain/variables"
	"golang.org/x/sync/errgroup"
)

// AnalyzeService orchestrates the analysis pipelines:
// load config → collect units → detect changes → evaluate rules per unit → assemble report.
type AnalyzeService struct {
	collector    domain.UnitCollector
	configLoader domain.ConfigLoader
	gitInfo      domain.GitInfo
	results      domain.ResultStore
	logger       *slog.Logger
	now          func() time.Time
}

// NewAnalyzeService wires the service. gitInfo and logger may be nil.
func NewAnalyzeService(
	collector domain.UnitCollector,
	configLoader domain.ConfigLoader,
	gitInfo domain.GitInfo,
	logger *slog.Logger,
) *AnalyzeService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AnalyzeService{
		collector:    collector,
		configLoader: configLoader,
		gitInfo:      gitInfo,
		logger:       logger,
		now:          time.Now,
	}
}

// WithCache makes single-project runs reuse the stored results of units whose
// content is unchanged and store the new results afterwards.
func (s *AnalyzeService) WithCache(store domain.ResultStore) *AnalyzeService {
	s.results = store
	return s
}

// Analyze runs every rule over every analyzable unit of one project tree.
func (s *AnalyzeService) Analyze(ctx context.Context, projectPath string) (*domain.Report, error) {
	// 0. Load config
	cfg, err := s.configLoader.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// 1. Collect units (pass exclude paths from config)
	cat, err := s.collector.Collect(ctx, projectPath, cfg.ExcludePaths...)
	if err != nil {
		return nil, fmt.Errorf("collecting units: %w", err)
	}
	s.logger.Info("units collected", "root", cat.Root, "units", len(cat.Units), "skipped", len(cat.Failures))

	// 2. Evaluate rules per unit, reusing cached results
	fingerprint := cfg.Fingerprint()
	prior := s.loadCache(cat.Root, fingerprint)
	engine := rules.NewEngineFromConfig(cfg)
	evaluated, err := s.evaluate(ctx, engine, cat.Units, workers(cfg), prior)
	if err != nil {
		return nil, fmt.Errorf("evaluating rules: %w", err)
	}
	s.saveCache(cat.Root, fingerprint, evaluated)
	files, issues := merge(evaluated)
	s.logger.Info("rules evaluated", "units", len(files), "issues", len(issues))

	return domain.NewReport(domain.ReportInput{
		Mode:        domain.ModeSingle,
		GeneratedAt: s.now().UTC(),
		ProjectPath: cat.Root,
		CommitHash:  s.commitHash(cat.Root),
		Units:       cat.Units,
		Files:       files,
		Issues:      issues,
		Failures:    cat.Failures,
	}), nil
}

// Compare diffs two snapshots of a project and evaluates the rules on the
// units that were added or modified. Configuration comes from the new side.
func (s *AnalyzeService) Compare(ctx context.Context, oldPath, newPath string) (*domain.Report, error) {
	// 0. Load config
	cfg, err := s.configLoader.Load(newPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// 1. Collect both snapshots
	var oldCat, newCat *domain.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.collector.Collect(gctx, oldPath, cfg.ExcludePaths...)
		if err != nil {
			return fmt.Errorf("collecting old snapshot: %w", err)
		}
		oldCat = c
		return nil
	})
	g.Go(func() error {
		c, err := s.collector.Collect(gctx, newPath, cfg.ExcludePaths...)
		if err != nil {
			return fmt.Errorf("collecting new snapshot: %w", err)
		}
		newCat = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 2. Detect file changes
	fileChanges := changes.Detect(oldCat.Units, newCat.Units)
	s.logger.Info("changes detected", "changes", len(fileChanges))

	oldByPath := indexUnits(oldCat.Units)
	newByPath := indexUnits(newCat.Units)

	// 3. Diff variables of modified units
	var varChanges []domain.VariableChange
	for _, p := range changes.Paths(fileChanges, domain.ChangeModified) {
		o, n := oldByPath[p], newByPath[p]
		if !n.Type.Analyzable() {
			continue
		}
		varChanges = append(varChanges, variables.Diff(p, declaration.ParseUnit(o), declaration.ParseUnit(n))...)
	}

	// 4. Evaluate rules on added and modified units
	var targets []domain.Unit
	for _, p := range changes.Paths(fileChanges, domain.ChangeAdded, domain.ChangeModified) {
		targets = append(targets, newByPath[p])
	}
	engine := rules.NewEngineFromConfig(cfg)
	evaluated, err := s.evaluate(ctx, engine, targets, workers(cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("evaluating rules: %w", err)
	}
	files, issues := merge(evaluated)
	issues = append(issues, engine.EvaluateVariableChanges(varChanges)...)
	s.logger.Info("rules evaluated", "units", len(files), "variable_changes", len(varChanges), "issues", len(issues))

	return domain.NewReport(domain.ReportInput{
		Mode:            domain.ModeCompare,
		GeneratedAt:     s.now().UTC(),
		ProjectPath:     newCat.Root,
		SourcePath:      oldCat.Root,
		CommitHash:      s.commitHash(newCat.Root),
		Units:           newCat.Units,
		Files:           files,
		FileChanges:     fileChanges,
		VariableChanges: varChanges,
		Issues:          issues,
		Failures:        mergeFailures(oldCat.Failures, newCat.Failures),
	}), nil
}

// evaluatedUnit pairs a unit with its rule result.
type evaluatedUnit struct {
	unit   domain.Unit
	result rules.UnitResult
}

// evaluate runs the engine on every analyzable unit with at most n units in
// flight. Units found unchanged in prior are not re-evaluated. Results keep
// unit order.
func (s *AnalyzeService) evaluate(ctx context.Context, engine *rules.Engine, units []domain.Unit, n int, prior *domain.ResultCache) ([]evaluatedUnit, error) {
	var out []evaluatedUnit
	for _, u := range units {
		if u.Type.Analyzable() {
			out = append(out, evaluatedUnit{unit: u})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i := range out {
		u := out[i].unit
		if cached, ok := prior.Lookup(u); ok {
			out[i].result = rules.UnitResult{Issues: cached.Issues, Metrics: cached.Metrics}
			s.logger.Debug("unit cached", "path", u.Path)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i].result = engine.EvaluateUnit(u)
			s.logger.Debug("unit evaluated", "path", u.Path, "issues", len(out[i].result.Issues))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// merge flattens evaluated units into report rows and issues.
func merge(evaluated []evaluatedUnit) ([]domain.FileStats, []domain.Issue) {
	files := make([]domain.FileStats, 0, len(evaluated))
	var issues []domain.Issue
	for _, e := range evaluated {
		files = append(files, domain.FileStats{
			Path:        e.unit.Path,
			Type:        e.unit.Type,
			Kind:        e.unit.Kind,
			Name:        e.unit.Name,
			IssueCount:  len(e.result.Issues),
			UnitMetrics: e.result.Metrics,
		})
		issues = append(issues, e.result.Issues...)
	}
	return files, issues
}

func (s *AnalyzeService) loadCache(root, fingerprint string) *domain.ResultCache {
	if s.results == nil {
		return nil
	}
	c, err := s.results.Load(root)
	if err != nil {
		s.logger.Warn("ignoring result cache", "root", root, "error", err)
		return nil
	}
	if c == nil || c.IsInvalidated(rules.TableVersion, fingerprint) {
		return nil
	}
	return c
}

// saveCache is best-effort; a failed write only costs the next run time.
func (s *AnalyzeService) saveCache(root, fingerprint string, evaluated []evaluatedUnit) {
	if s.results == nil {
		return
	}
	c := &domain.ResultCache{
		ProjectPath:  root,
		TableVersion: rules.TableVersion,
		ConfigHash:   fingerprint,
		Units:        make(map[string]domain.CachedUnit, len(evaluated)),
	}
	for _, e := range evaluated {
		c.Units[e.unit.Path] = domain.CachedUnit{Hash: e.unit.Hash, Issues: e.result.Issues, Metrics: e.result.Metrics}
	}
	if err := s.results.Save(c); err != nil {
		s.logger.Warn("saving result cache", "root", root, "error", err)
	}
}

func (s *AnalyzeService) commitHash(root string) string {
	if s.gitInfo == nil {
		return ""
	}
	hash, err := s.gitInfo.CommitHash(root)
	if err != nil {
		s.logger.Debug("no commit hash", "root", root, "error", err)
		return ""
	}
	return hash
}

func workers(cfg domain.ProjectConfig) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func indexUnits(units []domain.Unit) map[string]domain.Unit {
	m := make(map[string]domain.Unit, len(units))
	for _, u := range units {
		m[u.Path] = u
	}
	return m
}

// mergeFailures lists failures of both snapshots; old-side causes are marked.
func mergeFailures(oldFailures, newFailures []domain.UnitFailure) []domain.UnitFailure {
	out := make([]domain.UnitFailure, 0, len(oldFailures)+len(newFailures))
	for _, f := range oldFailures {
		out = append(out, domain.UnitFailure{Path: f.Path, Cause: "old snapshot: " + f.Cause})
	}
	return append(out, newFailures...)
}
