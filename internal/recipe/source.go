// Package recipe loads recipes from YAML, either the embedded defaults or a
// user-provided directory with the same layout:
//
//	recipes/<id>.yaml
//	instructions/<stage>.md
package recipe

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/bakelab/levain/internal/domain"
	"github.com/bakelab/levain/internal/logger"
)

//go:embed assets
var assets embed.FS

// DefaultFS returns the embedded recipe collection.
func DefaultFS() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		// The embed path is fixed at compile time.
		panic(err)
	}
	return sub
}

// Compile-time interface check.
var _ domain.RecipeSource = (*Source)(nil)

// Source reads recipes from a filesystem. Parsed recipes are cached; the
// filesystem is treated as immutable for the process lifetime.
type Source struct {
	fsys fs.FS
	log  *logger.Logger

	mu    sync.Mutex
	cache map[string]*domain.Recipe
}

// NewSource creates a recipe source over fsys.
func NewSource(fsys fs.FS, log *logger.Logger) *Source {
	return &Source{
		fsys:  fsys,
		log:   log,
		cache: make(map[string]*domain.Recipe),
	}
}

// NewFileSource creates a recipe source over a directory on disk.
func NewFileSource(dir string, log *logger.Logger) *Source {
	return NewSource(os.DirFS(dir), log)
}

// NewEmbeddedSource creates a recipe source over the embedded defaults.
func NewEmbeddedSource(log *logger.Logger) *Source {
	return NewSource(DefaultFS(), log)
}

// List returns summaries for every parsable recipe file, sorted by name.
// Unparsable files are logged and skipped rather than failing the listing.
func (s *Source) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	entries, err := fs.ReadDir(s.fsys, "recipes")
	if err != nil {
		return nil, fmt.Errorf("reading recipes directory: %w", err)
	}

	var out []domain.RecipeSummary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isYAML(name) {
			continue
		}
		r, err := s.load(name)
		if err != nil {
			s.log.Warn("skipping recipe file %s: %v", name, err)
			continue
		}
		out = append(out, domain.RecipeSummary{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns the recipe with the given id, or domain.ErrRecipeNotFound.
func (s *Source) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.Lock()
	if r, ok := s.cache[id]; ok {
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	// Recipe files are named after their id.
	for _, name := range []string{id + ".yaml", id + ".yml"} {
		r, err := s.load(name)
		if err == nil && r.ID == id {
			return r, nil
		}
	}

	// Fall back to a scan for files whose declared id differs from the
	// filename.
	entries, err := fs.ReadDir(s.fsys, "recipes")
	if err != nil {
		return nil, fmt.Errorf("reading recipes directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		r, err := s.load(entry.Name())
		if err != nil {
			continue
		}
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrRecipeNotFound
}

func (s *Source) load(filename string) (*domain.Recipe, error) {
	data, err := fs.ReadFile(s.fsys, path.Join("recipes", filename))
	if err != nil {
		return nil, err
	}

	var r domain.Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if err := Validate(&r); err != nil {
		return nil, fmt.Errorf("validating %s: %w", filename, err)
	}

	s.mu.Lock()
	s.cache[r.ID] = &r
	s.mu.Unlock()
	return &r, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Validate checks the structural invariants a recipe must hold before the
// progression engine can run it.
func Validate(r *domain.Recipe) error {
	if r.ID == "" {
		return fmt.Errorf("recipe has no id")
	}
	if r.Name == "" {
		return fmt.Errorf("recipe %s has no name", r.ID)
	}
	if len(r.Stages) == 0 {
		return fmt.Errorf("recipe %s has no stages", r.ID)
	}

	ingredients := make(map[string]bool, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.ID == "" {
			return fmt.Errorf("recipe %s: ingredient with empty id", r.ID)
		}
		if ingredients[ing.ID] {
			return fmt.Errorf("recipe %s: duplicate ingredient %s", r.ID, ing.ID)
		}
		ingredients[ing.ID] = true
	}

	// A stage either delegates to sub-stages or leafs directly; never both.
	seen := make(map[string]bool)
	for _, stage := range r.Stages {
		if len(stage.SubStages) > 0 && (stage.DurationMinutes > 0 || len(stage.IngredientInputs) > 0) {
			return fmt.Errorf("recipe %s: stage %s has both sub-stages and leaf fields", r.ID, stage.ID)
		}
	}
	for _, flat := range domain.Flatten(r.Stages) {
		if flat.ID == "" {
			return fmt.Errorf("recipe %s: stage with empty id", r.ID)
		}
		if seen[flat.ID] {
			return fmt.Errorf("recipe %s: duplicate stage id %s", r.ID, flat.ID)
		}
		seen[flat.ID] = true
		for _, ref := range flat.IngredientInputs {
			if !ingredients[ref] {
				return fmt.Errorf("recipe %s: stage %s references unknown ingredient %s", r.ID, flat.ID, ref)
			}
		}
	}

	for _, section := range r.Sections {
		for _, id := range section.AllStageIDs() {
			if !seen[id] {
				return fmt.Errorf("recipe %s: section %s references unknown stage %s", r.ID, section.ID, id)
			}
		}
	}
	return nil
}
