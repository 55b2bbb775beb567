package card

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	estimaerrors "github.com/felixgeelhaar/estima/internal/errors"
)

// Board is the file form of a card list.
type Board struct {
	Cards []*Card `yaml:"cards"`
}

// Repository loads and saves card boards.
type Repository interface {
	// Load reads the top-level cards of a board
	Load(path string) ([]*Card, error)

	// Save writes cards, projections included, to a board file
	Save(cards []*Card, path string) error
}

// FileRepository implements Repository for YAML files
type FileRepository struct{}

// NewFileRepository creates a new file-based card repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads a YAML board from path
func (r *FileRepository) Load(path string) ([]*Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, estimaerrors.NewFileNotFoundError(path)
		}
		return nil, estimaerrors.Wrap(estimaerrors.ErrCodeFileReadFailed, "read card file", err)
	}

	cards, err := Parse(data)
	if err != nil {
		if estimaerrors.IsCode(err, estimaerrors.ErrCodeFileUnmarshal) {
			return nil, estimaerrors.NewFileUnmarshalError(path, "YAML", errors.Unwrap(err))
		}
		return nil, err
	}
	return cards, nil
}

// Save writes cards to a YAML board at path
func (r *FileRepository) Save(cards []*Card, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return estimaerrors.Wrap(estimaerrors.ErrCodeFileWriteFailed, "create directory", err)
	}

	data, err := yaml.Marshal(Board{Cards: cards})
	if err != nil {
		return estimaerrors.Wrap(estimaerrors.ErrCodeFileMarshal, "marshal cards", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return estimaerrors.Wrap(estimaerrors.ErrCodeFileWriteFailed, "write card file", err)
	}
	return nil
}

// Parse decodes a YAML board. Cards may nest children directly or name a
// parent; the latter are moved under that parent. Unnamed cards get a
// random name. The top-level cards are returned in file order.
func Parse(data []byte) ([]*Card, error) {
	var board Board
	if err := yaml.Unmarshal(data, &board); err != nil {
		return nil, estimaerrors.Wrap(estimaerrors.ErrCodeFileUnmarshal, "unmarshal cards", err)
	}

	byName := make(map[string]*Card)
	var index func(c *Card, parent *Card) error
	index = func(c *Card, parent *Card) error {
		if c.Name == "" {
			c.Name = uuid.NewString()
		}
		if _, dup := byName[c.Name]; dup {
			return estimaerrors.NewDuplicateEntityError(c.Name)
		}
		byName[c.Name] = c
		c.Parent = parent
		c.Status = ParseStatus(string(c.Status))
		if c.Estimate != nil {
			if err := c.Estimate.Validate(); err != nil {
				return err
			}
		}
		for _, child := range c.Children {
			if err := index(child, c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, c := range board.Cards {
		if err := index(c, nil); err != nil {
			return nil, err
		}
	}

	var top []*Card
	for _, c := range board.Cards {
		if c.ParentName == "" {
			top = append(top, c)
			continue
		}
		parent, ok := byName[c.ParentName]
		if !ok {
			return nil, estimaerrors.NewUnknownEntityError(c.ParentName)
		}
		if c.Contains(parent) {
			return nil, estimaerrors.NewCyclicCompositionError(parent.Name, c.Name)
		}
		parent.AddChild(c)
	}
	return top, nil
}

// Default instance for package-level functions
var defaultRepository = NewFileRepository()

// Load reads a YAML board using the default repository.
func Load(path string) ([]*Card, error) {
	return defaultRepository.Load(path)
}

// Save writes a YAML board using the default repository.
func Save(cards []*Card, path string) error {
	return defaultRepository.Save(cards, path)
}

// Compile-time verification that FileRepository implements Repository
var _ Repository = (*FileRepository)(nil)
