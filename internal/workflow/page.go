package workflow

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed pages.yaml
var defaultPagesYAML []byte

type Operation string

const (
	OperationGenerateCopy   Operation = "generate_copy"
	OperationGenerateDesign Operation = "generate_design"
	OperationCompareFiles   Operation = "compare_files"
)

// ValueKind names where the value of a slot write comes from.
type ValueKind string

const (
	ValueOutput      ValueKind = "output"
	ValueSource      ValueKind = "source"
	ValueFile1       ValueKind = "file1"
	ValueFile2       ValueKind = "file2"
	ValueFlag        ValueKind = "flag"
	ValueTimestamp   ValueKind = "timestamp"
	ValueEpochMillis ValueKind = "epoch_millis"
)

type SlotBinding struct {
	Slot  string    `yaml:"slot" json:"slot"`
	Value ValueKind `yaml:"value" json:"value"`
}

// PageConfig describes one workflow page. A single Controller serves every page.
type PageConfig struct {
	ID             string        `yaml:"id" json:"id"`
	Title          string        `yaml:"title" json:"title"`
	Sources        int           `yaml:"sources" json:"sources"`
	Extraction     string        `yaml:"extraction" json:"extraction"`
	Operation      Operation     `yaml:"operation" json:"operation"`
	Editable       bool          `yaml:"editable" json:"editable"`
	RequireConfirm bool          `yaml:"require_confirm" json:"require_confirm"`
	Preload        []string      `yaml:"preload" json:"preload,omitempty"`
	Consume        []string      `yaml:"consume" json:"consume,omitempty"`
	OwnedSlots     []string      `yaml:"owned_slots" json:"owned_slots"`
	Confirm        []SlotBinding `yaml:"confirm" json:"confirm,omitempty"`
	Save           []SlotBinding `yaml:"save" json:"save,omitempty"`
	Handoff        []SlotBinding `yaml:"handoff" json:"handoff,omitempty"`
	NextPage       string        `yaml:"next_page" json:"next_page,omitempty"`
}

type pagesFile struct {
	Pages []PageConfig `yaml:"pages"`
}

// Pages is the validated set of page definitions, in declaration order.
type Pages struct {
	order []string
	byID  map[string]PageConfig
}

func (p *Pages) Get(id string) (PageConfig, error) {
	cfg, ok := p.byID[id]
	if !ok {
		return PageConfig{}, fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	return cfg, nil
}

func (p *Pages) All() []PageConfig {
	out := make([]PageConfig, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.byID[id])
	}
	return out
}

func DefaultPages() (*Pages, error) {
	return LoadPages(bytes.NewReader(defaultPagesYAML))
}

func LoadPagesFile(path string) (*Pages, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadPages(f)
}

func LoadPages(r io.Reader) (*Pages, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("workflow: read pages: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("workflow: pages definition is empty")
	}

	var file pagesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("workflow: decode pages: %w", err)
	}

	pages := &Pages{byID: make(map[string]PageConfig, len(file.Pages))}
	for _, cfg := range file.Pages {
		if cfg.ID == "" {
			return nil, fmt.Errorf("workflow: page without id")
		}
		if _, dup := pages.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("workflow: duplicate page %q", cfg.ID)
		}
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("workflow: page %q: %w", cfg.ID, err)
		}
		pages.byID[cfg.ID] = cfg
		pages.order = append(pages.order, cfg.ID)
	}

	for _, cfg := range pages.byID {
		if cfg.NextPage == "" {
			continue
		}
		if _, ok := pages.byID[cfg.NextPage]; !ok {
			return nil, fmt.Errorf("workflow: page %q: next page %q is not defined", cfg.ID, cfg.NextPage)
		}
	}
	return pages, nil
}

func (c PageConfig) validate() error {
	if c.Sources < 1 || c.Sources > 2 {
		return fmt.Errorf("sources must be 1 or 2, got %d", c.Sources)
	}
	switch c.Operation {
	case OperationGenerateCopy, OperationGenerateDesign, OperationCompareFiles:
	default:
		return fmt.Errorf("unknown operation %q", c.Operation)
	}
	switch c.Extraction {
	case "", "raw", "text", "article":
	default:
		return fmt.Errorf("unknown extraction mode %q", c.Extraction)
	}

	slotLists := [][]string{c.Preload, c.Consume, c.OwnedSlots}
	for _, list := range slotLists {
		for _, slot := range list {
			if _, ok := ScopeOf(slot); !ok {
				return fmt.Errorf("unknown slot %q", slot)
			}
		}
	}

	for _, bindings := range [][]SlotBinding{c.Confirm, c.Save, c.Handoff} {
		for _, b := range bindings {
			if _, ok := ScopeOf(b.Slot); !ok {
				return fmt.Errorf("unknown slot %q", b.Slot)
			}
			switch b.Value {
			case ValueOutput, ValueSource, ValueFlag, ValueTimestamp, ValueEpochMillis:
			case ValueFile1, ValueFile2:
				if c.Sources < 2 && b.Value == ValueFile2 {
					return fmt.Errorf("slot %q binds file2 on a single-source page", b.Slot)
				}
			default:
				return fmt.Errorf("slot %q has unknown value %q", b.Slot, b.Value)
			}
		}
	}

	if c.RequireConfirm && len(c.Confirm) == 0 {
		return fmt.Errorf("require_confirm set without confirm slots")
	}
	return nil
}
