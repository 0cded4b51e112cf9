package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/biolink/kgx/errors"
	"gopkg.in/yaml.v3"
)

// Compression enumerates the supported archive/compression modes (spec §6.1).
type Compression string

const (
	CompressionNone  Compression = ""
	CompressionGZ    Compression = "gz"
	CompressionTarGZ Compression = "tar.gz"
)

func (c Compression) valid() bool {
	switch c {
	case CompressionNone, CompressionGZ, CompressionTarGZ:
		return true
	default:
		return false
	}
}

// RecordFilters is the node_filters / edge_filters option: an allow-list on
// category and arbitrary properties (spec §4.3 common configuration table).
type RecordFilters struct {
	Category   []string            `json:"category,omitempty" yaml:"category,omitempty"`
	Properties map[string][]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// EdgeFilters restricts edges by endpoint category and predicate.
type EdgeFilters struct {
	SubjectCategory []string `json:"subject_category,omitempty" yaml:"subject_category,omitempty"`
	ObjectCategory  []string `json:"object_category,omitempty" yaml:"object_category,omitempty"`
	Predicate       []string `json:"predicate,omitempty" yaml:"predicate,omitempty"`
}

// KnowledgeSourceDefaults are the edge provenance defaults a Source/
// Transformer fills in when a record omits them (spec §3, §4.5 stage 5).
type KnowledgeSourceDefaults struct {
	PrimaryKnowledgeSource     string   `json:"primary_knowledge_source,omitempty" yaml:"primary_knowledge_source,omitempty"`
	AggregatorKnowledgeSource  []string `json:"aggregator_knowledge_source,omitempty" yaml:"aggregator_knowledge_source,omitempty"`
	SupportingDataSource       []string `json:"supporting_data_source,omitempty" yaml:"supporting_data_source,omitempty"`
	KnowledgeLevel             string   `json:"knowledge_level,omitempty" yaml:"knowledge_level,omitempty"`
	AgentType                  string   `json:"agent_type,omitempty" yaml:"agent_type,omitempty"`
}

// InfoResRewrite selects one of the four forms of the §4.5 rewrite rule.
//
//   - Enabled, no Regex: the bare `true` form.
//   - Enabled + Regex, no Substitution: "(regex)" — delete matches.
//   - Enabled + Regex + Substitution, no Prefix: "(regex, sub)".
//   - Enabled + Regex + Substitution + Prefix: "(regex, sub, prefix)" — the
//     minted CURIE's prefix is Prefix instead of the default "infores".
type InfoResRewrite struct {
	Enabled      bool    `json:"enabled" yaml:"enabled"`
	Regex        string  `json:"regex,omitempty" yaml:"regex,omitempty"`
	Substitution *string `json:"substitution,omitempty" yaml:"substitution,omitempty"`
	Prefix       string  `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Options is the recognized top-level configuration surface shared by every
// Source, Sink and the Transformer (spec §6.3).
type Options struct {
	Filename []string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Format   string   `json:"format,omitempty" yaml:"format,omitempty"`

	Compression Compression `json:"compression,omitempty" yaml:"compression,omitempty"`

	PrefixMap                map[string]string `json:"prefix_map,omitempty" yaml:"prefix_map,omitempty"`
	ReversePrefixMap         map[string]string `json:"reverse_prefix_map,omitempty" yaml:"reverse_prefix_map,omitempty"`
	PredicateMappings        map[string]string `json:"predicate_mappings,omitempty" yaml:"predicate_mappings,omitempty"`
	ReversePredicateMappings map[string]string `json:"reverse_predicate_mappings,omitempty" yaml:"reverse_predicate_mappings,omitempty"`
	NodePropertyPredicates   []string          `json:"node_property_predicates,omitempty" yaml:"node_property_predicates,omitempty"`
	PropertyTypes            map[string]string `json:"property_types,omitempty" yaml:"property_types,omitempty"`

	NodeFilters RecordFilters `json:"node_filters,omitempty" yaml:"node_filters,omitempty"`
	EdgeFilters EdgeFilters   `json:"edge_filters,omitempty" yaml:"edge_filters,omitempty"`

	ProvidedBy      string                  `json:"provided_by,omitempty" yaml:"provided_by,omitempty"`
	KnowledgeSource KnowledgeSourceDefaults `json:"knowledge_source,omitempty" yaml:"knowledge_source,omitempty"`

	Stream         bool            `json:"stream,omitempty" yaml:"stream,omitempty"`
	BiolinkVersion string          `json:"biolink_version,omitempty" yaml:"biolink_version,omitempty"`
	InfoResRewrite *InfoResRewrite `json:"infores_rewrite,omitempty" yaml:"infores_rewrite,omitempty"`

	// ChunkSize and ChunkWorkers tune the tabular Source's bounded-
	// concurrency row parsing (spec §4.3.1, §5): rows are read off disk
	// sequentially in batches of ChunkSize, then parsed concurrently across
	// ChunkWorkers goroutines before being reassembled in file order. Zero
	// values fall back to tabular's own defaults.
	ChunkSize    int `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
	ChunkWorkers int `json:"chunk_workers,omitempty" yaml:"chunk_workers,omitempty"`
}

// Validate checks the recognized options for internal consistency.
func (o *Options) Validate() error {
	if !o.Compression.valid() {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Options", "Validate",
			"compression must be one of: \"\", gz, tar.gz")
	}
	if o.InfoResRewrite != nil && o.InfoResRewrite.Enabled {
		if o.InfoResRewrite.Substitution == nil && o.InfoResRewrite.Prefix != "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Options", "Validate",
				"infores_rewrite: prefix form requires a substitution")
		}
	}
	return nil
}

// LoadJSON parses Options from JSON bytes.
func LoadJSON(data []byte) (*Options, error) {
	var opts Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, errors.WrapInvalid(err, "config", "LoadJSON", "decode options")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// LoadYAML parses Options from YAML bytes.
func LoadYAML(data []byte) (*Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, errors.WrapInvalid(err, "config", "LoadYAML", "decode options")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// LoadFile loads Options from a file, selecting JSON or YAML decoding by
// file extension (.json vs .yaml/.yml).
func LoadFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "config", "LoadFile", "read file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	default:
		return LoadJSON(data)
	}
}
