package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"twbkit/archive"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	WorkbookConfig struct {
		Backup             bool              `yaml:"backup"`
		MarkupCompression  MarkupCompression `yaml:"markup_compression" validate:"gte=0"`
		OutputNameTemplate string            `yaml:"output_name_template"`
	}

	InspectConfig struct {
		Format OutputFmt `yaml:"format" validate:"gte=0"`
		Sort   bool      `yaml:"sort"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Workbook  WorkbookConfig `yaml:"workbook"`
		Inspect   InspectConfig  `yaml:"inspect"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// OutputNameTemplateFieldName must match yaml field name above, gencfg must
// leave its value alone, it is expanded for every saved workbook.
const OutputNameTemplateFieldName = "output_name_template"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(OutputNameTemplateFieldName),
)

// Compression maps configured compression of the markup entry to archive
// setting.
func (c *WorkbookConfig) Compression() archive.Compression {
	switch c.MarkupCompression {
	case MarkupCompressionStore:
		return archive.CompressionStore
	case MarkupCompressionDeflate:
		return archive.CompressionDeflate
	default:
		return archive.CompressionKeep
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
