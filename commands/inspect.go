package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"twbkit/config"
	"twbkit/state"
	"twbkit/workbook"
)

type (
	connectionInfo struct {
		Class         string              `json:"class" yaml:"class"`
		Server        string              `json:"server,omitempty" yaml:"server,omitempty"`
		Port          string              `json:"port,omitempty" yaml:"port,omitempty"`
		Database      string              `json:"database,omitempty" yaml:"database,omitempty"`
		Username      string              `json:"username,omitempty" yaml:"username,omitempty"`
		Password      config.SecretString `json:"password,omitempty" yaml:"password,omitempty"`
		Filename      string              `json:"filename,omitempty" yaml:"filename,omitempty"`
		CloudProvider string              `json:"cloud_provider,omitempty" yaml:"cloud_provider,omitempty"`
		CustomSQL     []string            `json:"custom_sql,omitempty" yaml:"custom_sql,omitempty"`
	}

	fieldInfo struct {
		Name       string `json:"name" yaml:"name"`
		Qualified  string `json:"qualified" yaml:"qualified"`
		Role       string `json:"role,omitempty" yaml:"role,omitempty"`
		Datatype   string `json:"datatype,omitempty" yaml:"datatype,omitempty"`
		Hidden     bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
		Calculated bool   `json:"calculated,omitempty" yaml:"calculated,omitempty"`
	}

	dataSourceInfo struct {
		Name        string           `json:"name" yaml:"name"`
		Caption     string           `json:"caption,omitempty" yaml:"caption,omitempty"`
		Connections []connectionInfo `json:"connections,omitempty" yaml:"connections,omitempty"`
		Fields      []fieldInfo      `json:"fields,omitempty" yaml:"fields,omitempty"`
	}

	resourceInfo struct {
		Path string `json:"path" yaml:"path"`
		Size int64  `json:"size" yaml:"size"`
	}

	// workbookInfo is everything inspect prints about single workbook.
	workbookInfo struct {
		Source        string              `json:"source" yaml:"source"`
		Container     string              `json:"container" yaml:"container"`
		DataSources   []dataSourceInfo    `json:"datasources" yaml:"datasources"`
		HiddenFields  []string            `json:"hidden_fields,omitempty" yaml:"hidden_fields,omitempty"`
		ActiveFields  []workbook.FieldUse `json:"active_fields,omitempty" yaml:"active_fields,omitempty"`
		CustomSQL     []string            `json:"custom_sql,omitempty" yaml:"custom_sql,omitempty"`
		Databases     []string            `json:"databases,omitempty" yaml:"databases,omitempty"`
		LinkedFiles   []string            `json:"linked_files,omitempty" yaml:"linked_files,omitempty"`
		OneDriveFiles []string            `json:"onedrive_files,omitempty" yaml:"onedrive_files,omitempty"`
		Worksheets    []string            `json:"worksheets,omitempty" yaml:"worksheets,omitempty"`
		Fonts         []string            `json:"fonts,omitempty" yaml:"fonts,omitempty"`
		Colors        []workbook.Color    `json:"colors,omitempty" yaml:"colors,omitempty"`
		ColorPalettes []string            `json:"color_palettes,omitempty" yaml:"color_palettes,omitempty"`
		Images        []string            `json:"images,omitempty" yaml:"images,omitempty"`
		Shapes        []string            `json:"shapes,omitempty" yaml:"shapes,omitempty"`
		Resources     []resourceInfo      `json:"resources,omitempty" yaml:"resources,omitempty"`
	}
)

func collect(path string, doc *workbook.Document, sorted bool) *workbookInfo {
	info := &workbookInfo{
		Source:        path,
		Container:     doc.Container().String(),
		ActiveFields:  doc.ActiveFields(),
		CustomSQL:     doc.CustomSQL(),
		Databases:     doc.Databases(),
		LinkedFiles:   doc.LinkedFiles(),
		OneDriveFiles: doc.OneDriveFiles(),
		Worksheets:    doc.Worksheets(),
		Fonts:         doc.Fonts(),
		Colors:        doc.Colors(),
		ColorPalettes: doc.ColorPalettes(),
		Images:        doc.Images(),
		Shapes:        doc.Shapes(),
	}

	for _, ds := range doc.DataSources() {
		dsi := dataSourceInfo{Name: ds.Name, Caption: ds.Caption}
		for _, c := range ds.Connections {
			dsi.Connections = append(dsi.Connections, connectionInfo{
				Class:         c.Class,
				Server:        c.Server,
				Port:          c.Port,
				Database:      c.Database,
				Username:      c.Username,
				Password:      config.SecretString(c.Password),
				Filename:      c.Filename,
				CloudProvider: c.CloudProvider,
				CustomSQL:     c.CustomSQL,
			})
		}
		for _, f := range ds.Fields {
			dsi.Fields = append(dsi.Fields, fieldInfo{
				Name:       f.Name,
				Qualified:  f.Qualified,
				Role:       f.Role,
				Datatype:   f.Datatype,
				Hidden:     f.Hidden,
				Calculated: f.Calculated,
			})
			if f.Hidden {
				info.HiddenFields = append(info.HiddenFields, f.Qualified)
			}
		}
		if sorted {
			sort.Slice(dsi.Fields, func(i, j int) bool {
				return natural.Less(dsi.Fields[i].Qualified, dsi.Fields[j].Qualified)
			})
		}
		info.DataSources = append(info.DataSources, dsi)
	}

	for _, e := range doc.Resources() {
		info.Resources = append(info.Resources, resourceInfo{Path: e.Path, Size: e.Size()})
	}

	if sorted {
		for _, list := range [][]string{
			info.HiddenFields, info.Databases, info.LinkedFiles, info.OneDriveFiles,
			info.Worksheets, info.Fonts, info.ColorPalettes, info.Images, info.Shapes,
		} {
			sort.Sort(natural.StringSlice(list))
		}
		sort.Slice(info.Resources, func(i, j int) bool {
			return natural.Less(info.Resources[i].Path, info.Resources[j].Path)
		})
	}
	return info
}

func encode(w io.Writer, format config.OutputFmt, v any) error {
	switch format {
	case config.OutputFmtJson:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// Inspect prints metadata of every workbook specified on command line.
func Inspect(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	format := env.Cfg.Inspect.Format
	if f := cmd.String("format"); f != "" {
		var err error
		if format, err = config.ParseOutputFmt(f); err != nil {
			return fmt.Errorf("unknown output format %q, supported: %v", f, config.OutputFmtNames())
		}
	}
	sorted := env.Cfg.Inspect.Sort || cmd.Bool("sort")
	out := cmd.Root().Writer

	var reported int

	return walkSources(ctx, cmd.Args().Slice(), log, func(ctx context.Context, path string) error {
		doc, err := openDocument(env, path, log)
		if err != nil {
			return err
		}
		info := collect(path, doc, sorted)
		if err := encode(out, format, info); err != nil {
			return fmt.Errorf("unable to output metadata: %w", err)
		}
		if env.Rpt != nil {
			reported++
			var buf bytes.Buffer
			if err := encode(&buf, format, info); err == nil {
				env.Rpt.StoreData(config.EntryName(format.Ext(), strconv.Itoa(reported), filepath.Base(path)), buf.Bytes())
			}
		}
		log.Debug("Workbook inspected", zap.String("file", path),
			zap.Int("datasources", len(info.DataSources)), zap.Int("resources", len(info.Resources)))
		return nil
	})
}
