package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/process"
)

var (
	errEmptyOutput      = errors.New("schema compiler produced no output")
	errTemplateRequired = errors.New("schema compiler command is required")
)

// Compiler runs the schema compiler command for one schema at a time.
type Compiler struct {
	runner   process.Runner
	template string
	dir      string
	vars     map[string]string
}

// NewCompiler creates a compiler. The template is expanded with vars plus
// $SCHEMA bound to the schema source; the command runs in dir.
func NewCompiler(runner process.Runner, template, dir string, vars map[string]string) *Compiler {
	return &Compiler{
		runner:   runner,
		template: template,
		dir:      dir,
		vars:     vars,
	}
}

// Compile returns the compiler output for a schema.
func (c *Compiler) Compile(ctx context.Context, schema config.Schema) ([]byte, error) {
	if c.template == "" {
		return nil, errTemplateRequired
	}

	vars := make(map[string]string, len(c.vars)+1)
	for k, v := range c.vars {
		vars[k] = v
	}

	vars[config.VarSchema] = schema.Source

	cmd, err := process.Parse(c.template, vars)
	if err != nil {
		return nil, fmt.Errorf("parse schema compiler command: %w", err)
	}

	cmd.Dir = c.dir

	logger.DebugKV(ctx, "Compiling schema", "schema", schema.Name, "compiler", cmd.Name)

	result, err := c.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}

	if len(bytes.TrimSpace(result.Stdout)) == 0 {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, errEmptyOutput)
	}

	return result.Stdout, nil
}

// Generate compiles every schema in order and overwrites its destination.
// The first failure stops the generation.
func (c *Compiler) Generate(ctx context.Context, schemas ...config.Schema) error {
	for _, schema := range schemas {
		output, err := c.Compile(ctx, schema)
		if err != nil {
			return err
		}

		if err = write(schema.Destination, output); err != nil {
			return fmt.Errorf("write definitions for %s: %w", schema.Name, err)
		}

		logger.InfoKV(ctx, "Type definitions generated",
			"schema", schema.Name,
			"destination", schema.Destination,
			"bytes", len(output))
	}

	return nil
}

func write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
