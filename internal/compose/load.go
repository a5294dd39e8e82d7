// Package compose locates, loads and installs compose group definitions.
package compose

import (
	"context"
	"maps"
	"os"
	"path/filepath"

	"github.com/compose-spec/compose-go/v2/dotenv"
	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
)

// DefinitionCandidates lists the file names recognised as a group
// definition, in lookup order.
var DefinitionCandidates = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// LoadOptions contains optional configuration for Load.
type LoadOptions struct {
	// ProjectName overrides the project name. Defaults to the base name of
	// the directory holding the compose file.
	ProjectName string

	// Environment sets environment variables that will be used for
	// variable interpolation in the compose file.
	Environment map[string]string

	// EnvFiles specifies .env files to load before parsing the compose file.
	// Variables from these files will be available for interpolation.
	EnvFiles []string
}

// Load loads a compose project from the filesystem and returns a validated Project.
//
// The path argument can be:
//   - A file path: loads that specific compose file
//   - A directory: looks for compose.yaml, compose.yml, docker-compose.yaml, or docker-compose.yml
//     in the root directory only (not recursive)
//
// opts can be nil for default behavior.
//
// Load returns an error if the file cannot be found, contains invalid YAML,
// or fails validation against the compose specification.
func Load(ctx context.Context, path string, opts *LoadOptions) (*types.Project, error) {
	// Check context before doing any work
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if opts == nil {
		opts = &LoadOptions{}
	}

	pathInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Kind: KindNotFound, Path: path, Cause: err}
		}
		return nil, &LoadError{Kind: KindPath, Path: path, Cause: err}
	}

	filePath := path
	if pathInfo.IsDir() {
		filePath = FindDefinition(path)
		if filePath == "" {
			return nil, &LoadError{Kind: KindNotFound, Path: path, Detail: "no compose file found"}
		}
	}
	workdir := filepath.Dir(filePath)

	envMap := make(map[string]string)

	// Default .env file in workdir first so explicit env files override it
	defaultEnvFile := filepath.Join(workdir, ".env")
	if _, err := os.Stat(defaultEnvFile); err == nil {
		if values, err := dotenv.Read(defaultEnvFile); err == nil {
			maps.Copy(envMap, values)
		}
	}

	for _, envFile := range opts.EnvFiles {
		values, err := dotenv.Read(envFile)
		if err != nil {
			return nil, &LoadError{Kind: KindPath, Path: envFile, Cause: err}
		}
		maps.Copy(envMap, values)
	}

	// Provided environment variables take precedence
	maps.Copy(envMap, opts.Environment)

	configDetails, err := loader.LoadConfigFiles(ctx, []string{filePath}, workdir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Kind: KindNotFound, Path: filePath, Cause: err}
		}
		if isYAMLError(err) {
			return nil, &LoadError{Kind: KindSyntax, Path: filePath, Cause: err}
		}
		return nil, &LoadError{Kind: KindPath, Path: filePath, Cause: err}
	}

	if configDetails.Environment == nil {
		configDetails.Environment = make(types.Mapping)
	}
	for key, val := range envMap {
		if _, exists := configDetails.Environment[key]; !exists {
			configDetails.Environment[key] = val
		}
	}

	// An explicit name wins over the file's own name: field
	projectName := opts.ProjectName
	imperative := projectName != ""
	if !imperative {
		projectName = filepath.Base(workdir)
	}

	// Skip validation during load so the project name is applied first
	loaderOpts := []func(*loader.Options){
		func(o *loader.Options) {
			o.SkipValidation = true
			o.SetProjectName(projectName, imperative)
		},
	}

	project, err := loader.LoadWithContext(ctx, *configDetails, loaderOpts...)
	if err != nil {
		if isYAMLError(err) {
			return nil, &LoadError{Kind: KindSyntax, Path: filePath, Cause: err}
		}
		return nil, &LoadError{Kind: KindLoader, Path: filePath, Cause: err}
	}

	if err := validateProject(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// FindDefinition returns the path of the group definition in dir, or "" if
// none of DefinitionCandidates is present.
func FindDefinition(dir string) string {
	for _, name := range DefinitionCandidates {
		fullPath := filepath.Join(dir, name)
		if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
			return fullPath
		}
	}
	return ""
}
