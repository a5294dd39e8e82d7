package compose

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/compose-spec/compose-go/v2/types"
	"github.com/compose-spec/compose-go/v2/validation"
)

// validateProject validates a compose project against the compose specification.
// It runs compose-go's schema validation, which is deferred during initial loading
// to allow setting the project name first.
func validateProject(ctx context.Context, project *types.Project) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if project == nil {
		return &LoadError{Kind: KindInvalid, Detail: "project is not defined"}
	}

	// The validation package works on map[string]any, so round-trip the
	// project through JSON.
	projectJSON, err := project.MarshalJSON()
	if err != nil {
		return &LoadError{Kind: KindInvalid, Detail: "failed to marshal project", Cause: err}
	}

	var projectMap map[string]any
	if err := json.Unmarshal(projectJSON, &projectMap); err != nil {
		return &LoadError{Kind: KindInvalid, Detail: "failed to unmarshal project", Cause: err}
	}

	if err := validation.Validate(projectMap); err != nil {
		return &LoadError{Kind: KindInvalid, Detail: err.Error(), Cause: err}
	}

	if len(project.Services) == 0 {
		return &LoadError{Kind: KindInvalid, Detail: "no services defined"}
	}

	return nil
}

// isYAMLError checks if a loader error is a parse error rather than a file access error.
func isYAMLError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, os.ErrNotExist) && // not a file not found error
		!errors.Is(err, os.ErrPermission) // not a permission error
}
