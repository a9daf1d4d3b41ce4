// Package publish uploads a directory tree to a hosted site over HTTP.
// It pushes generated documentation to a pages site and doubles as the
// coverage-report uploader.
package publish

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"resty.dev/v3"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the publish step. The sample rig passes
// the target through the run's eval context, e.g.
// `target_url = env["DOCS_PUBLISH_URL"]`.
type Input struct {
	SourceDir string `hcl:"source_dir"`
	TargetURL string `hcl:"target_url"`
}

// OnRunPublish is the handler for the 'publish' step. Every regular file
// under source_dir is PUT to target_url joined with its relative path.
func OnRunPublish(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("target", input.TargetURL)

	if input.TargetURL == "" {
		return cty.NilVal, fmt.Errorf("no publish target configured")
	}

	client := resty.New()
	defer client.Close()

	base := strings.TrimSuffix(input.TargetURL, "/")
	uploaded := 0

	err := filepath.Walk(input.SourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(input.SourceDir, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read '%s': %w", path, err)
		}

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		target := base + "/" + filepath.ToSlash(rel)
		logger.Debug("Uploading file.", "source", path, "url", target, "size", info.Size())

		resp, err := client.R().
			SetContext(ctx).
			SetHeader("Content-Type", contentType).
			SetBody(data).
			Put(target)
		if err != nil {
			return fmt.Errorf("failed to upload '%s': %w", rel, err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("upload of '%s' failed with status: %s", rel, resp.Status())
		}

		uploaded++
		return nil
	})
	if err != nil {
		return cty.NilVal, err
	}

	logger.Info("Publish finished", "uploaded", uploaded)
	return cty.ObjectVal(map[string]cty.Value{
		"uploaded": cty.NumberIntVal(int64(uploaded)),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("publish", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunPublish,
	})
}
