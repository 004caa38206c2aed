package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"

	"github.com/matzehuels/procsheet/pkg/cache"
	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/store"
)

// LoadFile reads a JSON or YAML diagram from disk. Missing files are
// FILE_NOT_FOUND and undecodable ones INVALID_FORMAT.
func LoadFile(path string) (*diagram.Diagram, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	d, err := diagram.ReadFile(path)
	switch {
	case err == nil:
		return d, nil
	case stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram file %s", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "diagram file %s", path)
	}
}

// LoadReader decodes a diagram from r.
func LoadReader(r io.Reader, format diagram.Format) (*diagram.Diagram, error) {
	d, err := diagram.Read(r, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "diagram %s", format)
	}
	return d, nil
}

// LoadRecord fetches a stored diagram. Unknown ids are DIAGRAM_NOT_FOUND and
// transient backend failures STORE_UNAVAILABLE.
func LoadRecord(ctx context.Context, s store.Store, id string) (*diagram.Diagram, error) {
	if err := errors.ValidateDiagramID(id); err != nil {
		return nil, err
	}
	d, err := s.Get(ctx, id)
	switch {
	case err == nil:
		return d, nil
	case stderrors.Is(err, store.ErrNotFound):
		return nil, errors.Wrap(errors.ErrCodeDiagramNotFound, err, "diagram %s", id)
	case cache.IsRetryable(err):
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "diagram %s", id)
	default:
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "diagram %s", id)
	}
}
