package transaction

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/hostsub/pkg/atomicfile"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// Phase is how far an in-flight transaction got.
type Phase string

const (
	// PhaseBackedUp: snapshot taken, new content computed, file not yet written
	PhaseBackedUp Phase = "backed-up"
	// PhaseCommitted: new content written, downstream store not yet updated
	PhaseCommitted Phase = "committed"
	// PhaseFinalized: both stores updated
	PhaseFinalized Phase = "finalized"
)

// Intent is the on-disk record of an in-flight transaction.
type Intent struct {
	ID        string `toml:"id"`
	Operation string `toml:"operation"`
	URL       string `toml:"url,omitempty"`
	Target    string `toml:"target"`
	Snapshot  string `toml:"snapshot"`
	Phase     Phase  `toml:"phase"`

	// Downstream is set when the operation also updates the registry
	Downstream bool `toml:"downstream,omitempty"`

	Before  string    `toml:"before"` // checksum of the content at backup time
	After   string    `toml:"after"`  // checksum of the content being committed
	Started time.Time `toml:"started"`
}

type journal struct {
	fs     types.FS
	path   string
	writer *atomicfile.Writer
}

func newJournal(fsys types.FS, path string) *journal {
	return &journal{fs: fsys, path: path, writer: atomicfile.New(fsys)}
}

func (j *journal) save(intent *Intent) error {
	data, err := toml.Marshal(intent)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode intent")
	}
	if err := j.fs.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create state directory for %s", j.path)
	}
	if err := j.writer.Write(j.path, data); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to record intent %s", j.path)
	}
	return nil
}

// load returns the pending intent, or nil when there is none.
func (j *journal) load() (*Intent, error) {
	data, err := j.fs.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read intent %s", j.path)
	}
	var intent Intent
	if err := toml.Unmarshal(data, &intent); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse intent %s", j.path)
	}
	return &intent, nil
}

func (j *journal) clear() error {
	if err := j.fs.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to clear intent %s", j.path)
	}
	return nil
}
